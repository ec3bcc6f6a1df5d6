package store

import (
	"github.com/JonMunkholm/worldstats/internal/dataset"
)

// sampleTable is a small reconciled table: a text key, a numeric column with
// a gap, and a text column.
func sampleTable() *dataset.Table {
	t := dataset.NewTable("reconciled", "country", "Ladder score", "region")
	t.Append(dataset.Row{
		"country":      dataset.Text("Canada"),
		"Ladder score": dataset.Number(6.9),
		"region":       dataset.Text("North America"),
	})
	t.Append(dataset.Row{
		"country":      dataset.Text("Côte d'Ivoire"),
		"Ladder score": dataset.Missing(),
		"region":       dataset.Text("Sub-Saharan Africa"),
	})
	t.Append(dataset.Row{
		"country":      dataset.Text("Mexico"),
		"Ladder score": dataset.Text("6.5"),
		"region":       dataset.Missing(),
	})
	return t
}
