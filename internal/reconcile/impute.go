package reconcile

import (
	"github.com/JonMunkholm/worldstats/internal/dataset"
)

// ImputeReport describes what Impute did to each column.
type ImputeReport struct {
	Types map[string]dataset.ColumnType `json:"types"`
	Means map[string]float64            `json:"means"`
	// Filled counts the cells filled per numeric column.
	Filled map[string]int `json:"filled"`
	// Unfilled lists numeric columns with no non-missing value, which have no
	// mean and keep their missing cells.
	Unfilled []string `json:"unfilled,omitempty"`
}

// Impute fills every missing cell of a numeric column with that column's mean.
// Column types are resolved once from t, which must already be filtered so
// dropped rows never influence the fill value. Text columns and the key
// column are returned unchanged.
func Impute(t *dataset.Table) (*dataset.Table, ImputeReport) {
	report := ImputeReport{
		Types:  dataset.InferColumnTypes(t, dataset.KeyColumn),
		Means:  make(map[string]float64),
		Filled: make(map[string]int),
	}

	for _, c := range t.Columns {
		if c == dataset.KeyColumn || report.Types[c] != dataset.ColumnNumeric {
			continue
		}
		mean, ok := dataset.Mean(dataset.NumericValues(t, c))
		if !ok {
			report.Unfilled = append(report.Unfilled, c)
			continue
		}
		report.Means[c] = mean
	}

	out := t.Clone()
	for _, r := range out.Rows {
		for c, mean := range report.Means {
			if r.Get(c).IsMissing() {
				r[c] = dataset.Number(mean)
				report.Filled[c]++
			}
		}
	}
	return out, report
}
