package reconcile

import "github.com/JonMunkholm/worldstats/internal/dataset"

// DefaultThreshold is floor(columns / 2), the completeness threshold used when
// none is configured.
func DefaultThreshold(t *dataset.Table) int {
	return len(t.Columns) / 2
}

// Filter keeps the rows with at least minNonMissing non-missing cells. The
// key column counts like any other column. Dropped rows are removed, not
// imputed.
func Filter(t *dataset.Table, minNonMissing int) *dataset.Table {
	out := dataset.NewTable(t.Name, t.Columns...)
	for _, r := range t.Rows {
		if r.NonMissing(t.Columns) >= minNonMissing {
			out.Rows = append(out.Rows, r.Clone())
		}
	}
	return out
}
