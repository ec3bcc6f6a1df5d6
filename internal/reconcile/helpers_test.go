package reconcile

import (
	"math"
	"testing"

	"github.com/JonMunkholm/worldstats/internal/dataset"
)

var (
	miss = dataset.Missing()
	num  = dataset.Number
	txt  = dataset.Text
)

// table builds a table from positional rows.
func table(name string, cols []string, rows ...[]dataset.Value) *dataset.Table {
	t := dataset.NewTable(name, cols...)
	for _, vals := range rows {
		r := make(dataset.Row, len(cols))
		for i, c := range cols {
			r[c] = vals[i]
		}
		t.Append(r)
	}
	return t
}

func mustFind(t *testing.T, tbl *dataset.Table, key string) dataset.Row {
	t.Helper()
	r, ok := tbl.Find(key)
	if !ok {
		t.Fatalf("row %q not found in %s", key, tbl.Name)
	}
	return r
}

func assertNumber(t *testing.T, label string, v dataset.Value, want float64) {
	t.Helper()
	f, ok := v.Float()
	if !ok {
		t.Errorf("%s = %v, want %v", label, v, want)
		return
	}
	if math.Abs(f-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", label, f, want)
	}
}

func assertMissing(t *testing.T, label string, v dataset.Value) {
	t.Helper()
	if !v.IsMissing() {
		t.Errorf("%s = %v (%s), want missing", label, v, v.Kind())
	}
}
