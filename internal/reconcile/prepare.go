package reconcile

import (
	"fmt"

	"github.com/JonMunkholm/worldstats/internal/dataset"
)

// Select returns a table holding only columns, in the given order.
// Every selected column must exist in t.
func Select(t *dataset.Table, columns []string) (*dataset.Table, error) {
	for _, c := range columns {
		if !t.HasColumn(c) {
			return nil, &SchemaError{Source: t.Name, Column: c}
		}
	}

	out := dataset.NewTable(t.Name, columns...)
	for _, r := range t.Rows {
		out.Append(r)
	}
	return out, nil
}

// Prepare renames keyColumn to the canonical key column and normalizes every
// key value. All other columns pass through unchanged. The result may still
// hold duplicate keys; the merger resolves them.
func (n *Normalizer) Prepare(t *dataset.Table, keyColumn string) (*dataset.Table, error) {
	idx := t.ColumnIndex(keyColumn)
	if idx < 0 {
		return nil, &SchemaError{Source: t.Name, Column: keyColumn}
	}
	if keyColumn != dataset.KeyColumn && t.HasColumn(dataset.KeyColumn) {
		return nil, fmt.Errorf("source %s: key column %q would collide with existing %q column",
			t.Name, keyColumn, dataset.KeyColumn)
	}

	cols := make([]string, len(t.Columns))
	copy(cols, t.Columns)
	cols[idx] = dataset.KeyColumn

	out := dataset.NewTable(t.Name, cols...)
	out.Rows = make([]dataset.Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := r.Clone()
		key := row.Get(keyColumn)
		delete(row, keyColumn)
		row[dataset.KeyColumn] = n.Normalize(key)
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}
