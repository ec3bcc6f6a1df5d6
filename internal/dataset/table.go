package dataset

import (
	"sort"
)

// KeyColumn is the canonical key column every prepared table carries.
const KeyColumn = "country"

// Row maps a column name to its cell. An absent column reads as missing.
type Row map[string]Value

// Get returns the cell for col, or missing if the row has no such column.
func (r Row) Get(col string) Value {
	return r[col]
}

// Clone returns a shallow copy of the row. Values are immutable, so a shallow
// copy is enough to make the rows independent.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// NonMissing counts the non-missing cells of r over cols.
func (r Row) NonMissing(cols []string) int {
	n := 0
	for _, c := range cols {
		if !r[c].IsMissing() {
			n++
		}
	}
	return n
}

// Table is an ordered sequence of rows over a fixed column set.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// NewTable creates an empty table with the given columns.
func NewTable(name string, columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Name: name, Columns: cols}
}

// Append adds a row. Cells for columns outside the table's column set are
// dropped so every row keeps the table's shape.
func (t *Table) Append(r Row) {
	row := make(Row, len(t.Columns))
	for _, c := range t.Columns {
		if v, ok := r[c]; ok {
			row[c] = v
		}
	}
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the table has a column named col.
func (t *Table) HasColumn(col string) bool {
	return t.ColumnIndex(col) >= 0
}

// ColumnIndex returns the position of col, or -1.
func (t *Table) ColumnIndex(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Column returns the cells of col in row order.
func (t *Table) Column(col string) []Value {
	out := make([]Value, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Get(col)
	}
	return out
}

// Clone returns a copy that shares no rows with t.
func (t *Table) Clone() *Table {
	out := NewTable(t.Name, t.Columns...)
	out.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// Find returns the first row whose key column equals key.
func (t *Table) Find(key string) (Row, bool) {
	for _, r := range t.Rows {
		v := r.Get(KeyColumn)
		if !v.IsMissing() && v.String() == key {
			return r, true
		}
	}
	return nil, false
}

// Records renders the table as string records, header first. Missing cells
// render as empty strings.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	header := make([]string, len(t.Columns))
	copy(header, t.Columns)
	out = append(out, header)
	for _, r := range t.Rows {
		rec := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			rec[i] = r.Get(c).String()
		}
		out = append(out, rec)
	}
	return out
}

// Mean returns the arithmetic mean of xs and false when xs is empty.
// The values are summed in ascending order, so any permutation of xs produces
// exactly the same result.
func Mean(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	var sum float64
	for _, x := range sorted {
		sum += x
	}
	return sum / float64(len(sorted)), true
}
