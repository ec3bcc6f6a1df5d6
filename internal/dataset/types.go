package dataset

import "fmt"

// ColumnType is the resolved type tag of a column.
type ColumnType int

const (
	ColumnNumeric ColumnType = iota
	ColumnText
)

// String returns "numeric" or "text".
func (c ColumnType) String() string {
	if c == ColumnText {
		return "text"
	}
	return "numeric"
}

// MarshalText lets ColumnType render as a string in JSON maps.
func (c ColumnType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts the names MarshalText produces.
func (c *ColumnType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "numeric":
		*c = ColumnNumeric
	case "text":
		*c = ColumnText
	default:
		return fmt.Errorf("unknown column type %q", b)
	}
	return nil
}

// InferColumnType scans every non-missing cell of col. The column is numeric
// iff each of those cells coerces to a number. A column with no non-missing
// cells is numeric: it has no values that contradict the tag, it just has no
// mean.
func InferColumnType(t *Table, col string) ColumnType {
	for _, r := range t.Rows {
		v := r.Get(col)
		if v.IsMissing() {
			continue
		}
		if _, ok := v.Float(); !ok {
			return ColumnText
		}
	}
	return ColumnNumeric
}

// InferColumnTypes resolves the type tag of every column except skip.
func InferColumnTypes(t *Table, skip ...string) map[string]ColumnType {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}
	out := make(map[string]ColumnType, len(t.Columns))
	for _, c := range t.Columns {
		if skipped[c] {
			continue
		}
		out[c] = InferColumnType(t, c)
	}
	return out
}

// NumericValues returns the coerced numbers of col, skipping missing and
// non-coercible cells.
func NumericValues(t *Table, col string) []float64 {
	var out []float64
	for _, r := range t.Rows {
		if f, ok := r.Get(col).Float(); ok {
			out = append(out, f)
		}
	}
	return out
}
