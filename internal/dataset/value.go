// Package dataset defines the in-memory table model shared by every stage of
// the reconciliation pipeline.
//
// A Table is an ordered list of column names and a list of rows. Each row maps
// a column name to a Value, which is one of missing, text or number. Stages
// never mutate their input; they build and return a new Table.
package dataset

import (
	"encoding/json"
	"math"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindMissing Kind = iota
	KindText
	KindNumber
)

// String returns the kind name used in logs and JSON reports.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	default:
		return "missing"
	}
}

// Value is a single table cell. The zero Value is missing.
type Value struct {
	kind Kind
	text string
	num  float64
}

// Missing returns the missing value.
func Missing() Value {
	return Value{}
}

// Text wraps a string cell. The string is kept verbatim, including an empty string.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Number wraps a numeric cell. NaN is treated as missing.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v is missing.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// String renders the value for text output. Missing renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Float attempts numeric coercion.
// Numbers pass through; text is parsed with ParseNumber. A false result is an
// expected outcome, not an error: callers discard the value from numeric work.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindText:
		return ParseNumber(v.text)
	default:
		return 0, false
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.text == o.text && v.num == o.num
}

// MarshalJSON encodes missing as null, text as a string and numbers as numbers.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindNumber:
		if math.IsInf(v.num, 0) {
			return json.Marshal(v.String())
		}
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = Missing()
	case float64:
		*v = Number(x)
	case string:
		*v = Text(x)
	default:
		*v = Text(string(b))
	}
	return nil
}
