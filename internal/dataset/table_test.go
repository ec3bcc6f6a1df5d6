package dataset

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTable_AppendKeepsShape(t *testing.T) {
	tbl := NewTable("t", "country", "x")
	tbl.Append(Row{"country": Text("Chad"), "x": Number(1), "stray": Text("dropped")})

	if tbl.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tbl.Len())
	}
	if _, ok := tbl.Rows[0]["stray"]; ok {
		t.Error("Append should drop cells outside the column set")
	}
	if got := tbl.Rows[0].Get("x"); !got.Equal(Number(1)) {
		t.Errorf("x = %v, want 1", got)
	}
}

func TestTable_CloneIsIndependent(t *testing.T) {
	tbl := NewTable("t", "country", "x")
	tbl.Append(Row{"country": Text("Chad"), "x": Number(1)})

	clone := tbl.Clone()
	clone.Rows[0]["x"] = Number(2)
	clone.Columns[1] = "y"

	if got := tbl.Rows[0].Get("x"); !got.Equal(Number(1)) {
		t.Errorf("original row mutated: x = %v", got)
	}
	if tbl.Columns[1] != "x" {
		t.Errorf("original columns mutated: %v", tbl.Columns)
	}
}

func TestRow_NonMissing(t *testing.T) {
	r := Row{"a": Number(1), "b": Missing(), "c": Text("")}
	if got := r.NonMissing([]string{"a", "b", "c", "d"}); got != 2 {
		t.Errorf("NonMissing() = %d, want 2", got)
	}
}

func TestTable_Records(t *testing.T) {
	tbl := NewTable("t", "country", "x", "note")
	tbl.Append(Row{"country": Text("Chad"), "x": Number(1.5)})
	tbl.Append(Row{"country": Text("Peru"), "note": Text("est.")})

	want := [][]string{
		{"country", "x", "note"},
		{"Chad", "1.5", ""},
		{"Peru", "", "est."},
	}
	if diff := cmp.Diff(want, tbl.Records()); diff != "" {
		t.Errorf("Records() mismatch (-want +got):\n%s", diff)
	}
}

func TestTable_Find(t *testing.T) {
	tbl := NewTable("t", "country")
	tbl.Append(Row{"country": Text("Chad")})
	tbl.Append(Row{})

	if _, ok := tbl.Find("Chad"); !ok {
		t.Error("Find(Chad) should succeed")
	}
	if _, ok := tbl.Find(""); ok {
		t.Error("Find(\"\") should not match a missing key")
	}
}

func TestMean(t *testing.T) {
	if _, ok := Mean(nil); ok {
		t.Error("Mean(nil) should report no mean")
	}

	got, ok := Mean([]float64{10, 20})
	if !ok || got != 15 {
		t.Errorf("Mean(10, 20) = %v, %v; want 15, true", got, ok)
	}
}

func TestMean_OrderIndependent(t *testing.T) {
	a := []float64{0.1, 1e16, 0.2, -1e16, 0.3}
	b := []float64{-1e16, 0.3, 0.1, 0.2, 1e16}

	ma, _ := Mean(a)
	mb, _ := Mean(b)
	if ma != mb {
		t.Errorf("Mean depends on order: %v != %v", ma, mb)
	}
}

func TestInferColumnType(t *testing.T) {
	tbl := NewTable("t", "num", "mixed", "empty", "numtext")
	tbl.Append(Row{"num": Number(1), "mixed": Number(1), "numtext": Text("3.5")})
	tbl.Append(Row{"num": Missing(), "mixed": Text("high")})

	tests := []struct {
		col  string
		want ColumnType
	}{
		{"num", ColumnNumeric},
		{"mixed", ColumnText},
		{"empty", ColumnNumeric},
		{"numtext", ColumnNumeric},
	}
	for _, tt := range tests {
		if got := InferColumnType(tbl, tt.col); got != tt.want {
			t.Errorf("InferColumnType(%q) = %v, want %v", tt.col, got, tt.want)
		}
	}

	types := InferColumnTypes(tbl, "num")
	if _, ok := types["num"]; ok {
		t.Error("InferColumnTypes should skip requested columns")
	}
	if len(types) != 3 {
		t.Errorf("InferColumnTypes returned %d columns, want 3", len(types))
	}
}
