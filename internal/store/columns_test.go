package store

import (
	"testing"

	"github.com/JonMunkholm/worldstats/internal/dataset"
	"github.com/google/go-cmp/cmp"
)

func TestSanitizeColumn(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"country", "country"},
		{"Ladder score", "ladder_score"},
		{"  Explained by: Log GDP per capita ", "explained_by_log_gdp_per_capita"},
		{"Côte d'Ivoire score", "cote_divoire_score"},
		{"GDP (USD)", "gdp_usd"},
		{"2022 rank", "c_2022_rank"},
		{"%", "column"},
		{"", "column"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeColumn(tt.in); got != tt.want {
				t.Errorf("SanitizeColumn(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeColumns_Dedupes(t *testing.T) {
	got := SanitizeColumns([]string{"Rate", "rate", "RATE ", "other"})
	want := []string{"rate", "rate_2", "rate_3", "other"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SanitizeColumns mismatch (-want +got):\n%s", diff)
	}
}

func TestDescribeColumns(t *testing.T) {
	got := describeColumns(sampleTable())
	want := []column{
		{Source: "country", Name: "country", Numeric: false},
		{Source: "Ladder score", Name: "ladder_score", Numeric: true},
		{Source: "region", Name: "region", Numeric: false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("describeColumns mismatch (-want +got):\n%s", diff)
	}
}

func TestDescribeColumns_NumericKeyStaysText(t *testing.T) {
	tbl := dataset.NewTable("t", "country", "x")
	tbl.Append(dataset.Row{"country": dataset.Text("123"), "x": dataset.Number(1)})

	cols := describeColumns(tbl)
	if cols[0].Numeric {
		t.Error("key column should always be text")
	}
}

func TestCellValue(t *testing.T) {
	tests := []struct {
		name    string
		v       dataset.Value
		numeric bool
		want    any
	}{
		{"missing", dataset.Missing(), true, nil},
		{"number", dataset.Number(2.5), true, 2.5},
		{"numeric text", dataset.Text("1,200"), true, 1200.0},
		{"text in numeric column", dataset.Text("abc"), true, nil},
		{"text", dataset.Text("Canada"), false, "Canada"},
		{"number in text column", dataset.Number(3), false, "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cellValue(tt.v, tt.numeric)
			if got != tt.want {
				t.Errorf("cellValue(%v, %v) = %#v, want %#v", tt.v, tt.numeric, got, tt.want)
			}
		})
	}
}
