package reconcile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/JonMunkholm/worldstats/internal/dataset"
)

// ---- Pipeline Tests ----

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPipeline_Run(t *testing.T) {
	whr := table("whr", []string{"Country name", "Ladder score", "Regional indicator"},
		[]dataset.Value{txt("United States"), num(6.7), txt("North America")},
		[]dataset.Value{txt("Canada"), num(6.9), txt("North America")},
		[]dataset.Value{txt("Atlantis"), miss, miss},
	)
	suicide := table("suicide", []string{"country", "RateTotal", "Notes"},
		[]dataset.Value{txt("USA"), num(14.5), txt("x")},
		[]dataset.Value{txt("Canada"), miss, txt("y")},
		[]dataset.Value{txt("Mexico"), num(5.0), txt("z")},
	)

	p := NewPipeline(NewNormalizer(DefaultAliasTable()), quietLogger())
	p.Concurrency = 1

	res, err := p.Run(context.Background(), []Source{
		{Name: "whr", Table: whr, KeyColumn: "Country name"},
		{Name: "suicide", Table: suicide, KeyColumn: "country", Columns: []string{"country", "RateTotal"}},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := res.Table
	if out.Name != "reconciled" {
		t.Errorf("Name = %q", out.Name)
	}
	wantCols := []string{"country", "Ladder score", "Regional indicator", "RateTotal"}
	if len(out.Columns) != len(wantCols) {
		t.Fatalf("Columns = %v, want %v", out.Columns, wantCols)
	}
	for i, c := range wantCols {
		if out.Columns[i] != c {
			t.Errorf("Columns[%d] = %q, want %q", i, out.Columns[i], c)
		}
	}

	// Threshold is 2 of 4 columns; Atlantis has only its key.
	if _, ok := out.Find("Atlantis"); ok {
		t.Error("Atlantis should be filtered out")
	}
	if out.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", out.Len())
	}

	usa := mustFind(t, out, "United States of America")
	assertNumber(t, "usa.RateTotal", usa.Get("RateTotal"), 14.5)

	// Canada's rate is imputed from USA and Mexico.
	assertNumber(t, "canada.RateTotal", mustFind(t, out, "Canada").Get("RateTotal"), 9.75)
	// Mexico's ladder score is imputed from USA and Canada.
	assertNumber(t, "mexico.Ladder", mustFind(t, out, "Mexico").Get("Ladder score"), 6.8)
	// Text column is never imputed.
	assertMissing(t, "mexico.Regional", mustFind(t, out, "Mexico").Get("Regional indicator"))

	st := res.Stats
	if st.SourceRows["whr"] != 3 || st.SourceRows["suicide"] != 3 {
		t.Errorf("SourceRows = %v", st.SourceRows)
	}
	if st.Threshold != 2 || st.FilteredRows != 1 || st.OutputRows != 3 || st.Columns != 4 {
		t.Errorf("Stats = %+v", st)
	}
}

func TestPipeline_ExplicitThreshold(t *testing.T) {
	src := table("s", []string{"country", "a", "b"},
		[]dataset.Value{txt("A"), num(1), num(2)},
		[]dataset.Value{txt("B"), num(1), miss},
	)
	p := NewPipeline(nil, quietLogger())
	p.MinNonMissing = 3

	res, err := p.Run(context.Background(), []Source{{Name: "s", Table: src, KeyColumn: "country"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Table.Len() != 1 || res.Stats.Threshold != 3 {
		t.Errorf("Len() = %d, Threshold = %d; want 1, 3", res.Table.Len(), res.Stats.Threshold)
	}
}

func TestPipeline_SchemaError(t *testing.T) {
	src := table("s", []string{"name", "a"}, []dataset.Value{txt("A"), num(1)})
	p := NewPipeline(nil, quietLogger())

	_, err := p.Run(context.Background(), []Source{{Name: "s", Table: src, KeyColumn: "Country"}})
	if !IsSchemaError(err) {
		t.Fatalf("Run error = %v, want SchemaError", err)
	}

	_, err = p.Run(context.Background(), []Source{{Name: "s", Table: src, KeyColumn: "name", Columns: []string{"a"}}})
	if !IsSchemaError(err) {
		t.Errorf("Run with key not selected error = %v, want SchemaError", err)
	}

	_, err = p.Run(context.Background(), []Source{{Name: "s", Table: src, KeyColumn: "name", Columns: []string{"name", "zzz"}}})
	if !IsSchemaError(err) {
		t.Errorf("Run with unknown selected column error = %v, want SchemaError", err)
	}
}

func TestPipeline_NoSources(t *testing.T) {
	p := NewPipeline(nil, quietLogger())
	if _, err := p.Run(context.Background(), nil); !errors.Is(err, ErrNoSources) {
		t.Errorf("Run(nil) error = %v, want ErrNoSources", err)
	}
}

func TestPipeline_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := table("s", []string{"country", "a"}, []dataset.Value{txt("A"), num(1)})
	p := NewPipeline(nil, quietLogger())
	if _, err := p.Run(ctx, []Source{{Name: "s", Table: src, KeyColumn: "country"}}); !errors.Is(err, context.Canceled) {
		t.Errorf("Run(canceled) error = %v, want context.Canceled", err)
	}
}

func TestPipeline_NilTable(t *testing.T) {
	p := NewPipeline(nil, quietLogger())
	if _, err := p.Run(context.Background(), []Source{{Name: "s", KeyColumn: "country"}}); err == nil {
		t.Error("expected error for source without a table")
	}
}
