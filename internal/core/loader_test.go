package core

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/worldstats/internal/dataset"
	"github.com/google/go-cmp/cmp"
)

func TestReadTable(t *testing.T) {
	input := "Country name,Ladder score,Region,Notes\n" +
		"Finland,7.741,Europe,\n" +
		"\"Congo, Republic Of\",\"5,1\",Africa,NA\n" +
		"\n" +
		"Chad,n/a\n"

	tbl, err := ReadTable(strings.NewReader(input), "whr")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}

	if diff := cmp.Diff([]string{"Country name", "Ladder score", "Region", "Notes"}, tbl.Columns); diff != "" {
		t.Errorf("Columns mismatch (-want +got):\n%s", diff)
	}
	if tbl.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (blank line skipped)", tbl.Len())
	}

	finland := tbl.Rows[0]
	if f, ok := finland.Get("Ladder score").Float(); !ok || f != 7.741 {
		t.Errorf("Finland ladder = %v", finland.Get("Ladder score"))
	}
	if finland.Get("Ladder score").Kind() != dataset.KindNumber {
		t.Errorf("numeric cell kind = %s, want number", finland.Get("Ladder score").Kind())
	}
	if !finland.Get("Notes").IsMissing() {
		t.Error("empty cell should be missing")
	}

	congo := tbl.Rows[1]
	if got := congo.Get("Country name").String(); got != "Congo, Republic Of" {
		t.Errorf("quoted name = %q", got)
	}
	if f, _ := congo.Get("Ladder score").Float(); f != 51 {
		t.Errorf("thousands separator not stripped: %v", congo.Get("Ladder score"))
	}
	if !congo.Get("Notes").IsMissing() {
		t.Error("NA should be missing")
	}

	chad := tbl.Rows[2]
	if !chad.Get("Ladder score").IsMissing() || !chad.Get("Region").IsMissing() {
		t.Error("short row should be padded with missing cells")
	}
}

func TestReadTable_HeaderCleanup(t *testing.T) {
	input := "\xEF\xBB\xBF country , score,,score\nChad,1,2,3\n"
	tbl, err := ReadTable(WrapForStreaming(strings.NewReader(input)), "s")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	want := []string{"country", "score", "Unnamed: 2", "score.1"}
	if diff := cmp.Diff(want, tbl.Columns); diff != "" {
		t.Errorf("Columns mismatch (-want +got):\n%s", diff)
	}
}

func TestReadTable_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"empty file", "", "empty file"},
		{"too many fields", "a,b\n1,2,3\n", "invalid csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(tt.input), "s")
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v, want containing %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadSource(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "s.csv"), []byte("country,x\nChad,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	def := SourceDefinition{Info: SourceInfo{Key: "s", File: "s.csv", KeyColumn: "country"}}
	tbl, n, err := LoadSource(context.Background(), def, dir)
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if tbl.Len() != 1 || n == 0 {
		t.Errorf("Len() = %d, bytes = %d", tbl.Len(), n)
	}

	missing := SourceDefinition{Info: SourceInfo{Key: "m", File: "nope.csv"}}
	_, _, err = LoadSource(context.Background(), missing, dir)
	if !errors.Is(err, ErrSourceFileNotFound) {
		t.Errorf("missing file error = %v, want ErrSourceFileNotFound", err)
	}
	if MapError(err).Code != "SRC002" {
		t.Errorf("missing file code = %s, want SRC002", MapError(err).Code)
	}
}

func TestLoadSource_CustomOpen(t *testing.T) {
	def := SourceDefinition{
		Info: SourceInfo{Key: "mem", File: "mem.csv", KeyColumn: "country"},
		Open: func(context.Context, string) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("country\nChad\nPeru\n")), nil
		},
	}
	tbl, _, err := LoadSource(context.Background(), def, "")
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}
}
