package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/worldstats/internal/core"
)

// execute runs the CLI with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")
	t.Setenv("SOURCES_FILE", "")
	t.Setenv("ALIAS_FILE", "")

	cmd := newRootCommand()
	var out, logs bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// fixture writes two small sources and a manifest describing them.
func fixture(t *testing.T) (dir, manifest string) {
	t.Helper()
	dir = t.TempDir()
	files := map[string]string{
		"a.csv": "Country,x\nUSA,10\nUnited States of America,20\n",
		"b.csv": "name,y\nCanada,5\n",
		"sources.yaml": `
sources:
  - key: a
    file: a.csv
    key_column: Country
  - key: b
    file: b.csv
    key_column: name
`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir, filepath.Join(dir, "sources.yaml")
}

func TestRunCommand(t *testing.T) {
	dir, manifest := fixture(t)
	csvPath := filepath.Join(dir, "out.csv")

	out, err := execute(t, "run",
		"--data-dir", dir,
		"--sources", manifest,
		"--csv", csvPath,
		"--sqlite", filepath.Join(dir, "out.db"),
	)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}

	for _, want := range []string{"2 rows x 3 columns", "sink csv", "sink sqlite"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	want := "country,x,y\nCanada,15,5\nUnited States of America,15,5\n"
	if string(data) != want {
		t.Errorf("csv =\n%s\nwant\n%s", data, want)
	}
}

func TestRunCommand_JSON(t *testing.T) {
	dir, manifest := fixture(t)

	out, err := execute(t, "run", "--data-dir", dir, "--sources", manifest, "--csv", "", "--json")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}

	var res core.RunResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if res.Stats.OutputRows != 2 || res.Stats.Merge.DuplicateKeys != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if len(res.Sinks) != 0 {
		t.Errorf("sinks = %+v, want none", res.Sinks)
	}
}

func TestRunCommand_Only(t *testing.T) {
	dir, manifest := fixture(t)

	out, err := execute(t, "run", "--data-dir", dir, "--sources", manifest, "--csv", "", "--only", "b", "--json")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	var res core.RunResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Stats.SourceRows) != 1 {
		t.Errorf("SourceRows = %v, want only b", res.Stats.SourceRows)
	}
}

func TestRunCommand_Errors(t *testing.T) {
	dir, manifest := fixture(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing file", []string{"run", "--data-dir", t.TempDir(), "--sources", manifest, "--csv", ""}, "source file not found"},
		{"bad policy", []string{"run", "--data-dir", dir, "--sources", manifest, "--policy", "suffix"}, "COLLISION_POLICY"},
		{"unknown source", []string{"run", "--data-dir", dir, "--sources", manifest, "--csv", "", "--only", "zzz"}, "unknown source"},
		{"extra args", []string{"run", "extra"}, "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestSourcesCommand(t *testing.T) {
	_, manifest := fixture(t)

	out, err := execute(t, "sources", "--sources", manifest)
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	a, b := strings.Index(out, "a.csv"), strings.Index(out, "b.csv")
	if a < 0 || b < 0 || a > b {
		t.Errorf("want a.csv listed before b.csv:\n%s", out)
	}
	if strings.Contains(out, "whr") {
		t.Errorf("manifest should replace built-in sources:\n%s", out)
	}
}

func TestSourcesCommand_BuiltIn(t *testing.T) {
	out, err := execute(t, "sources", "--json")
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	var infos []core.SourceInfo
	if err := json.Unmarshal([]byte(out), &infos); err != nil {
		t.Fatal(err)
	}
	if len(infos) != 4 || infos[0].Key != "whr" {
		t.Errorf("built-in sources = %+v", infos)
	}
}

func TestNormalizeCommand(t *testing.T) {
	out, err := execute(t, "normalize", "USA", " Viet Nam ", "France")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	for _, want := range []string{"United States of America", "Vietnam", "France"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if _, err := execute(t, "normalize"); err == nil {
		t.Error("normalize without names should fail")
	}
}

func TestFormatError(t *testing.T) {
	got := formatError(core.ErrTooManyRuns)
	if !strings.Contains(got, "RUN001") {
		t.Errorf("formatError = %q, want code RUN001", got)
	}
}
