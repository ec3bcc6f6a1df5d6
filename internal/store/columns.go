// Package store writes reconciled tables to their destinations: CSV files,
// SQLite and Postgres tables, and Parquet files.
//
// Every sink replaces what it wrote before, so the destination always holds
// exactly the latest run.
package store

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/JonMunkholm/worldstats/internal/dataset"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SanitizeColumn turns a source column name into a storage identifier:
// lowercase, trimmed, spaces to underscores, accents folded, and anything
// outside [a-z0-9_] dropped.
//
//	"Explained by: Log GDP per capita" -> "explained_by_log_gdp_per_capita"
//	"Côte d'Ivoire score"             -> "cote_divoire_score"
//
// A name that would start with a digit gets a "c_" prefix; an empty result
// becomes "column".
func SanitizeColumn(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}
	s = strings.ReplaceAll(s, " ", "_")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}

	out := b.String()
	switch {
	case out == "":
		return "column"
	case out[0] >= '0' && out[0] <= '9':
		return "c_" + out
	}
	return out
}

// SanitizeColumns sanitizes every name and resolves clashes by appending
// "_2", "_3" and so on.
func SanitizeColumns(names []string) []string {
	out := make([]string, len(names))
	used := make(map[string]bool, len(names))
	for i, n := range names {
		base := SanitizeColumn(n)
		name := base
		for k := 2; used[name]; k++ {
			name = fmt.Sprintf("%s_%d", base, k)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// column describes one output column of a sink.
type column struct {
	Source  string // name in the table
	Name    string // sanitized storage name
	Numeric bool
}

// describeColumns resolves storage names and types for t. The key column is
// always text.
func describeColumns(t *dataset.Table) []column {
	names := SanitizeColumns(t.Columns)
	cols := make([]column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = column{
			Source:  c,
			Name:    names[i],
			Numeric: c != dataset.KeyColumn && dataset.InferColumnType(t, c) == dataset.ColumnNumeric,
		}
	}
	return cols
}

// cellValue converts a cell for a database driver: nil for missing, float64
// for numeric columns, string otherwise.
func cellValue(v dataset.Value, numeric bool) any {
	if v.IsMissing() {
		return nil
	}
	if numeric {
		if f, ok := v.Float(); ok {
			return f
		}
		return nil
	}
	return v.String()
}
