package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/JonMunkholm/worldstats/internal/dataset"
	_ "modernc.org/sqlite"
)

// DefaultTable is the table name used by the database sinks.
const DefaultTable = "global_happiness"

// SQLiteSink stores the table in a SQLite database file. The table is dropped
// and recreated on every write, then read back to verify the row count.
type SQLiteSink struct {
	Path  string
	Table string
}

// NewSQLiteSink returns a sink writing table into the database at path.
func NewSQLiteSink(path, table string) *SQLiteSink {
	if table == "" {
		table = DefaultTable
	}
	return &SQLiteSink{Path: path, Table: table}
}

// Name implements core.Sink.
func (s *SQLiteSink) Name() string { return "sqlite" }

// Write implements core.Sink.
func (s *SQLiteSink) Write(ctx context.Context, t *dataset.Table) (int64, error) {
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer db.Close()

	cols := describeColumns(t)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteSQLite(s.Table)); err != nil {
		return 0, fmt.Errorf("drop table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(s.Table, cols, "REAL", "TEXT", quoteSQLite)); err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(s.Table, cols))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range t.Rows {
		args := make([]any, len(cols))
		for j, c := range cols {
			args[j] = cellValue(r.Get(c.Source), c.Numeric)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	var n int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteSQLite(s.Table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("verify: %w", err)
	}
	if n != int64(t.Len()) {
		return n, fmt.Errorf("verify: table holds %d rows, wrote %d", n, t.Len())
	}
	return n, nil
}

func quoteSQLite(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// createTableSQL builds a CREATE TABLE statement with one column per table
// column, typed numericType or textType.
func createTableSQL(table string, cols []column, numericType, textType string, quote func(string) string) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		typ := textType
		if c.Numeric {
			typ = numericType
		}
		defs[i] = quote(c.Name) + " " + typ
	}
	return "CREATE TABLE " + quote(table) + " (" + strings.Join(defs, ", ") + ")"
}

func insertSQL(table string, cols []column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quoteSQLite(c.Name)
	}
	ph := strings.TrimRight(strings.Repeat("?,", len(cols)), ",")
	return "INSERT INTO " + quoteSQLite(table) + " (" + strings.Join(names, ", ") + ") VALUES (" + ph + ")"
}
