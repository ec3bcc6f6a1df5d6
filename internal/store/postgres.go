package store

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/worldstats/internal/dataset"
	"github.com/jackc/pgx/v5"
)

// TxBeginner starts a transaction. Satisfied by *pgxpool.Pool and *pgx.Conn.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresSink stores the table in Postgres. Inside one transaction the table
// is dropped, recreated and filled with COPY, so readers never see a partial
// result.
type PostgresSink struct {
	db    TxBeginner
	Table string
}

// NewPostgresSink returns a sink writing table through db.
func NewPostgresSink(db TxBeginner, table string) *PostgresSink {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresSink{db: db, Table: table}
}

// Name implements core.Sink.
func (s *PostgresSink) Name() string { return "postgres" }

// Write implements core.Sink.
func (s *PostgresSink) Write(ctx context.Context, t *dataset.Table) (int64, error) {
	cols := describeColumns(t)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ident := pgx.Identifier{s.Table}
	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident.Sanitize()); err != nil {
		return 0, fmt.Errorf("drop table: %w", err)
	}
	if _, err := tx.Exec(ctx, createTableSQL(s.Table, cols, "DOUBLE PRECISION", "TEXT", quotePostgres)); err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	copied, err := tx.CopyFrom(ctx, ident, names, pgx.CopyFromRows(copyRows(t, cols)))
	if err != nil {
		return 0, fmt.Errorf("copy rows: %w", err)
	}

	var n int64
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM "+ident.Sanitize()).Scan(&n); err != nil {
		return 0, fmt.Errorf("verify: %w", err)
	}
	if n != copied {
		return n, fmt.Errorf("verify: table holds %d rows, copied %d", n, copied)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

func quotePostgres(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// copyRows converts t into COPY rows in column order.
func copyRows(t *dataset.Table, cols []column) [][]any {
	rows := make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = cellValue(r.Get(c.Source), c.Numeric)
		}
		rows[i] = row
	}
	return rows
}
