package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/worldstats/internal/dataset"
)

// WriteCSV writes t with its original column names. Missing cells are empty.
func WriteCSV(w io.Writer, t *dataset.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// CSVSink writes the table to a CSV file, replacing it atomically.
type CSVSink struct {
	Path string
}

// NewCSVSink returns a sink writing to path.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{Path: path}
}

// Name implements core.Sink.
func (s *CSVSink) Name() string { return "csv" }

// Write implements core.Sink.
func (s *CSVSink) Write(ctx context.Context, t *dataset.Table) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".worldstats-*.csv")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, t); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return 0, fmt.Errorf("replace %s: %w", s.Path, err)
	}
	return int64(t.Len()), nil
}
