package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/worldstats/internal/dataset"
)

// ErrSourceFileNotFound is returned when a source's CSV file does not exist.
var ErrSourceFileNotFound = errors.New("source file not found")

// ReadTable parses CSV data into a table. The first record is the header.
//
// Header names are trimmed; a blank header becomes "Unnamed: N" and a repeated
// one gets a ".1", ".2" suffix so every column name is unique. Short rows are
// padded with missing cells; rows longer than the header are rejected.
func ReadTable(r io.Reader, name string) (*dataset.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty file", name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: invalid csv: %w", name, err)
	}

	t := dataset.NewTable(name, headerNames(header)...)

	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%s: invalid csv: %w", name, err)
		}
		if isEmptyRecord(rec) {
			continue
		}
		if len(rec) > len(t.Columns) {
			return nil, fmt.Errorf("%s: invalid csv: line %d has %d fields, header has %d",
				name, line, len(rec), len(t.Columns))
		}

		row := make(dataset.Row, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(rec) {
				row[col] = dataset.ParseCell(rec[i])
			} else {
				row[col] = dataset.Missing()
			}
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// headerNames cleans raw header cells into unique column names.
func headerNames(raw []string) []string {
	names := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		h = dataset.CleanCell(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = fmt.Sprintf("%s.%d", h, n+1)
		}
		seen[h] = 0
		names[i] = h
	}
	return names
}

func isEmptyRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// openFile is the default OpenFunc: Info.File relative to dataDir.
func openFile(info SourceInfo) OpenFunc {
	return func(_ context.Context, dataDir string) (io.ReadCloser, error) {
		path := info.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(dataDir, path)
		}
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceFileNotFound, path)
		}
		return f, err
	}
}

// LoadSource opens and parses one source's CSV file.
func LoadSource(ctx context.Context, def SourceDefinition, dataDir string) (*dataset.Table, int64, error) {
	open := def.Open
	if open == nil {
		open = openFile(def.Info)
	}

	rc, err := open(ctx, dataDir)
	if err != nil {
		return nil, 0, fmt.Errorf("source %s: %w", def.Info.Key, err)
	}
	defer rc.Close()

	counter := WrapForStreaming(rc)
	t, err := ReadTable(counter, def.Info.File)
	if err != nil {
		return nil, counter.BytesRead, fmt.Errorf("source %s: %w", def.Info.Key, err)
	}
	return t, counter.BytesRead, nil
}
