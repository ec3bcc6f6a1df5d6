package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/worldstats/internal/dataset"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

// parquetParallelism is the number of goroutines the parquet writer and
// reader use.
const parquetParallelism = 4

// parquetSchemaNode is one node of the JSON schema parquet-go accepts.
type parquetSchemaNode struct {
	Tag    string               `json:"Tag"`
	Fields []*parquetSchemaNode `json:"Fields,omitempty"`
}

// ParquetSchema builds the JSON schema for t: OPTIONAL DOUBLE for numeric
// columns, OPTIONAL UTF8 byte arrays for text.
func ParquetSchema(t *dataset.Table) (string, error) {
	return parquetSchema(describeColumns(t))
}

func parquetSchema(cols []column) (string, error) {
	root := parquetSchemaNode{Tag: "name=parquet_go_root, repetitiontype=REQUIRED"}
	for _, c := range cols {
		tag := "name=" + c.Name + ", type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN, repetitiontype=OPTIONAL"
		if c.Numeric {
			tag = "name=" + c.Name + ", type=DOUBLE, repetitiontype=OPTIONAL"
		}
		root.Fields = append(root.Fields, &parquetSchemaNode{Tag: tag})
	}

	b, err := json.Marshal(root)
	if err != nil {
		return "", fmt.Errorf("marshal parquet schema: %w", err)
	}
	return string(b), nil
}

// ParquetSink writes the table to a Parquet file and reads the footer back to
// verify the row count.
type ParquetSink struct {
	Path string
}

// NewParquetSink returns a sink writing to path.
func NewParquetSink(path string) *ParquetSink {
	return &ParquetSink{Path: path}
}

// Name implements core.Sink.
func (s *ParquetSink) Name() string { return "parquet" }

// Write implements core.Sink.
func (s *ParquetSink) Write(ctx context.Context, t *dataset.Table) (int64, error) {
	cols := describeColumns(t)
	schema, err := parquetSchema(cols)
	if err != nil {
		return 0, err
	}

	fw, err := local.NewLocalFileWriter(s.Path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", s.Path, err)
	}

	pw, err := writer.NewJSONWriter(schema, fw, parquetParallelism)
	if err != nil {
		fw.Close()
		return 0, fmt.Errorf("create parquet writer: %w", err)
	}

	for i, r := range t.Rows {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				fw.Close()
				return 0, err
			}
		}
		rec := make(map[string]any, len(cols))
		for _, c := range cols {
			rec[c.Name] = cellValue(r.Get(c.Source), c.Numeric)
		}
		b, err := json.Marshal(rec)
		if err != nil {
			fw.Close()
			return 0, fmt.Errorf("marshal row %d: %w", i+1, err)
		}
		if err := pw.Write(string(b)); err != nil {
			fw.Close()
			return 0, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return 0, fmt.Errorf("finish parquet file: %w", err)
	}
	if err := fw.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", s.Path, err)
	}

	return CountParquetRows(s.Path)
}

// CountParquetRows reads the row count from a Parquet file's footer.
func CountParquetRows(path string) (int64, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, nil, parquetParallelism)
	if err != nil {
		return 0, fmt.Errorf("read parquet footer: %w", err)
	}
	defer pr.ReadStop()

	return pr.GetNumRows(), nil
}
