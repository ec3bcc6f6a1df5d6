package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
)

func TestParquetSchema(t *testing.T) {
	schema, err := ParquetSchema(sampleTable())
	if err != nil {
		t.Fatalf("ParquetSchema: %v", err)
	}

	var node parquetSchemaNode
	if err := json.Unmarshal([]byte(schema), &node); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	if len(node.Fields) != 3 {
		t.Fatalf("fields = %d, want 3", len(node.Fields))
	}

	want := []string{
		"name=country, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN, repetitiontype=OPTIONAL",
		"name=ladder_score, type=DOUBLE, repetitiontype=OPTIONAL",
		"name=region, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN, repetitiontype=OPTIONAL",
	}
	for i, f := range node.Fields {
		if f.Tag != want[i] {
			t.Errorf("field %d tag = %q, want %q", i, f.Tag, want[i])
		}
	}
}

func TestParquetSink_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.parquet")
	sink := NewParquetSink(path)

	if sink.Name() != "parquet" {
		t.Errorf("Name() = %q", sink.Name())
	}

	n, err := sink.Write(context.Background(), sampleTable())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 3 {
		t.Errorf("rows = %d, want 3", n)
	}

	got, err := CountParquetRows(path)
	if err != nil {
		t.Fatalf("CountParquetRows: %v", err)
	}
	if got != 3 {
		t.Errorf("CountParquetRows = %d, want 3", got)
	}
}

func TestCountParquetRows_MissingFile(t *testing.T) {
	if _, err := CountParquetRows(filepath.Join(t.TempDir(), "nope.parquet")); err == nil {
		t.Error("expected error for missing file")
	}
}
