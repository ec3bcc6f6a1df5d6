package store

import (
	"testing"

	"github.com/JonMunkholm/worldstats/internal/config"
	"github.com/JonMunkholm/worldstats/internal/core"
)

func sinkNames(sinks []core.Sink) []string {
	names := make([]string, len(sinks))
	for i, s := range sinks {
		names[i] = s.Name()
	}
	return names
}

func TestFromConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.SinkConfig
		pg   TxBeginner
		want []string
	}{
		{"none", config.SinkConfig{}, nil, []string{}},
		{"csv only", config.SinkConfig{CSVPath: "out.csv"}, nil, []string{"csv"}},
		{
			"all",
			config.SinkConfig{Table: "t", CSVPath: "a.csv", SQLitePath: "a.db", ParquetPath: "a.parquet"},
			failingBeginner{},
			[]string{"csv", "sqlite", "parquet", "postgres"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sinkNames(FromConfig(tt.cfg, tt.pg))
			if len(got) != len(tt.want) {
				t.Fatalf("sinks = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sinks = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestFromConfig_TableName(t *testing.T) {
	sinks := FromConfig(config.SinkConfig{SQLitePath: "a.db", Table: "happiness"}, nil)
	sqlite, ok := sinks[0].(*SQLiteSink)
	if !ok {
		t.Fatalf("sink is %T, want *SQLiteSink", sinks[0])
	}
	if sqlite.Table != "happiness" {
		t.Errorf("Table = %q, want happiness", sqlite.Table)
	}
}
