package store

import (
	"github.com/JonMunkholm/worldstats/internal/config"
	"github.com/JonMunkholm/worldstats/internal/core"
)

// FromConfig returns the sinks enabled in cfg, in write order: CSV, SQLite,
// Parquet, then Postgres when pg is non-nil.
func FromConfig(cfg config.SinkConfig, pg TxBeginner) []core.Sink {
	var sinks []core.Sink
	if cfg.CSVPath != "" {
		sinks = append(sinks, NewCSVSink(cfg.CSVPath))
	}
	if cfg.SQLitePath != "" {
		sinks = append(sinks, NewSQLiteSink(cfg.SQLitePath, cfg.Table))
	}
	if cfg.ParquetPath != "" {
		sinks = append(sinks, NewParquetSink(cfg.ParquetPath))
	}
	if pg != nil {
		sinks = append(sinks, NewPostgresSink(pg, cfg.Table))
	}
	return sinks
}
