package core

import (
	"context"
	"io"
	"time"

	"github.com/JonMunkholm/worldstats/internal/dataset"
	"github.com/JonMunkholm/worldstats/internal/reconcile"
)

// SourceInfo contains everything needed to read and prepare one source.
type SourceInfo struct {
	Key       string   `json:"key" yaml:"key" validate:"required"`                                  // Unique identifier: "whr"
	Label     string   `json:"label" yaml:"label"`                                                  // Display name
	File      string   `json:"file" yaml:"file" validate:"required"`                                // CSV file, relative to the data dir
	Order     int      `json:"order" yaml:"order" validate:"gte=0"`                                 // Join position, ascending
	KeyColumn string   `json:"key_column" yaml:"key_column" validate:"required"`                    // Column holding the country name
	Columns   []string `json:"columns,omitempty" yaml:"columns" validate:"omitempty,dive,required"` // Optional column selection
}

// OpenFunc opens the raw CSV data for a source.
type OpenFunc func(ctx context.Context, dataDir string) (io.ReadCloser, error)

// SourceDefinition contains a source and, optionally, how to open it.
type SourceDefinition struct {
	Info SourceInfo

	// Open overrides the default of reading Info.File from the data dir.
	Open OpenFunc
}

// Sink receives the reconciled table after every successful run.
// Write returns the number of rows the sink holds afterwards.
type Sink interface {
	Name() string
	Write(ctx context.Context, t *dataset.Table) (int64, error)
}

// SinkResult reports what one sink did with a run's table.
type SinkResult struct {
	Sink  string `json:"sink"`
	Rows  int64  `json:"rows"`
	Error string `json:"error,omitempty"`
}

// RunResult contains the final result of a reconciliation run.
type RunResult struct {
	ID          string          `json:"id"`
	StartedAt   time.Time       `json:"started_at"`
	Duration    time.Duration   `json:"duration_ns"`
	TriggeredBy string          `json:"triggered_by,omitempty"` // client IP for API-triggered runs
	Stats       reconcile.Stats `json:"stats"`
	Sinks       []SinkResult    `json:"sinks,omitempty"`
	Table       *dataset.Table  `json:"-"`
}

// Summary drops the table from a result.
func (r *RunResult) Summary() RunSummary {
	failed := 0
	for _, s := range r.Sinks {
		if s.Error != "" {
			failed++
		}
	}
	return RunSummary{
		ID:          r.ID,
		StartedAt:   r.StartedAt,
		Duration:    r.Duration,
		Rows:        r.Stats.OutputRows,
		Columns:     r.Stats.Columns,
		FailedSinks: failed,
	}
}

// RunSummary is the short form of a run kept in the history.
type RunSummary struct {
	ID          string        `json:"id"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration_ns"`
	Rows        int           `json:"rows"`
	Columns     int           `json:"columns"`
	FailedSinks int           `json:"failed_sinks"`
}
