// Package reconcile merges country-indexed statistical tables into one
// consistent dataset.
//
// The pipeline runs strictly in sequence over fully materialized tables:
//
//	sources -> Prepare (per source) -> Merge -> Filter -> Impute
//
// Sources are prepared concurrently: each preparation reads only its own table
// and the read-only alias table. Every later stage consumes the complete output
// of the one before it.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/worldstats/internal/dataset"
	"golang.org/x/sync/errgroup"
)

// Source is one input table plus the caller's choice of key and columns.
type Source struct {
	Name      string
	Table     *dataset.Table
	KeyColumn string
	// Columns optionally restricts the table to a subset of its columns. When
	// set it must include KeyColumn.
	Columns []string
}

// Stats describes a pipeline run stage by stage.
type Stats struct {
	SourceRows   map[string]int `json:"source_rows"`
	Merge        MergeStats     `json:"merge"`
	Threshold    int            `json:"threshold"`
	FilteredRows int            `json:"filtered_rows"`
	OutputRows   int            `json:"output_rows"`
	Columns      int            `json:"columns"`
	Impute       ImputeReport   `json:"impute"`
}

// Result is the reconciled table and its run statistics.
type Result struct {
	Table    *dataset.Table
	Stats    Stats
	Duration time.Duration
}

// Pipeline wires the stages together.
type Pipeline struct {
	Normalizer *Normalizer

	// MinNonMissing is the completeness threshold. Zero or negative selects
	// DefaultThreshold of the merged table.
	MinNonMissing int

	// Policy decides how same-named columns from different sources combine.
	Policy CollisionPolicy

	// Concurrency caps how many sources are prepared at once. Zero means no
	// limit.
	Concurrency int

	Logger *slog.Logger
}

// NewPipeline returns a pipeline with the default threshold.
func NewPipeline(n *Normalizer, logger *slog.Logger) *Pipeline {
	return &Pipeline{Normalizer: n, Policy: PolicyCoalesce, Logger: logger}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Run reconciles sources, joined in the given order.
func (p *Pipeline) Run(ctx context.Context, sources []Source) (*Result, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	start := time.Now()
	log := p.logger()

	prepared, err := p.prepareAll(ctx, sources)
	if err != nil {
		return nil, err
	}

	stats := Stats{SourceRows: make(map[string]int, len(sources))}
	for _, s := range sources {
		stats.SourceRows[s.Name] = s.Table.Len()
	}

	merger := &Merger{Policy: p.Policy, OnCollision: func(c Collision) {
		log.Warn("column name shared by sources",
			"column", c.Column,
			"earlier", c.Earlier,
			"later", c.Later,
			"policy", p.Policy,
		)
	}}
	merged, mstats, err := merger.Merge(prepared...)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	stats.Merge = mstats
	if mstats.DroppedRows > 0 {
		log.Warn("rows without a country key dropped", "rows", mstats.DroppedRows)
	}
	log.Debug("merged sources",
		"keys", mstats.Keys,
		"duplicate_keys", mstats.DuplicateKeys,
		"columns", len(merged.Columns),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	threshold := p.MinNonMissing
	if threshold <= 0 {
		threshold = DefaultThreshold(merged)
	}
	filtered := Filter(merged, threshold)
	stats.Threshold = threshold
	stats.FilteredRows = merged.Len() - filtered.Len()
	log.Debug("filtered incomplete rows",
		"threshold", threshold,
		"dropped", stats.FilteredRows,
		"kept", filtered.Len(),
	)

	imputed, report := Impute(filtered)
	stats.Impute = report
	stats.OutputRows = imputed.Len()
	stats.Columns = len(imputed.Columns)
	for _, c := range report.Unfilled {
		log.Warn("numeric column has no values, left unfilled", "column", c)
	}

	imputed.Name = "reconciled"
	return &Result{Table: imputed, Stats: stats, Duration: time.Since(start)}, nil
}

// prepareAll selects and prepares every source concurrently, keeping the
// original order in the returned slice.
func (p *Pipeline) prepareAll(ctx context.Context, sources []Source) ([]*dataset.Table, error) {
	prepared := make([]*dataset.Table, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	if p.Concurrency > 0 {
		g.SetLimit(p.Concurrency)
	}

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, err := p.prepare(src)
			if err != nil {
				return err
			}
			prepared[i] = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return prepared, nil
}

func (p *Pipeline) prepare(src Source) (*dataset.Table, error) {
	if src.Table == nil {
		return nil, fmt.Errorf("source %s: no table loaded", src.Name)
	}
	t := src.Table.Clone()
	if src.Name != "" {
		t.Name = src.Name
	}

	if len(src.Columns) > 0 {
		selected, err := Select(t, src.Columns)
		if err != nil {
			return nil, fmt.Errorf("select columns: %w", err)
		}
		if !selected.HasColumn(src.KeyColumn) {
			return nil, &SchemaError{Source: t.Name, Column: src.KeyColumn}
		}
		t = selected
	}

	n := p.Normalizer
	if n == nil {
		n = NewNormalizer(DefaultAliasTable())
	}
	out, err := n.Prepare(t, src.KeyColumn)
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	p.logger().Debug("prepared source", "source", t.Name, "rows", out.Len(), "columns", len(out.Columns))
	return out, nil
}
