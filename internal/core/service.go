package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/worldstats/internal/dataset"
	"github.com/JonMunkholm/worldstats/internal/logging"
	"github.com/JonMunkholm/worldstats/internal/reconcile"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrUnknownSource is returned for a source key that is not configured.
	ErrUnknownSource = errors.New("unknown source")

	// ErrNoResult is returned when a result is requested before any run has
	// completed.
	ErrNoResult = errors.New("no completed run yet")

	// ErrCountryNotFound is returned when a country is absent from the latest
	// result.
	ErrCountryNotFound = errors.New("country not found")
)

// DefaultRunTimeout is the maximum duration of a run when none is configured.
const DefaultRunTimeout = 5 * time.Minute

// historyLimit caps the number of run summaries kept in memory.
const historyLimit = 20

// Config holds the Service dependencies and run defaults.
type Config struct {
	DataDir string

	// Sources lists the sources of a full run. Nil means every registered
	// source.
	Sources []SourceDefinition

	// Aliases is the country alias table. Nil means the built-in table.
	Aliases *reconcile.AliasTable

	MinNonMissing      int
	Policy             reconcile.CollisionPolicy
	PrepareConcurrency int

	RunTimeout        time.Duration
	MaxConcurrentRuns int
	RunMaxWait        time.Duration

	Sinks []Sink
}

// RunOptions adjusts a single run.
type RunOptions struct {
	// Sources restricts the run to these keys, joined in configured order.
	Sources []string

	// MinNonMissing overrides the configured threshold when non-nil.
	MinNonMissing *int

	// Policy overrides the configured collision policy when set.
	Policy reconcile.CollisionPolicy

	// SkipSinks keeps the result in memory only.
	SkipSinks bool
}

// Service provides the core business logic for reconciliation runs.
type Service struct {
	cfg        Config
	sources    []SourceDefinition
	normalizer *reconcile.Normalizer
	limiter    *RunLimiter

	mu      sync.RWMutex
	latest  *RunResult
	history []RunSummary
}

// NewService creates a new Service instance.
func NewService(cfg Config) (*Service, error) {
	sources := cfg.Sources
	if sources == nil {
		sources = All()
	} else {
		sources = append([]SourceDefinition(nil), sources...)
		SortSources(sources)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("new service: %w", reconcile.ErrNoSources)
	}

	seen := make(map[string]bool, len(sources))
	for _, def := range sources {
		if seen[def.Info.Key] {
			return nil, fmt.Errorf("new service: duplicate source key %q", def.Info.Key)
		}
		seen[def.Info.Key] = true
	}

	aliases := cfg.Aliases
	if aliases == nil {
		aliases = reconcile.DefaultAliasTable()
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = DefaultRunTimeout
	}
	if cfg.Policy == "" {
		cfg.Policy = reconcile.PolicyCoalesce
	}

	return &Service{
		cfg:        cfg,
		sources:    sources,
		normalizer: reconcile.NewNormalizer(aliases),
		limiter:    NewRunLimiter(cfg.MaxConcurrentRuns, cfg.RunMaxWait),
	}, nil
}

// Sources returns the configured sources in join order.
func (s *Service) Sources() []SourceInfo {
	infos := make([]SourceInfo, len(s.sources))
	for i, def := range s.sources {
		infos[i] = def.Info
	}
	return infos
}

// Source returns one configured source.
func (s *Service) Source(key string) (SourceInfo, error) {
	for _, def := range s.sources {
		if def.Info.Key == key {
			return def.Info, nil
		}
	}
	return SourceInfo{}, fmt.Errorf("%w: %s", ErrUnknownSource, key)
}

// Normalizer returns the normalizer runs use.
func (s *Service) Normalizer() *reconcile.Normalizer {
	return s.normalizer
}

// LimiterStatus reports run slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// Run loads every selected source, reconciles them and writes the result to
// the configured sinks. The result becomes the latest one even when a sink
// fails; sink failures are reported in RunResult.Sinks.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	defs, err := s.selectSources(opts.Sources)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	runID := uuid.New().String()
	ctx = logging.WithRunID(ctx, runID)
	log := logging.FromContext(ctx)
	started := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	trigger := TriggerFrom(ctx)
	log.Info("run started",
		"sources", len(defs),
		"ip", trigger.IP,
		"user_agent", trigger.UserAgent,
	)

	srcs, err := s.loadSources(ctx, log, defs)
	if err != nil {
		log.Error("run failed", "stage", "load", "error", err)
		return nil, err
	}

	p := reconcile.NewPipeline(s.normalizer, log)
	p.MinNonMissing = s.cfg.MinNonMissing
	if opts.MinNonMissing != nil {
		p.MinNonMissing = *opts.MinNonMissing
	}
	p.Policy = s.cfg.Policy
	if opts.Policy != "" {
		p.Policy = opts.Policy
	}
	p.Concurrency = s.cfg.PrepareConcurrency

	res, err := p.Run(ctx, srcs)
	if err != nil {
		log.Error("run failed", "stage", "reconcile", "error", err)
		return nil, err
	}

	result := &RunResult{
		ID:          runID,
		StartedAt:   started,
		TriggeredBy: trigger.IP,
		Stats:       res.Stats,
		Table:       res.Table,
	}
	if !opts.SkipSinks {
		result.Sinks = s.writeSinks(ctx, log, res.Table)
	}
	result.Duration = time.Since(started)

	s.record(result)

	log.Info("run complete",
		"rows", res.Stats.OutputRows,
		"columns", res.Stats.Columns,
		"filtered", res.Stats.FilteredRows,
		"duration", result.Duration,
	)
	return result, nil
}

// selectSources resolves keys to definitions in join order.
func (s *Service) selectSources(keys []string) ([]SourceDefinition, error) {
	if len(keys) == 0 {
		return s.sources, nil
	}

	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		if _, err := s.Source(k); err != nil {
			return nil, err
		}
		want[k] = true
	}

	defs := make([]SourceDefinition, 0, len(keys))
	for _, def := range s.sources {
		if want[def.Info.Key] {
			defs = append(defs, def)
		}
	}
	return defs, nil
}

// loadSources reads every source file concurrently, keeping join order.
func (s *Service) loadSources(ctx context.Context, log *slog.Logger, defs []SourceDefinition) ([]reconcile.Source, error) {
	srcs := make([]reconcile.Source, len(defs))

	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.PrepareConcurrency > 0 {
		g.SetLimit(s.cfg.PrepareConcurrency)
	}

	for i, def := range defs {
		i, def := i, def
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, n, err := LoadSource(gctx, def, s.cfg.DataDir)
			if err != nil {
				return err
			}
			log.Debug("source loaded",
				"source", def.Info.Key,
				"rows", t.Len(),
				"columns", len(t.Columns),
				"bytes", n,
			)
			srcs[i] = reconcile.Source{
				Name:      def.Info.Key,
				Table:     t,
				KeyColumn: def.Info.KeyColumn,
				Columns:   def.Info.Columns,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return srcs, nil
}

// writeSinks hands the table to every sink in turn.
func (s *Service) writeSinks(ctx context.Context, log *slog.Logger, t *dataset.Table) []SinkResult {
	results := make([]SinkResult, 0, len(s.cfg.Sinks))
	for _, sink := range s.cfg.Sinks {
		r := SinkResult{Sink: sink.Name()}
		rows, err := sink.Write(ctx, t)
		if err != nil {
			err = fmt.Errorf("write sink %s: %w", sink.Name(), err)
			r.Error = err.Error()
			log.Error("sink failed", "sink", sink.Name(), "error", err, "code", MapError(err).Code)
		} else {
			r.Rows = rows
			log.Info("sink written", "sink", sink.Name(), "rows", rows)
		}
		results = append(results, r)
	}
	return results
}

func (s *Service) record(r *RunResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = r
	s.history = append([]RunSummary{r.Summary()}, s.history...)
	if len(s.history) > historyLimit {
		s.history = s.history[:historyLimit]
	}
}

// Latest returns the most recent successful run.
func (s *Service) Latest() (*RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return nil, ErrNoResult
	}
	return s.latest, nil
}

// History returns summaries of recent runs, newest first.
func (s *Service) History() []RunSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]RunSummary, len(s.history))
	copy(out, s.history)
	return out
}

// Country returns the latest result's row for name. The name goes through
// the same normalizer as the sources, so aliases resolve.
func (s *Service) Country(name string) (dataset.Row, error) {
	latest, err := s.Latest()
	if err != nil {
		return nil, err
	}

	key := s.normalizer.NormalizeString(name)
	row, ok := latest.Table.Find(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCountryNotFound, key)
	}
	return row.Clone(), nil
}

// WaitForRuns blocks until active runs finish or ctx is done.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
