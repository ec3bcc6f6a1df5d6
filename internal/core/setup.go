package core

import (
	"github.com/JonMunkholm/worldstats/internal/config"
	"github.com/JonMunkholm/worldstats/internal/reconcile"
)

// ConfigFromPipeline builds a service Config from the pipeline settings,
// loading the optional source manifest and alias file. Without a manifest
// the registered sources are used.
func ConfigFromPipeline(p config.PipelineConfig, sinks []Sink) (Config, error) {
	policy, err := reconcile.ParseCollisionPolicy(p.CollisionPolicy)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DataDir:           p.DataDir,
		MinNonMissing:     p.MinNonMissing,
		Policy:            policy,
		RunTimeout:        p.RunTimeout,
		MaxConcurrentRuns: p.MaxConcurrentRuns,
		RunMaxWait:        p.RunMaxWait,
		Sinks:             sinks,
	}

	if p.SourcesFile != "" {
		defs, err := LoadManifest(p.SourcesFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Sources = defs
	}

	if p.AliasFile != "" {
		aliases, err := reconcile.LoadAliasFile(p.AliasFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Aliases = aliases
	}

	return cfg, nil
}
