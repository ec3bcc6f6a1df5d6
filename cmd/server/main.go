package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/worldstats/internal/config"
	"github.com/JonMunkholm/worldstats/internal/core"
	_ "github.com/JonMunkholm/worldstats/internal/core/sources" // Register built-in sources
	"github.com/JonMunkholm/worldstats/internal/logging"
	"github.com/JonMunkholm/worldstats/internal/store"
	"github.com/JonMunkholm/worldstats/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"data_dir", cfg.Pipeline.DataDir,
		"max_concurrent_runs", cfg.Pipeline.MaxConcurrentRuns,
		"postgres_sink", cfg.Database.Enabled(),
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("configuration", "config", cfg.String())

	ctx := context.Background()

	// The Postgres sink is optional; without DATABASE_URL runs only write files
	var pg store.TxBeginner
	if cfg.Database.Enabled() {
		pool, err := connect(ctx, &cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		pg = pool
	}

	svcCfg, err := core.ConfigFromPipeline(cfg.Pipeline, store.FromConfig(cfg.Sink, pg))
	if err != nil {
		slog.Error("failed to load pipeline configuration", "error", err, "code", core.MapError(err).Code)
		os.Exit(1)
	}

	service, err := core.NewService(svcCfg)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	// Log configured sources
	sources := service.Sources()
	slog.Info("sources configured", "count", len(sources))
	for _, src := range sources {
		slog.Debug("source", "key", src.Key, "file", src.File, "key_column", src.KeyColumn, "columns", len(src.Columns))
	}

	// Create server with config
	server := web.NewServer(service, cfg)

	// Cancelled on shutdown so a startup run does not outlive the server
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	if cfg.Pipeline.RunOnStart {
		go func() {
			if _, err := service.Run(jobCtx, core.RunOptions{}); err != nil {
				slog.Error("startup run failed", "error", err, "code", core.MapError(err).Code)
			}
		}()
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active runs to complete (with timeout)
		runStatus := service.LimiterStatus()
		if runStatus.Active > 0 {
			slog.Info("waiting for runs to complete", "active", runStatus.Active)
			if err := service.WaitForRuns(shutdownCtx); err != nil {
				slog.Warn("runs did not complete in time", "error", err)
				cancelJobs()
			} else {
				slog.Info("all runs completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	// Start server (uses addr from config internally)
	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

// connect opens and verifies the Postgres pool.
func connect(ctx context.Context, dbCfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dbCfg.URL)
	if err != nil {
		return nil, err
	}

	// Apply pool configuration from config
	poolConfig.MaxConns = int32(dbCfg.MaxConns)
	poolConfig.MinConns = int32(dbCfg.MinConns)
	poolConfig.MaxConnLifetime = dbCfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = dbCfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	// Log which database we connected to
	if u, err := url.Parse(dbCfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}
