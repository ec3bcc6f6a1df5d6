// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Pipeline PipelineConfig
	Sink     SinkConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 0, runs can be long)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 5m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`
}

// DatabaseConfig holds the optional Postgres sink connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Empty disables the Postgres sink.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a database URL is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// PipelineConfig holds reconciliation run settings.
type PipelineConfig struct {
	// DataDir is the directory source files are read from (default: data)
	DataDir string `env:"DATA_DIR" default:"data"`

	// SourcesFile is an optional YAML manifest replacing the built-in sources
	SourcesFile string `env:"SOURCES_FILE"`

	// AliasFile is an optional YAML alias file
	AliasFile string `env:"ALIAS_FILE"`

	// MinNonMissing is the completeness threshold; 0 selects half the column count
	MinNonMissing int `env:"MIN_NON_MISSING" default:"0"`

	// CollisionPolicy is coalesce or last_writer_wins (default: coalesce)
	CollisionPolicy string `env:"COLLISION_POLICY" default:"coalesce"`

	// RunTimeout bounds a single run (default: 5m)
	RunTimeout time.Duration `env:"RUN_TIMEOUT" default:"5m"`

	// MaxConcurrentRuns is the number of runs allowed at once (default: 1)
	MaxConcurrentRuns int `env:"MAX_CONCURRENT_RUNS" default:"1"`

	// RunMaxWait is how long a run waits for a free slot (default: 5s)
	RunMaxWait time.Duration `env:"RUN_MAX_WAIT" default:"5s"`

	// RunOnStart triggers a run when the server starts (default: true)
	RunOnStart bool `env:"RUN_ON_START" default:"true"`
}

// SinkConfig holds the file and table destinations of a run. Empty paths
// disable the corresponding sink.
type SinkConfig struct {
	// Table is the table name used by the database sinks (default: global_happiness)
	Table string `env:"SINK_TABLE" default:"global_happiness"`

	// CSVPath is the merged CSV output (default: merged_dataset.csv)
	CSVPath string `env:"CSV_PATH" default:"merged_dataset.csv"`

	// SQLitePath is the SQLite database file
	SQLitePath string `env:"SQLITE_PATH"`

	// ParquetPath is the Parquet output file
	ParquetPath string `env:"PARQUET_PATH"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// RunLimit is requests per minute for the run trigger endpoint (default: 10)
	RunLimit int `env:"RATE_LIMIT_RUNS" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey guards the run trigger with X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
