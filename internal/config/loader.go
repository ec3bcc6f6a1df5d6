package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/worldstats/internal/reconcile"
)

// LookupFunc resolves an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Load reads configuration from the process environment, applies defaults
// and validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom is Load with an explicit variable source. Every unparsable
// variable is reported, not just the first.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	cfg := &Config{}

	l := &loader{lookup: lookup}
	l.load(reflect.ValueOf(cfg).Elem())
	if err := l.problems.err("config load"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

type loader struct {
	lookup   LookupFunc
	problems problems
}

// load fills the exported fields of v from their env/envAlt/default/required
// tags, descending into nested structs.
func (l *loader) load(v reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if field.Type.Kind() == reflect.Struct {
			l.load(fv)
			continue
		}

		name := field.Tag.Get("env")
		if name == "" {
			continue
		}

		raw, ok := l.value(name, field.Tag.Get("envAlt"))
		if !ok {
			if field.Tag.Get("required") == "true" {
				l.problems.addf("required environment variable %s is not set", name)
				continue
			}
			raw = field.Tag.Get("default")
		}
		if raw == "" {
			continue
		}

		parsed, err := parseValue(field.Type, raw)
		if err != nil {
			l.problems.addf("invalid value for %s=%q: %v", name, raw, err)
			continue
		}
		fv.Set(parsed)
	}
}

// value returns the first non-empty variable among name and alt.
func (l *loader) value(name, alt string) (string, bool) {
	for _, key := range []string{name, alt} {
		if key == "" {
			continue
		}
		if v, ok := l.lookup(key); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// parseValue converts raw into a value of type t. String slices are comma
// separated with blanks dropped.
func parseValue(t reflect.Type, raw string) (reflect.Value, error) {
	if t == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid duration: %w", err)
		}
		return reflect.ValueOf(d), nil
	}

	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		out.SetString(raw)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid integer: %w", err)
		}
		out.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid boolean: %w", err)
		}
		out.SetBool(b)
	case reflect.Slice:
		if t.Elem().Kind() != reflect.String {
			return reflect.Value{}, fmt.Errorf("unsupported slice type: %s", t.Elem().Kind())
		}
		var items []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		out.Set(reflect.ValueOf(items))
	default:
		return reflect.Value{}, fmt.Errorf("unsupported field type: %s", t.Kind())
	}
	return out, nil
}

// problems accumulates configuration errors so they can be reported at once.
type problems []string

func (p *problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (p problems) err(prefix string) error {
	if len(p) == 0 {
		return nil
	}
	return fmt.Errorf("%s:\n  - %s", prefix, strings.Join(p, "\n  - "))
}

// Validate checks every section and reports all failures together.
func (c *Config) Validate() error {
	var p problems
	c.Database.validate(&p)
	c.Server.validate(&p)
	c.Pipeline.validate(&p)
	c.Sink.validate(&p, c.Database.Enabled())
	c.Rate.validate(&p)
	c.Security.validate(&p)
	c.Logging.validate(&p)
	return p.err("validation failed")
}

// Pool settings only matter when the Postgres sink is enabled.
func (d *DatabaseConfig) validate(p *problems) {
	if !d.Enabled() {
		return
	}
	if d.MaxConns <= 0 {
		p.addf("DB_MAX_CONNS must be positive")
	}
	if d.MinConns < 0 {
		p.addf("DB_MIN_CONNS must be non-negative")
	}
	if d.MaxConns < d.MinConns {
		p.addf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", d.MaxConns, d.MinConns)
	}
}

func (s *ServerConfig) validate(p *problems) {
	if s.Port <= 0 || s.Port > 65535 {
		p.addf("SERVER_PORT (%d) must be 1-65535", s.Port)
	}
	if s.ReadTimeout < 0 {
		p.addf("SERVER_READ_TIMEOUT must be non-negative")
	}
	if s.ShutdownTimeout <= 0 {
		p.addf("SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
}

func (pc *PipelineConfig) validate(p *problems) {
	if pc.DataDir == "" {
		p.addf("DATA_DIR is required")
	}
	if pc.MinNonMissing < 0 {
		p.addf("MIN_NON_MISSING must be non-negative")
	}
	if _, err := reconcile.ParseCollisionPolicy(pc.CollisionPolicy); err != nil {
		p.addf("COLLISION_POLICY (%q) must be one of: %s, %s",
			pc.CollisionPolicy, reconcile.PolicyCoalesce, reconcile.PolicyLastWriterWins)
	}
	if pc.RunTimeout <= 0 {
		p.addf("RUN_TIMEOUT must be positive")
	}
	if pc.MaxConcurrentRuns <= 0 {
		p.addf("MAX_CONCURRENT_RUNS must be positive")
	}
	if pc.RunMaxWait <= 0 {
		p.addf("RUN_MAX_WAIT must be positive")
	}
}

func (s *SinkConfig) validate(p *problems, postgres bool) {
	if s.Table == "" && (s.SQLitePath != "" || postgres) {
		p.addf("SINK_TABLE is required when a database sink is enabled")
	}
}

func (r *RateLimitConfig) validate(p *problems) {
	if !r.Enabled {
		return
	}
	if r.RequestsPerMinute <= 0 {
		p.addf("RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if r.RunLimit <= 0 {
		p.addf("RATE_LIMIT_RUNS must be positive when rate limiting is enabled")
	}
}

func (s *SecurityConfig) validate(p *problems) {
	if s.RequireAPIKey && len(s.APIKeys) == 0 {
		p.addf("REQUIRE_API_KEY is true but API_KEYS is empty")
	}
}

func (l *LoggingConfig) validate(p *problems) {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		p.addf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", l.Level)
	}
	switch strings.ToLower(l.Format) {
	case "text", "json":
	default:
		p.addf("LOG_FORMAT (%q) must be one of: text, json", l.Format)
	}
}

// String renders the config for logging with the database URL masked.
func (c *Config) String() string {
	db := "disabled"
	if c.Database.Enabled() {
		db = fmt.Sprintf("URL: [MASKED], MaxConns: %d, MinConns: %d", c.Database.MaxConns, c.Database.MinConns)
	}

	sections := []string{
		fmt.Sprintf("Server: {Host: %q, Port: %d}", c.Server.Host, c.Server.Port),
		fmt.Sprintf("Database: {%s}", db),
		fmt.Sprintf("Pipeline: {DataDir: %q, MinNonMissing: %d, Policy: %q, MaxConcurrentRuns: %d}",
			c.Pipeline.DataDir, c.Pipeline.MinNonMissing, c.Pipeline.CollisionPolicy, c.Pipeline.MaxConcurrentRuns),
		fmt.Sprintf("Sink: {Table: %q, CSV: %q, SQLite: %q, Parquet: %q}",
			c.Sink.Table, c.Sink.CSVPath, c.Sink.SQLitePath, c.Sink.ParquetPath),
		fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d, Runs: %d}",
			c.Rate.Enabled, c.Rate.RequestsPerMinute, c.Rate.RunLimit),
		fmt.Sprintf("Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format),
	}
	return "Config{" + strings.Join(sections, ", ") + "}"
}
