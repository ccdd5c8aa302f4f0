package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/emiliopalmerini/mfocus/internal/util"
)

// Prefix is the environment variable prefix for every setting.
const Prefix = "MFOCUS"

// Database holds libsql database configuration. URL and AuthToken are only
// needed to sync an embedded replica with a remote Turso primary.
type Database struct {
	Path      string `envconfig:"DATABASE_PATH"`
	URL       string `envconfig:"DATABASE_URL"`
	AuthToken string `envconfig:"AUTH_TOKEN"`
}

// Retention controls the scheduled purge of old observations.
type Retention struct {
	Days     int    `envconfig:"RETENTION_DAYS" default:"365"`
	Schedule string `envconfig:"RETENTION_SCHEDULE" default:"0 3 * * *"`
}

// Log configures the zerolog root logger.
type Log struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"console"`
}

// Otel configures the OTLP metrics exporter.
type Otel struct {
	Enabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	Endpoint string `envconfig:"OTEL_ENDPOINT"`
	Insecure bool   `envconfig:"OTEL_INSECURE" default:"false"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string        `envconfig:"ADDR" default:"127.0.0.1:8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Config is the full mfocus configuration.
type Config struct {
	Database  Database
	Retention Retention
	Log       Log
	Otel      Otel
	Server    Server
	RulesFile string `envconfig:"RULES_FILE"`
	Timezone  string `envconfig:"TIMEZONE" default:"Local"`
}

// Load reads the configuration from MFOCUS_* environment variables and fills
// in the default database path.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if cfg.Database.Path == "" {
		dir, err := util.GetXDGDataDir()
		if err != nil {
			return nil, err
		}
		cfg.Database.Path = filepath.Join(dir, "mfocus.db")
	}
	if cfg.Retention.Days < 0 {
		return nil, fmt.Errorf("%s_RETENTION_DAYS must not be negative", Prefix)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location resolves the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid %s_TIMEZONE %q: %w", Prefix, c.Timezone, err)
	}
	return loc, nil
}

// RetentionWindow returns how long observations are kept. Zero means forever.
func (c *Config) RetentionWindow() time.Duration {
	return time.Duration(c.Retention.Days) * 24 * time.Hour
}
