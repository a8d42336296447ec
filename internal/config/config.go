package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the aggregation service.
// Environment variables are automatically parsed from the ACTIVITYX_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8090"`

	// Remote inbox backend (paginated activity rows + bulk delete)
	BackendURL      string        `envconfig:"BACKEND_URL" default:""`
	BackendAPIKey   string        `envconfig:"BACKEND_API_KEY" default:""`
	FetchPageSize   int           `envconfig:"FETCH_PAGE_SIZE" default:"500"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	DrainAfterMerge bool          `envconfig:"DRAIN_AFTER_MERGE" default:"true"`

	// Name-resolution webhook; empty disables resolution (raw IDs are used)
	NamesWebhookURL string `envconfig:"NAMES_WEBHOOK_URL" default:""`

	// Local cache
	DataDir  string `envconfig:"DATA_DIR" default:""`
	CacheKey string `envconfig:"CACHE_KEY" default:"activityx_cumulative_users"`

	// Sync scheduling; zero interval disables the timer (manual sync only)
	SyncInterval time.Duration `envconfig:"SYNC_INTERVAL" default:"5m"`
}

// ResolveDefaults validates the config and derives unset values.
func (c *Config) ResolveDefaults() error {
	if c.FetchPageSize <= 0 {
		return fmt.Errorf("unsupported FETCH_PAGE_SIZE: %d", c.FetchPageSize)
	}
	if c.CacheKey == "" {
		return fmt.Errorf("CACHE_KEY must not be empty")
	}
	if c.DataDir == "" {
		c.DataDir = "."
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with ACTIVITYX_
// Example: ACTIVITYX_HTTP_PORT, ACTIVITYX_BACKEND_URL
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("ACTIVITYX", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("backend_url_present", boolString(cfg.BackendURL != "")).
		Str("names_webhook_present", boolString(cfg.NamesWebhookURL != "")).
		Int("fetch_page_size", cfg.FetchPageSize).
		Str("data_dir", cfg.DataDir).
		Dur("sync_interval", cfg.SyncInterval).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	cfg := &Config{
		Environment:     EnvTesting,
		HTTPPort:        8090,
		FetchPageSize:   50,
		RequestTimeout:  5 * time.Second,
		DrainAfterMerge: false,
		CacheKey:        "activityx_cumulative_users_test",
		DataDir:         ".",
	}
	return cfg
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
