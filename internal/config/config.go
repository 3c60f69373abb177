package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// remote gym api
	GymApiBaseURL        string `toml:"gym_api_base_url"`
	GymApiTimeoutSeconds int    `toml:"gym_api_timeout_seconds"`

	// catalog cache
	CatalogCacheSizeMB     int `toml:"catalog_cache_size_mb"`
	CatalogCacheTTLSeconds int `toml:"catalog_cache_ttl_seconds"`

	// enrichment
	EnrichConcurrency int `toml:"enrich_concurrency"`

	// in-memory dashboard sessions unused for this long are dropped
	DashboardIdleMinutes int `toml:"dashboard_idle_minutes"`

	// redis (credentials store, rate limiting)
	RedisHost         string `toml:"redis_host"`
	RedisPort         string `toml:"redis_port"`
	SessionTTLHours   int    `toml:"session_ttl_hours"`
	LoginRateLimitMin int    `toml:"login_rate_limit_allowed_per_min"`

	AllowedOrigins []string `toml:"allowed_origins"`

	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}

	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] missing", env)
	}

	return cfg, nil
}

// Load reads the TOML file at path and returns the config section for env,
// with defaults applied.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.Environment = strings.ToLower(env)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.GymApiTimeoutSeconds <= 0 {
		c.GymApiTimeoutSeconds = 15
	}
	if c.CatalogCacheSizeMB <= 0 {
		c.CatalogCacheSizeMB = 64
	}
	if c.CatalogCacheTTLSeconds <= 0 {
		c.CatalogCacheTTLSeconds = 60
	}
	if c.EnrichConcurrency <= 0 {
		c.EnrichConcurrency = 8
	}
	if c.DashboardIdleMinutes <= 0 {
		c.DashboardIdleMinutes = 60
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
	if c.SessionTTLHours <= 0 {
		c.SessionTTLHours = 24 * 7
	}
	if c.LoginRateLimitMin <= 0 {
		c.LoginRateLimitMin = 15
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "2112"
	}
}

func (c *Config) Validate() error {
	if c.GymApiBaseURL == "" {
		return errors.New("gym_api_base_url not set")
	}
	if !strings.HasPrefix(c.GymApiBaseURL, "http://") && !strings.HasPrefix(c.GymApiBaseURL, "https://") {
		return fmt.Errorf("gym_api_base_url must be an http(s) url: %s", c.GymApiBaseURL)
	}
	return nil
}

func (c *Config) GymApiTimeout() time.Duration {
	return time.Duration(c.GymApiTimeoutSeconds) * time.Second
}

func (c *Config) CatalogCacheTTL() time.Duration {
	return time.Duration(c.CatalogCacheTTLSeconds) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c *Config) DashboardIdleTTL() time.Duration {
	return time.Duration(c.DashboardIdleMinutes) * time.Minute
}
