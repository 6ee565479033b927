// Package config loads the hrdesk configuration from YAML and HRDESK_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"hrdesk/internal/kv"
	"hrdesk/internal/observability"
)

// Broadcast transports.
const (
	BroadcastNone  = "none"
	BroadcastHub   = "hub"
	BroadcastRedis = "redis"
)

// Metrics exporters.
const (
	MetricsNone       = "none"
	MetricsExpvar     = "expvar"
	MetricsPrometheus = "prometheus"
)

// Config is the whole application configuration.
type Config struct {
	Namespace   string                   `yaml:"namespace"`
	FixturePath string                   `yaml:"fixture_path"`
	Storage     kv.Config                `yaml:"storage"`
	Broadcast   BroadcastConfig          `yaml:"broadcast"`
	Log         observability.LogOptions `yaml:"log"`
	Metrics     MetricsConfig            `yaml:"metrics"`
	Auth        AuthConfig               `yaml:"auth"`
	Backfill    BackfillConfig           `yaml:"backfill"`
}

// BroadcastConfig selects the cross-tab transport.
type BroadcastConfig struct {
	Driver string         `yaml:"driver"`
	Topic  string         `yaml:"topic"`
	Redis  kv.RedisConfig `yaml:"redis"`
	// PingInterval is how often the transport connection is checked.
	PingInterval    time.Duration `yaml:"-"`
	PingIntervalRaw string        `yaml:"ping_interval"`
}

// MetricsConfig selects the metrics exporter.
type MetricsConfig struct {
	Driver string `yaml:"driver"`
	Name   string `yaml:"name"`
	// Addr, when set, serves /metrics and /debug/vars during serve.
	Addr string `yaml:"addr"`
}

// AuthConfig configures token issuing.
type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"-"`
	TokenTTLRaw string        `yaml:"token_ttl"`
}

// BackfillConfig schedules the daily attendance backfill.
type BackfillConfig struct {
	// Schedule is a five-field cron spec; empty disables the job.
	Schedule string `yaml:"schedule"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Namespace: "hrdesk",
		Storage:   kv.Config{Driver: kv.DriverFilesystem},
		Broadcast: BroadcastConfig{Driver: BroadcastHub},
		Log:       observability.LogOptions{Format: "text", Level: "info"},
		Metrics:   MetricsConfig{Driver: MetricsExpvar},
		Backfill:  BackfillConfig{Schedule: "5 0 * * *"},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overlays HRDESK_* environment variables.
func (c *Config) ApplyEnv() {
	c.Storage.ApplyEnv()
	setFromEnv(&c.Namespace, "HRDESK_NAMESPACE")
	setFromEnv(&c.FixturePath, "HRDESK_FIXTURE_PATH")
	setFromEnv(&c.Broadcast.Driver, "HRDESK_BROADCAST_DRIVER")
	setFromEnv(&c.Broadcast.Topic, "HRDESK_BROADCAST_TOPIC")
	setFromEnv(&c.Broadcast.Redis.Addr, "HRDESK_BROADCAST_REDIS_ADDR")
	setFromEnv(&c.Broadcast.PingIntervalRaw, "HRDESK_BROADCAST_PING_INTERVAL")
	setFromEnv(&c.Log.Format, "HRDESK_LOG_FORMAT")
	setFromEnv(&c.Log.Level, "HRDESK_LOG_LEVEL")
	setFromEnv(&c.Metrics.Driver, "HRDESK_METRICS_DRIVER")
	setFromEnv(&c.Metrics.Addr, "HRDESK_METRICS_ADDR")
	setFromEnv(&c.Auth.JWTSecret, "HRDESK_JWT_SECRET")
	setFromEnv(&c.Auth.TokenTTLRaw, "HRDESK_TOKEN_TTL")
	setFromEnv(&c.Backfill.Schedule, "HRDESK_BACKFILL_SCHEDULE")
}

func setFromEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func (c *Config) validateAndNormalize() error {
	c.Namespace = strings.TrimSpace(c.Namespace)
	if c.Namespace == "" {
		return fmt.Errorf("config: namespace must be set")
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = kv.DriverFilesystem
	}
	switch c.Storage.Driver {
	case kv.DriverMemory, kv.DriverFilesystem, kv.DriverSQLite:
	case kv.DriverPostgres:
		if c.Storage.Postgres.DSN == "" {
			return fmt.Errorf("config: storage.postgres.dsn must be set")
		}
	case kv.DriverS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("config: storage.s3.bucket must be set")
		}
	case kv.DriverRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("config: storage.redis.addr must be set")
		}
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}

	if err := c.Broadcast.validateAndNormalize(c.Namespace); err != nil {
		return err
	}

	switch c.Metrics.Driver {
	case "":
		c.Metrics.Driver = MetricsNone
	case MetricsNone, MetricsExpvar, MetricsPrometheus:
	default:
		return fmt.Errorf("config: unknown metrics.driver %q", c.Metrics.Driver)
	}
	if c.Metrics.Name == "" {
		c.Metrics.Name = c.Namespace
	}

	ttl, err := parseDurationAllowEmpty(c.Auth.TokenTTLRaw)
	if err != nil {
		return fmt.Errorf("config: auth.token_ttl: %w", err)
	}
	c.Auth.TokenTTL = ttl
	return nil
}

func (b *BroadcastConfig) validateAndNormalize(namespace string) error {
	switch b.Driver {
	case "":
		b.Driver = BroadcastHub
	case BroadcastNone, BroadcastHub:
	case BroadcastRedis:
		if b.Redis.Addr == "" {
			return fmt.Errorf("config: broadcast.redis.addr must be set")
		}
	default:
		return fmt.Errorf("config: unknown broadcast.driver %q", b.Driver)
	}
	if b.Topic == "" {
		b.Topic = namespace + "_sync"
	}
	interval, err := parseDurationAllowEmpty(b.PingIntervalRaw)
	if err != nil {
		return fmt.Errorf("config: broadcast.ping_interval: %w", err)
	}
	if interval == 0 {
		interval = 10 * time.Second
	}
	b.PingInterval = interval
	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}
