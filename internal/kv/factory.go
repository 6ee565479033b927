package kv

import (
	"context"
	"fmt"
	"os"
	"strconv"

	fsstore "hrdesk/internal/infra/kv/fs"
	memorystore "hrdesk/internal/infra/kv/memory"
	pgstore "hrdesk/internal/infra/kv/postgres"
	redisstore "hrdesk/internal/infra/kv/redis"
	s3store "hrdesk/internal/infra/kv/s3"
	sqlitestore "hrdesk/internal/infra/kv/sqlite"
)

type (
	// S3Config configures the s3 driver.
	S3Config = s3store.Config
	// PostgresConfig configures the postgres driver.
	PostgresConfig = pgstore.Config
	// RedisConfig configures the redis driver.
	RedisConfig = redisstore.Config
)

// SQLiteConfig configures the sqlite driver.
type SQLiteConfig struct {
	Path         string `yaml:"path"`
	MaxPageCount int    `yaml:"max_page_count"`
}

// Config selects and configures a backend.
type Config struct {
	Driver Driver `yaml:"driver"`
	// MemoryQuota caps the memory driver in bytes (0 = unbounded).
	MemoryQuota int64          `yaml:"memory_quota"`
	FSRoot      string         `yaml:"fs_root"`
	SQLite      SQLiteConfig   `yaml:"sqlite"`
	Postgres    PostgresConfig `yaml:"postgres"`
	S3          S3Config       `yaml:"s3"`
	Redis       RedisConfig    `yaml:"redis"`
}

// ApplyEnv overlays HRDESK_KV_* environment variables onto cfg.
//
//	HRDESK_KV_DRIVER: memory|fs|sqlite|postgres|s3|redis (default fs)
//	HRDESK_KV_FS_ROOT: directory root when driver=fs (default ./hrdata)
//	HRDESK_KV_MEMORY_QUOTA: byte quota when driver=memory
//	HRDESK_KV_SQLITE_PATH, HRDESK_KV_POSTGRES_DSN, HRDESK_KV_REDIS_ADDR
//	(S3 specific variables documented in the s3 driver)
func (c *Config) ApplyEnv() {
	if v := os.Getenv("HRDESK_KV_DRIVER"); v != "" {
		c.Driver = Driver(v)
	}
	if v := os.Getenv("HRDESK_KV_FS_ROOT"); v != "" {
		c.FSRoot = v
	}
	if v := os.Getenv("HRDESK_KV_MEMORY_QUOTA"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.MemoryQuota = n
		}
	}
	if v := os.Getenv("HRDESK_KV_SQLITE_PATH"); v != "" {
		c.SQLite.Path = v
	}
	if v := os.Getenv("HRDESK_KV_POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("HRDESK_KV_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("HRDESK_KV_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	env := s3store.ConfigFromEnv()
	if env.Bucket != "" {
		c.S3.Bucket = env.Bucket
	}
	if env.Region != "" {
		c.S3.Region = env.Region
	}
	if env.Prefix != "" {
		c.S3.Prefix = env.Prefix
	}
	if env.Endpoint != "" {
		c.S3.Endpoint = env.Endpoint
	}
	if env.PathStyle {
		c.S3.PathStyle = true
	}
}

// Open constructs the Store selected by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverMemory:
		return memorystore.NewWithQuota(cfg.MemoryQuota), nil
	case DriverFilesystem:
		return fsstore.New(cfg.FSRoot)
	case DriverSQLite:
		return sqlitestore.New(cfg.SQLite.Path, sqlitestore.Options{MaxPageCount: cfg.SQLite.MaxPageCount})
	case DriverPostgres:
		return pgstore.Open(ctx, cfg.Postgres)
	case DriverS3:
		return s3store.New(ctx, cfg.S3)
	case DriverRedis:
		rdb, err := redisstore.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return redisstore.New(rdb), nil
	default:
		return nil, fmt.Errorf("unknown kv driver %s", driver)
	}
}

// NewMemory returns an in-memory Store with an optional byte quota.
func NewMemory(quota int64) Store { return memorystore.NewWithQuota(quota) }
