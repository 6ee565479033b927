// Package redis implements a key-value Store on Redis strings.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"hrdesk/internal/kv/core"
)

// Config holds connection settings.
type Config struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// NewClient builds a client and checks connectivity.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// Store implements core.Store over a redis client.
type Store struct {
	rdb *redis.Client
}

// New wraps an existing client. Close closes it.
func New(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

// Driver returns the kv driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverRedis }

// Get returns the string at key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get %s: %w", key, err)
	}
	return b, nil
}

// Set writes the string at key without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		if isOOM(err) {
			return fmt.Errorf("%w: %v", core.ErrQuotaExceeded, err)
		}
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis: del %s: %w", key, err)
	}
	return n > 0, nil
}

// List scans keys matching the prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]core.Info, error) {
	var out []core.Info
	iter := s.rdb.Scan(ctx, 0, escapeGlob(prefix)+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		size, err := s.rdb.StrLen(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("redis: strlen %s: %w", key, err)
		}
		out = append(out, core.Info{Key: key, Size: size})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis: scan %s: %w", prefix, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Close closes the client.
func (s *Store) Close() error { return s.rdb.Close() }

func isOOM(err error) bool {
	return strings.HasPrefix(err.Error(), "OOM ")
}

var globReplacer = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string { return globReplacer.Replace(s) }
