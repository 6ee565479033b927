// Package postgres implements a key-value Store on a single Postgres table
// accessed through a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrdesk/internal/kv/core"
)

const (
	diskFullCode     = "53100"
	outOfMemoryCode  = "53200"
	programLimitCode = "54000"
	defaultDSN       = "postgres://localhost/hrdesk?sslmode=disable"
	createTableSQL   = `CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value BYTEA NOT NULL, updated_at TIMESTAMPTZ NOT NULL DEFAULT now())`
	selectValueSQL   = `SELECT value FROM kv WHERE key = $1`
	upsertValueSQL   = `INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, now()) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	deleteValueSQL   = `DELETE FROM kv WHERE key = $1`
	listKeysSQL      = `SELECT key, octet_length(value), updated_at FROM kv WHERE starts_with(key, $1) ORDER BY key`
)

// Queryer is the subset of pgxpool.Pool the store needs; pgxmock pools
// satisfy it in tests.
type Queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Config holds pool settings.
type Config struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int           `yaml:"max_conns"`
	MinConns        int           `yaml:"min_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// BuildPoolConfig builds a pgxpool.Config from cfg.
func BuildPoolConfig(cfg Config) (*pgxpool.Config, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = defaultDSN
	}
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}
	return poolCfg, nil
}

// Store implements core.Store over a Queryer.
type Store struct {
	db    Queryer
	close func()
}

// Open creates a pool, pings it and ensures the kv table exists.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	poolCfg, err := BuildPoolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	store := New(pool)
	store.close = pool.Close
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing Queryer. The caller owns its lifecycle.
func New(db Queryer) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the kv table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("postgres: ensure kv table: %w", err)
	}
	return nil
}

// Driver returns the kv driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverPostgres }

// Get selects the value for key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	if err := s.db.QueryRow(ctx, selectValueSQL, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: get %s: %w", key, err)
	}
	return value, nil
}

// Set upserts the value for key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.Exec(ctx, upsertValueSQL, key, value); err != nil {
		return translatePgError(err)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	tag, err := s.db.Exec(ctx, deleteValueSQL, key)
	if err != nil {
		return false, fmt.Errorf("postgres: delete %s: %w", key, err)
	}
	return tag.RowsAffected() > 0, nil
}

// List selects keys by prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]core.Info, error) {
	rows, err := s.db.Query(ctx, listKeysSQL, prefix)
	if err != nil {
		return nil, fmt.Errorf("postgres: list: %w", err)
	}
	defer rows.Close()
	var out []core.Info
	for rows.Next() {
		var info core.Info
		if err := rows.Scan(&info.Key, &info.Size, &info.LastModified); err != nil {
			return nil, fmt.Errorf("postgres: scan: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Close closes the pool when the store opened it.
func (s *Store) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}

func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case diskFullCode, outOfMemoryCode, programLimitCode:
			return fmt.Errorf("%w: %v", core.ErrQuotaExceeded, err)
		}
	}
	return fmt.Errorf("postgres: set: %w", err)
}
