// Package core defines the key-value abstraction the durable snapshot
// adapter persists through, independent of the concrete backend.
package core

import (
	"context"
	"errors"
	"time"
)

// Driver identifies a concrete key-value backend implementation.
type Driver string

const (
	// DriverMemory keeps values in process memory (tests, ephemeral runs).
	DriverMemory Driver = "memory"
	// DriverFilesystem stores one file per key under a root directory.
	DriverFilesystem Driver = "fs" // default, dev
	// DriverSQLite stores keys in a single SQLite table.
	DriverSQLite Driver = "sqlite"
	// DriverPostgres stores keys in a single Postgres table.
	DriverPostgres Driver = "postgres"
	// DriverS3 stores keys as objects in an S3 / MinIO bucket.
	DriverS3 Driver = "s3"
	// DriverRedis stores keys as Redis strings.
	DriverRedis Driver = "redis"
)

// Info describes a stored value.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// Store is a flat string-keyed document store. Set overwrites; values are
// opaque bytes (JSON documents in practice).
type Store interface {
	// Get returns the value stored at key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes value at key, replacing any previous value. Backends with a
	// capacity limit return ErrQuotaExceeded and leave the old value intact.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Returns (false, nil) if it did not exist.
	Delete(ctx context.Context, key string) (bool, error)
	// List returns keys with the given prefix ordered by key ascending.
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
	Close() error
}

var (
	// ErrNotFound is returned by Get for a missing key.
	ErrNotFound = errors.New("kv: key not found")
	// ErrQuotaExceeded is returned by Set when the backend is out of space.
	ErrQuotaExceeded = errors.New("kv: quota exceeded")
)
