// Package kv re-exports the key-value abstractions and selects a backend.
package kv

import (
	"hrdesk/internal/kv/core"
)

type (
	// Driver identifies a key-value backend driver.
	Driver = core.Driver
	// Info describes stored key metadata.
	Info = core.Info
	// Store is the interface for key-value backends.
	Store = core.Store
)

const (
	DriverMemory     = core.DriverMemory
	DriverFilesystem = core.DriverFilesystem
	DriverSQLite     = core.DriverSQLite
	DriverPostgres   = core.DriverPostgres
	DriverS3         = core.DriverS3
	DriverRedis      = core.DriverRedis
)

var (
	// ErrNotFound is returned for a missing key.
	ErrNotFound = core.ErrNotFound
	// ErrQuotaExceeded is returned when a write does not fit.
	ErrQuotaExceeded = core.ErrQuotaExceeded
)
