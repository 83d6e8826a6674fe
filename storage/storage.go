// Package storage defines the key-value backend that receipt collections are persisted in.
// Each backend maps a string key to an opaque byte value that outlives the process.
package storage

import (
	"context"
	"errors"
)

// Driver identifies a concrete storage backend implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory (tests)
	DriverFS       Driver = "fs"       // one file per key under a directory
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file (default)
	DriverPostgres Driver = "postgres" // PostgreSQL server
	DriverS3       Driver = "s3"       // S3 / MinIO compatible bucket
)

// ErrNotFound is returned by Get when the key has never been written or was deleted.
var ErrNotFound = errors.New("storage: key not found")

// Store is a minimal key-value abstraction. Put overwrites the whole value for a key;
// there is no compare-and-swap, so concurrent writers are last-write-wins.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Driver() Driver
}
