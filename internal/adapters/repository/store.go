// Package repository persists the serialized document as an opaque blob
// under a fixed key.
//
// Backends: in-process memory, a directory of files, and SQL (SQLite through
// modernc.org/sqlite or Postgres through pgx). The document format is the
// codec's concern; stores only move bytes.
package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store provides read/write access to serialized documents.
type Store interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// Driver names a Store backend.
type Driver string

// Supported drivers.
const (
	DriverMemory   Driver = "memory"
	DriverFile     Driver = "file"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ParseDriver resolves a configured driver name.
func ParseDriver(s string) (Driver, error) {
	switch d := Driver(strings.ToLower(strings.TrimSpace(s))); d {
	case DriverMemory, DriverFile, DriverSQLite, DriverPostgres:
		return d, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnsupportedDriver)
	}
}

// Open builds the Store for driver. File and SQLite stores use WithPath;
// Postgres uses WithDSN.
func Open(ctx context.Context, driver Driver, opts ...Option) (Store, error) {
	cfg := openConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	switch driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverFile:
		return NewFileStore(cfg.path)
	case DriverSQLite, DriverPostgres:
		if driver == DriverSQLite && cfg.dsn == "" && cfg.path != "" {
			if err := os.MkdirAll(filepath.Dir(cfg.path), 0o755); err != nil {
				return nil, fmt.Errorf("%w: create %s: %v", ErrStore, filepath.Dir(cfg.path), err)
			}
		}
		return NewSQLStore(ctx, driver, cfg.dsnFor(driver))
	default:
		return nil, fmt.Errorf("%q: %w", driver, ErrUnsupportedDriver)
	}
}
