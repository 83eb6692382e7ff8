// Package config defines the calculator's configuration and how it is loaded.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Functions accept context.Context as the first parameter.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/upg/internal/adapters/codec"
	"github.com/okian/upg/internal/adapters/repository"
	"github.com/robfig/cron/v3"
)

// Default store locations.
const (
	DefaultStorePath  = "data"
	DefaultSQLitePath = "data/upg.db"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr is the HTTP listen address. Loopback by default.
	Addr string `koanf:"addr"`

	// StorageKey names the stored document.
	StorageKey string `koanf:"storage_key"`

	// StoreDriver picks the backend: memory, file, sqlite or postgres.
	StoreDriver string `koanf:"store_driver"`

	// StorePath is the directory for the file store or the database file for
	// sqlite. Load switches the default to DefaultSQLitePath for sqlite.
	StorePath string `koanf:"store_path"`

	// StoreDSN is the postgres connection string.
	StoreDSN string `koanf:"store_dsn"`

	// PersistQueueSize bounds the snapshot queue between the controller and the writer.
	PersistQueueSize int `koanf:"persist_queue_size"`

	// CORSAllowedOrigins lists front-end origins allowed to call the API.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// BackupSchedule is a 5-field cron expression. Empty disables backups.
	BackupSchedule string `koanf:"backup_schedule"`

	// BackupDir receives backup files.
	BackupDir string `koanf:"backup_dir"`

	// BackupKeep is how many backup files are retained.
	BackupKeep int `koanf:"backup_keep"`

	// BackupFormat is json or yaml.
	BackupFormat string `koanf:"backup_format"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               "127.0.0.1:8080",
		StorageKey:         "upg-calculator:v1",
		StoreDriver:        string(repository.DriverFile),
		StorePath:          DefaultStorePath,
		PersistQueueSize:   64,
		CORSAllowedOrigins: []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		BackupDir:          "backups",
		BackupKeep:         7,
		BackupFormat:       string(codec.FormatJSON),
	}
}

// Validate checks value ranges and cross-field requirements.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.StorageKey) == "" {
		return fmt.Errorf("%w: storage_key must not be empty", ErrInvalidConfig)
	}
	if c.PersistQueueSize <= 0 {
		return fmt.Errorf("%w: persist_queue_size must be positive, got %d", ErrInvalidConfig, c.PersistQueueSize)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}

	driver, err := repository.ParseDriver(c.StoreDriver)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch driver {
	case repository.DriverFile:
		if c.StorePath == "" {
			return fmt.Errorf("%w: store_path is required for the file store", ErrInvalidConfig)
		}
	case repository.DriverSQLite:
		if c.StorePath == "" && c.StoreDSN == "" {
			return fmt.Errorf("%w: store_path or store_dsn is required for sqlite", ErrInvalidConfig)
		}
	case repository.DriverPostgres:
		if c.StoreDSN == "" {
			return fmt.Errorf("%w: store_dsn is required for postgres", ErrInvalidConfig)
		}
	}

	if c.BackupSchedule != "" {
		if _, err := cron.ParseStandard(c.BackupSchedule); err != nil {
			return fmt.Errorf("%w: backup_schedule: %w", ErrInvalidConfig, err)
		}
		if c.BackupDir == "" {
			return fmt.Errorf("%w: backup_dir is required when backups are scheduled", ErrInvalidConfig)
		}
		if c.BackupKeep <= 0 {
			return fmt.Errorf("%w: backup_keep must be positive, got %d", ErrInvalidConfig, c.BackupKeep)
		}
		if _, err := codec.ParseFormat(c.BackupFormat); err != nil {
			return fmt.Errorf("%w: backup_format: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}
