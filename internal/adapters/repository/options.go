package repository

import "strings"

// Option applies a configuration option to Open.
type Option func(*openConfig)

type openConfig struct {
	path string
	dsn  string
}

// WithPath sets the directory of a file store or the database file of a
// SQLite store.
func WithPath(path string) Option {
	return func(c *openConfig) {
		c.path = strings.TrimSpace(path)
	}
}

// WithDSN sets the connection string of a SQL store. It takes precedence
// over WithPath for SQLite.
func WithDSN(dsn string) Option {
	return func(c *openConfig) {
		c.dsn = strings.TrimSpace(dsn)
	}
}

func (c openConfig) dsnFor(driver Driver) string {
	if c.dsn != "" {
		return c.dsn
	}
	if driver == DriverSQLite && c.path != "" {
		return "file:" + c.path + "?_pragma=busy_timeout(5000)"
	}
	return ""
}
