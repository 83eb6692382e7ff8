package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

// SQLStore keeps values in a key/value table.
type SQLStore struct {
	db     *sql.DB
	driver Driver

	getQuery    string
	setQuery    string
	deleteQuery string
}

const schemaKV = `
CREATE TABLE IF NOT EXISTS kv_store (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at BIGINT NOT NULL
);
`

// NewSQLStore opens the database and ensures the schema exists.
func NewSQLStore(ctx context.Context, driver Driver, dsn string) (*SQLStore, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:upg.db?_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/upg?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("%q: %w", driver, ErrUnsupportedDriver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStore, driver, err)
	}
	if driver == DriverSQLite {
		// a single connection serializes writers on the same file
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck,gosec // already failing
		return nil, fmt.Errorf("%w: ping %s: %v", ErrStore, driver, err)
	}
	if _, err := db.ExecContext(ctx, schemaKV); err != nil {
		db.Close() //nolint:errcheck,gosec // already failing
		return nil, fmt.Errorf("%w: schema: %v", ErrStore, err)
	}

	return &SQLStore{
		db:       db,
		driver:   driver,
		getQuery: rebind(driver, `SELECT value FROM kv_store WHERE key = ?`),
		setQuery: rebind(driver, `INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`),
		deleteQuery: rebind(driver, `DELETE FROM kv_store WHERE key = ?`),
	}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	defer observe(s.driver, "get", time.Now())

	var value string
	err := s.db.QueryRowContext(ctx, s.getQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %q: %v", ErrStore, key, err)
	}
	return []byte(value), nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	defer observe(s.driver, "set", time.Now())

	if _, err := s.db.ExecContext(ctx, s.setQuery, key, string(value), time.Now().Unix()); err != nil {
		return fmt.Errorf("%w: set %q: %v", ErrStore, key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	defer observe(s.driver, "delete", time.Now())

	if _, err := s.db.ExecContext(ctx, s.deleteQuery, key); err != nil {
		return fmt.Errorf("%w: delete %q: %v", ErrStore, key, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind turns '?' placeholders into '$n' for Postgres.
func rebind(driver Driver, q string) string {
	if driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
