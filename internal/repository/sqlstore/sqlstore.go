// Package sqlstore implements the repository interfaces on top of a SQL
// database. SQLite (modernc.org/sqlite, pure Go) is the default; a
// postgres:// DSN switches to Postgres through the pgx stdlib driver.
//
// All queries are written with "?" placeholders and passed through
// sqlx.Rebind, so the same SQL runs on both backends.
package sqlstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	driverSQLite   = "sqlite"
	driverPostgres = "pgx"
)

func init() {
	// sqlx does not know modernc's driver name.
	sqlx.BindDriver(driverSQLite, sqlx.QUESTION)
}

// Store wraps a sqlx connection pool and provides repository methods.
type Store struct {
	db     *sqlx.DB
	driver string
	logger *slog.Logger
}

// DriverFor picks the database/sql driver for a DSN.
//
//	"postgres://..." / "postgresql://..." → pgx
//	anything else                          → sqlite file path (or ":memory:")
func DriverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return driverPostgres
	}
	return driverSQLite
}

// Open connects to the database at dsn and verifies the connection.
// It does not migrate; call Migrate before serving traffic.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	driver := DriverFor(dsn)

	if driver == driverSQLite && dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlstore: creating data directory %s: %w", dir, err)
			}
		}
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: opening database: %w", err)
	}

	if driver == driverSQLite {
		// One connection: ":memory:" is per-connection, and SQLite allows a
		// single writer anyway.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: pinging database: %w", err)
	}

	if driver == driverSQLite {
		for _, pragma := range []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA foreign_keys=ON",
		} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("sqlstore: %s: %w", pragma, err)
			}
		}
	}

	return newStore(db, driver, logger), nil
}

func newStore(db *sqlx.DB, driver string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{db: db, driver: driver, logger: logger}
}

// Ping checks the database is reachable. Used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the database/sql driver name in use.
func (s *Store) Driver() string {
	return s.driver
}
