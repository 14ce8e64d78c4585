package sqlstore

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// gooseUp is a seam for tests.
var gooseUp = func(ctx context.Context, s *Store) error {
	return goose.UpContext(ctx, s.db.DB, "migrations")
}

// Migrate applies every pending migration from the embedded migrations/ dir.
// It is safe to call on an up-to-date database.
func (s *Store) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{logger: s.logger})

	dialect := "sqlite3"
	if s.driver == driverPostgres {
		dialect = "pgx"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("sqlstore: setting goose dialect %s: %w", dialect, err)
	}

	if err := gooseUp(ctx, s); err != nil {
		return fmt.Errorf("sqlstore: running migrations: %w", err)
	}
	return nil
}

// gooseLogger routes goose output into slog.
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "goose"))
}

// Fatalf logs at error level. goose's own logger exits the process here;
// we return control to the caller, which gets the error from UpContext.
func (l gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "goose"))
}
