// Command server runs the habit tracker HTTP API.
//
//	server                 # same as "server serve"
//	server serve --port 8080
//	server migrate         # apply database migrations and exit
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/sakif/habit-tracker/internal/config"
	"github.com/sakif/habit-tracker/internal/repository/sqlstore"
	"github.com/sakif/habit-tracker/internal/server"
)

var CLI struct {
	EnvFile string `help:"Optional dotenv file loaded before reading the environment." default:".env" type:"path"`

	Serve   ServeCmd   `cmd:"" default:"withargs" help:"Run the HTTP server (default)."`
	Migrate MigrateCmd `cmd:"" help:"Apply database migrations and exit."`
}

// runContext is handed to every command's Run method.
type runContext struct {
	cfg    *config.Config
	logger *slog.Logger
}

type ServeCmd struct {
	Port        int    `help:"Listen port. Overrides PORT."`
	DatabaseURL string `name:"database-url" help:"SQLite path or postgres:// URL. Overrides DATABASE_URL."`
}

func (c *ServeCmd) Run(rc *runContext) error {
	if c.Port != 0 {
		rc.cfg.Port = c.Port
	}
	if c.DatabaseURL != "" {
		rc.cfg.DatabaseURL = c.DatabaseURL
	}
	if err := rc.cfg.Validate(); err != nil {
		return err
	}

	if rc.cfg.UsesDefaultSecret() {
		rc.logger.Warn("SESSION_SECRET is the default placeholder; set a real secret outside development")
	}

	ctx := context.Background()
	srv, err := server.New(ctx, rc.cfg, rc.logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	return srv.Start(ctx)
}

type MigrateCmd struct {
	DatabaseURL string `name:"database-url" help:"SQLite path or postgres:// URL. Overrides DATABASE_URL."`
}

func (c *MigrateCmd) Run(rc *runContext) error {
	dsn := rc.cfg.DatabaseURL
	if c.DatabaseURL != "" {
		dsn = c.DatabaseURL
	}

	ctx := context.Background()
	store, err := sqlstore.Open(ctx, dsn, rc.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	rc.logger.Info("migrations applied", slog.String("driver", store.Driver()))
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("server"),
		kong.Description("Habit tracker API server."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(CLI.EnvFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	runErr := ctx.Run(&runContext{cfg: cfg, logger: logger})
	if runErr != nil {
		logger.Error("command failed", slog.String("command", ctx.Command()), slog.String("error", runErr.Error()))
	}
	closeLog()
	if runErr != nil {
		os.Exit(1)
	}
}
