// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Session store backends.
const (
	StoreSQL    = "sqlite"
	StoreMemory = "memory"
)

// DefaultSecret is the placeholder secret shipped in .env.example. It is
// accepted so the app runs out of the box, but Load warns about it.
const DefaultSecret = "your-secret-key-change-this"

type Config struct {
	Port          int    `env:"PORT,default=3000"`
	DatabaseURL   string `env:"DATABASE_URL,default=data/habittracker.db"`
	SessionSecret string `env:"SESSION_SECRET,default=your-secret-key-change-this"`
	SessionStore  string `env:"SESSION_STORE,default=sqlite"`
	SessionSweep  string `env:"SESSION_SWEEP,default=@every 10m"`
	StaticDir     string `env:"STATIC_DIR,default=public"`
	CORSOrigin    string `env:"CORS_ORIGIN,default=http://localhost:3000"`
	LogLevel      string `env:"LOG_LEVEL,default=info"`
	LogFile       string `env:"LOG_FILE"`
}

// Load reads envFile (if it exists) into the process environment without
// overriding variables that are already set, then decodes Config.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("config: loading %s: %w", envFile, err)
			}
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("config: decoding environment: %w", err)
	}

	cfg.SessionStore = strings.ToLower(strings.TrimSpace(cfg.SessionStore))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.SessionSecret) < 16 {
		return errors.New("config: SESSION_SECRET must be at least 16 characters")
	}
	switch c.SessionStore {
	case StoreSQL, StoreMemory:
	default:
		return fmt.Errorf("config: SESSION_STORE must be %q or %q, got %q", StoreSQL, StoreMemory, c.SessionStore)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	}
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL must not be empty")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// UsesDefaultSecret reports whether the placeholder secret is in use.
func (c *Config) UsesDefaultSecret() bool {
	return c.SessionSecret == DefaultSecret
}

// SlogLevel parses LOG_LEVEL ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}
