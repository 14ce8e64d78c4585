package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor periodically purges expired sessions on a cron schedule.
// Expired sessions are already refused by Load; this only reclaims storage.
type Janitor struct {
	cron     *cron.Cron
	sessions *SessionManager
	logger   *slog.Logger
	timeout  time.Duration
}

// NewJanitor schedules the sweep. spec is any robfig/cron expression,
// e.g. "@every 10m".
func NewJanitor(sessions *SessionManager, spec string, logger *slog.Logger) (*Janitor, error) {
	j := &Janitor{
		cron:     cron.New(cron.WithLogger(cronLogger{logger: logger})),
		sessions: sessions,
		logger:   logger,
		timeout:  30 * time.Second,
	}

	if _, err := j.cron.AddFunc(spec, j.Sweep); err != nil {
		return nil, fmt.Errorf("auth: scheduling session sweep %q: %w", spec, err)
	}
	return j, nil
}

func (j *Janitor) Start() {
	j.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish, or for
// ctx to end.
func (j *Janitor) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// Sweep runs one purge. It is what the schedule calls.
func (j *Janitor) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	n, err := j.sessions.PurgeExpired(ctx)
	if err != nil {
		j.logger.Error("session sweep failed", slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		j.logger.Info("expired sessions purged", slog.Int64("count", n))
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, append([]any{slog.String("component", "cron")}, keysAndValues...)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append([]any{slog.String("component", "cron"), slog.String("error", err.Error())}, keysAndValues...)...)
}
