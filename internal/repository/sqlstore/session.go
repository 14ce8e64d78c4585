package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/model"
	"github.com/sakif/habit-tracker/internal/repository"
)

var _ repository.SessionRepository = (*Store)(nil)

const sessionColumns = `token, user_id, username, email, created_at, expires_at`

// SaveSession inserts a session. Times are stored in UTC at second
// precision so expires_at compares correctly as text on SQLite.
func (s *Store) SaveSession(ctx context.Context, session *model.Session) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?)`),
		session.Token,
		session.UserID,
		session.Username,
		session.Email,
		normalizeTime(session.CreatedAt),
		normalizeTime(session.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("sqlstore: saving session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var sess model.Session
	err := s.db.GetContext(ctx, &sess, s.db.Rebind(
		`SELECT `+sessionColumns+` FROM sessions WHERE token = ?`), token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFoundMessage("session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: getting session: %w", err)
	}
	sess.CreatedAt = sess.CreatedAt.UTC()
	sess.ExpiresAt = sess.ExpiresAt.UTC()
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(
		`DELETE FROM sessions WHERE token = ?`), token); err != nil {
		return fmt.Errorf("sqlstore: deleting session: %w", err)
	}
	return nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(
		`DELETE FROM sessions WHERE expires_at <= ?`), normalizeTime(now))
	if err != nil {
		return 0, fmt.Errorf("sqlstore: deleting expired sessions: %w", err)
	}
	return result.RowsAffected()
}

func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
