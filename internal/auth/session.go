package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/model"
	"github.com/sakif/habit-tracker/internal/repository"
)

const (
	// CookieName is the session cookie.
	CookieName = "sid"
	// SessionTTL is the absolute session lifetime. It is never extended.
	SessionTTL = 24 * time.Hour
)

// SessionManager creates, loads and destroys server-side sessions and
// translates them to and from the signed cookie value.
type SessionManager struct {
	store  repository.SessionRepository
	tokens *TokenService
	logger *slog.Logger
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionManager(store repository.SessionRepository, tokens *TokenService, logger *slog.Logger) *SessionManager {
	return &SessionManager{
		store:  store,
		tokens: tokens,
		logger: logger,
		ttl:    SessionTTL,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create starts a session for user and returns it with the signed cookie
// value.
func (m *SessionManager) Create(ctx context.Context, user *model.User) (*model.Session, string, error) {
	now := m.now().Truncate(time.Second)
	sess := &model.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.SaveSession(ctx, sess); err != nil {
		return nil, "", fmt.Errorf("auth: saving session: %w", err)
	}

	signed, err := m.tokens.Sign(sess.Token, sess.ExpiresAt)
	if err != nil {
		// Don't leave an unreachable session behind.
		if delErr := m.store.DeleteSession(ctx, sess.Token); delErr != nil {
			m.logger.Warn("failed to remove unsigned session", slog.String("error", delErr.Error()))
		}
		return nil, "", err
	}
	return sess, signed, nil
}

// Load resolves a signed cookie value to its session. A bad signature, an
// unknown token or an expired session all return apperror.ErrUnauthorized.
// Expired sessions are deleted on the way out.
func (m *SessionManager) Load(ctx context.Context, signed string) (*model.Session, error) {
	token, err := m.tokens.Validate(signed)
	if err != nil {
		return nil, apperror.Unauthorized()
	}

	sess, err := m.store.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized()
		}
		return nil, fmt.Errorf("auth: loading session: %w", err)
	}

	if sess.Expired(m.now()) {
		if err := m.store.DeleteSession(ctx, token); err != nil {
			m.logger.Warn("failed to delete expired session", slog.String("error", err.Error()))
		}
		return nil, apperror.Unauthorized()
	}
	return sess, nil
}

// Destroy deletes the session. Unknown tokens are not an error.
func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	if err := m.store.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("auth: destroying session: %w", err)
	}
	return nil
}

// PurgeExpired removes every session past its expiry and returns how many
// went.
func (m *SessionManager) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := m.store.DeleteExpiredSessions(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("auth: purging sessions: %w", err)
	}
	return n, nil
}

// SetCookie writes the session cookie. It is HttpOnly and SameSite=Lax,
// and not Secure so it works over plain HTTP in development.
func SetCookie(w http.ResponseWriter, signed string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie tells the browser to drop the session cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
