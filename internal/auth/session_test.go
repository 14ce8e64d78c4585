package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/model"
	"github.com/sakif/habit-tracker/internal/repository/memory"
)

func newTestSessionManager(t *testing.T) (*SessionManager, *memory.SessionStore) {
	t.Helper()
	store := memory.NewSessionStore()
	m := NewSessionManager(store, newTestTokenService(t), slog.New(slog.DiscardHandler))
	return m, store
}

var testUser = &model.User{ID: "u1", Username: "alice", Email: "alice@example.com"}

// =========================================================================
// CREATE / LOAD
// =========================================================================

func TestCreateAndLoad(t *testing.T) {
	m, _ := newTestSessionManager(t)
	ctx := context.Background()

	sess, signed, err := m.Create(ctx, testUser)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sess.Token == "" || signed == "" {
		t.Fatal("Create() returned an empty token")
	}
	if got := sess.ExpiresAt.Sub(sess.CreatedAt); got != SessionTTL {
		t.Errorf("session lifetime = %v, want %v", got, SessionTTL)
	}

	loaded, err := m.Load(ctx, signed)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.UserID != "u1" || loaded.Username != "alice" {
		t.Errorf("Load() = %+v", loaded)
	}
}

func TestCreate_TokensAreUnique(t *testing.T) {
	m, _ := newTestSessionManager(t)

	a, _, _ := m.Create(context.Background(), testUser)
	b, _, _ := m.Create(context.Background(), testUser)
	if a.Token == b.Token {
		t.Error("two sessions got the same token")
	}
}

func TestLoad_Unauthorized(t *testing.T) {
	m, store := newTestSessionManager(t)
	ctx := context.Background()

	// Validly signed, but no such session in the store.
	orphan, _ := m.tokens.Sign("never-saved", time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		signed string
	}{
		{"garbage", "garbage"},
		{"unknown session", orphan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Load(ctx, tt.signed); !errors.Is(err, apperror.ErrUnauthorized) {
				t.Errorf("Load() error = %v, want ErrUnauthorized", err)
			}
		})
	}

	if store.Len() != 0 {
		t.Errorf("store has %d sessions, want 0", store.Len())
	}
}

func TestLoad_ExpiredSessionIsDeleted(t *testing.T) {
	m, store := newTestSessionManager(t)
	ctx := context.Background()

	_, signed, err := m.Create(ctx, testUser)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Move the clock past expiry; the JWT itself is still valid.
	m.now = func() time.Time { return time.Now().UTC().Add(SessionTTL + time.Minute) }

	if _, err := m.Load(ctx, signed); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("Load() error = %v, want ErrUnauthorized", err)
	}
	if store.Len() != 0 {
		t.Errorf("expired session was not deleted, store has %d", store.Len())
	}
}

// =========================================================================
// DESTROY / PURGE
// =========================================================================

func TestDestroy(t *testing.T) {
	m, _ := newTestSessionManager(t)
	ctx := context.Background()

	sess, signed, _ := m.Create(ctx, testUser)

	if err := m.Destroy(ctx, sess.Token); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if _, err := m.Load(ctx, signed); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Load(after destroy) error = %v, want ErrUnauthorized", err)
	}
	if err := m.Destroy(ctx, sess.Token); err != nil {
		t.Errorf("Destroy(twice) error = %v, want nil", err)
	}
}

func TestPurgeExpired(t *testing.T) {
	m, store := newTestSessionManager(t)
	ctx := context.Background()

	m.Create(ctx, testUser)
	m.now = func() time.Time { return time.Now().UTC().Add(-2 * SessionTTL) }
	m.Create(ctx, testUser)
	m.now = func() time.Time { return time.Now().UTC() }

	n, err := m.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired() error = %v", err)
	}
	if n != 1 || store.Len() != 1 {
		t.Errorf("PurgeExpired() = %d, store len %d; want 1, 1", n, store.Len())
	}
}

func TestJanitorSweep(t *testing.T) {
	m, store := newTestSessionManager(t)
	ctx := context.Background()

	m.now = func() time.Time { return time.Now().UTC().Add(-2 * SessionTTL) }
	m.Create(ctx, testUser)
	m.now = func() time.Time { return time.Now().UTC() }

	j, err := NewJanitor(m, "@every 10m", slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("NewJanitor() error = %v", err)
	}
	j.Sweep()

	if store.Len() != 0 {
		t.Errorf("store has %d sessions after sweep, want 0", store.Len())
	}

	j.Start()
	j.Stop(ctx)
}

func TestNewJanitor_BadSchedule(t *testing.T) {
	m, _ := newTestSessionManager(t)
	if _, err := NewJanitor(m, "not a schedule", slog.New(slog.DiscardHandler)); err == nil {
		t.Fatal("NewJanitor() should reject an invalid cron expression")
	}
}

// =========================================================================
// COOKIES
// =========================================================================

func TestSetCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetCookie(rec, "signed-value", time.Now().Add(time.Hour))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName || c.Value != "signed-value" {
		t.Errorf("cookie = %s=%s", c.Name, c.Value)
	}
	if !c.HttpOnly || c.SameSite != http.SameSiteLaxMode || c.Secure || c.Path != "/" {
		t.Errorf("unexpected cookie attributes: %+v", c)
	}
}

func TestClearCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearCookie(rec)

	c := rec.Result().Cookies()[0]
	if c.Name != CookieName || c.MaxAge >= 0 {
		t.Errorf("ClearCookie() = %+v, want expired %s cookie", c, CookieName)
	}
}
