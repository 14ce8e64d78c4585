package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(t *testing.T, m *SessionManager) http.Handler {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok {
			t.Error("session missing from context")
			return
		}
		w.Write([]byte(sess.UserID))
	})
	return RequireSession(m, slog.New(slog.DiscardHandler))(next)
}

func TestRequireSession_NoCookie(t *testing.T) {
	m, _ := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	protected(t, m).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/habits", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Please login first"}`, rec.Body.String())
}

func TestRequireSession_BadCookie(t *testing.T) {
	m, _ := newTestSessionManager(t)

	req := httptest.NewRequest(http.MethodGet, "/api/habits", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "forged"})
	rec := httptest.NewRecorder()
	protected(t, m).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSession_Valid(t *testing.T) {
	m, _ := newTestSessionManager(t)
	_, signed, err := m.Create(context.Background(), testUser)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/habits", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: signed})
	rec := httptest.NewRecorder()
	protected(t, m).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestSessionFromContext_Empty(t *testing.T) {
	_, ok := SessionFromContext(context.Background())
	assert.False(t, ok)
}
