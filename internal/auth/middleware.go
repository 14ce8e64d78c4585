package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/model"
)

// contextKey is unexported so only this package can read or write the
// session in a request context.
type contextKey string

const sessionKey contextKey = "session"

// RequireSession rejects requests without a live session with 401 and
// otherwise stores the *model.Session in the request context.
func RequireSession(sessions *SessionManager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				writeUnauthorized(w)
				return
			}

			sess, err := sessions.Load(r.Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, apperror.ErrUnauthorized) {
					writeUnauthorized(w)
					return
				}
				logger.Error("session lookup failed",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				writeStatus(w, http.StatusInternalServerError, "Server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFromContext returns the session set by RequireSession.
func SessionFromContext(ctx context.Context) (*model.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*model.Session)
	return sess, ok && sess != nil
}

func writeUnauthorized(w http.ResponseWriter) {
	writeStatus(w, http.StatusUnauthorized, apperror.Unauthorized().Message)
}

func writeStatus(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}
