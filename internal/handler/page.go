package handler

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

// PageHandler serves the front-end's HTML pages and assets from a directory.
type PageHandler struct {
	dir    string
	logger *slog.Logger
}

// NewPageHandler checks that dir exists so a bad STATIC_DIR fails at
// startup instead of on the first request.
func NewPageHandler(dir string, logger *slog.Logger) (*PageHandler, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "open", Path: dir, Err: os.ErrInvalid}
	}
	return &PageHandler{dir: dir, logger: logger}, nil
}

// Page returns a handler that always serves the named file.
func (h *PageHandler) Page(name string) http.HandlerFunc {
	path := filepath.Join(h.dir, name)
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := os.Stat(path); err != nil {
			h.logger.Warn("page missing", slog.String("file", path), slog.String("error", err.Error()))
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		http.ServeFile(w, r, path)
	}
}

// Static serves everything under dir. Mount it with the prefix stripped.
func (h *PageHandler) Static() http.Handler {
	return http.FileServer(http.Dir(h.dir))
}

// Pinger is implemented by the database store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health answers GET /healthz with 200 when the database responds.
func Health(db Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			logger.Error("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, Response{Success: false, Message: "Database unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, Response{Success: true})
	}
}
