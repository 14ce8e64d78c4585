// Package server wires configuration, storage, services and handlers into
// an HTTP server and runs it until a shutdown signal arrives.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/habit-tracker/internal/auth"
	"github.com/sakif/habit-tracker/internal/config"
	"github.com/sakif/habit-tracker/internal/handler"
	"github.com/sakif/habit-tracker/internal/metrics"
	"github.com/sakif/habit-tracker/internal/middleware"
	"github.com/sakif/habit-tracker/internal/repository"
	"github.com/sakif/habit-tracker/internal/repository/memory"
	"github.com/sakif/habit-tracker/internal/repository/sqlstore"
	"github.com/sakif/habit-tracker/internal/service"
)

const shutdownTimeout = 30 * time.Second

type Server struct {
	router   *chi.Mux
	config   *config.Config
	logger   *slog.Logger
	store    *sqlstore.Store
	sessions *auth.SessionManager
	janitor  *auth.Janitor
	metrics  *metrics.Metrics
}

// New opens and migrates the database and builds the router. The server
// owns the database and closes it when Start returns (or on Close).
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, err := sqlstore.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	s, err := newServer(cfg, store, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	return s, nil
}

func newServer(cfg *config.Config, store *sqlstore.Store, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.SessionSecret)
	if err != nil {
		return nil, err
	}

	var sessionStore repository.SessionRepository = store
	if cfg.SessionStore == config.StoreMemory {
		sessionStore = memory.NewSessionStore()
	}

	sessions := auth.NewSessionManager(sessionStore, tokens, logger)
	janitor, err := auth.NewJanitor(sessions, cfg.SessionSweep, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		store:    store,
		sessions: sessions,
		janitor:  janitor,
		metrics:  metrics.New(),
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(s.metrics.Instrument)
	s.router.Use(middleware.CORS(s.config.CORSOrigin))

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"message":"Not found"}`))
	})

	s.router.Get("/healthz", handler.Health(s.store, s.logger))
	s.router.Handle("/metrics", s.metrics.Handler())

	pages, err := handler.NewPageHandler(s.config.StaticDir, s.logger)
	if err != nil {
		return fmt.Errorf("static dir %s: %w", s.config.StaticDir, err)
	}
	s.router.Get("/", pages.Page("index.html"))
	s.router.Get("/allhabits.html", pages.Page("allhabits.html"))
	s.router.Get("/contactus.html", pages.Page("contactus.html"))
	s.router.Get("/allhabits", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/allhabits.html", http.StatusFound)
	})
	s.router.Handle("/static/*", http.StripPrefix("/static", pages.Static()))

	passwords := auth.NewPasswordService()
	authService := service.NewAuthService(s.store, s.sessions, passwords, s.metrics, s.logger)
	habitService := service.NewHabitService(s.store, s.metrics, s.logger)
	contactService := service.NewContactService(s.store, s.metrics, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	habitHandler := handler.NewHabitHandler(habitService, s.logger)
	contactHandler := handler.NewContactHandler(contactService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/signin", authHandler.HandleSignin)
		r.Post("/contact", contactHandler.HandleSubmit)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession(s.sessions, s.logger))

			r.Post("/logout", authHandler.HandleLogout)
			r.Get("/me", authHandler.HandleMe)

			r.Get("/habits", habitHandler.HandleList)
			r.Post("/habits", habitHandler.HandleCreate)
			r.Post("/habits/save", habitHandler.HandleSave)
			r.Put("/habits/{id}", habitHandler.HandleUpdate)
			r.Delete("/habits/{id}", habitHandler.HandleDelete)
		})
	})

	return nil
}

// Handler exposes the router, for tests and for embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.store.Close()
}

// Start serves HTTP and runs the session janitor until SIGINT/SIGTERM or
// ctx is cancelled, then drains in-flight requests for up to 30s.
func (s *Server) Start(ctx context.Context) error {
	defer s.Close()

	srv := &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.janitor.Start()

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("driver", s.store.Driver()),
			slog.String("sessions", s.config.SessionStore),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			serveErr = fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	janitorCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.janitor.Stop(janitorCtx)

	if serveErr == nil {
		s.logger.Info("server stopped gracefully")
	}
	return serveErr
}
