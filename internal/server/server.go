// Package server wires the RSVP application together and runs the HTTP server.
//
// New is the composition root:
//
//	config → Attendee Store (SQLite or PostgreSQL)
//	       → RSVPService → RSVPHandler / HealthHandler → chi routes
//
// Nothing below this package knows which store was chosen.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/event-rsvp/internal/handler"
	"github.com/sakif/event-rsvp/internal/middleware"
	"github.com/sakif/event-rsvp/internal/repository"
	"github.com/sakif/event-rsvp/internal/repository/postgres"
	sqliteRepo "github.com/sakif/event-rsvp/internal/repository/sqlite"
	"github.com/sakif/event-rsvp/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port        int
	TemplateDir string
	StaticDir   string
	// DBPath is the SQLite file, used when DatabaseURL is empty.
	DBPath string
	// DatabaseURL selects PostgreSQL when set.
	DatabaseURL string
	StrictDates bool
}

// Server owns the router and the Attendee Store. The store is closed when
// Start returns or Close is called.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	store  repository.Store
}

// New opens the Attendee Store and builds the routes.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Server, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening attendee store: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}

	if err := s.setupRoutes(); err != nil {
		store.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// openStore picks PostgreSQL when a URL is configured and SQLite otherwise.
// The SQLite directory is created if it does not exist.
func openStore(ctx context.Context, cfg Config) (repository.Store, error) {
	if cfg.DatabaseURL != "" {
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return db, nil
	}

	if cfg.DBPath != sqliteRepo.MemoryPath {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// setupRoutes configures middleware and routes.
//
// ROUTES:
//
//	GET  /          → RSVP form (HTML)
//	POST /          → submit an RSVP (JSON, or HTML for a browser post)
//	GET  /admin     → attendee table (HTML, or JSON with ?format=json)
//	GET  /healthz   → store reachability
//	GET  /static/*  → CSS and JS
//
// Middleware order: RequestID first so the logger can read the id, Recoverer
// last so a panic still gets logged as a 500.
func (s *Server) setupRoutes() error {
	s.router.Use(middleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	rsvpService := service.NewRSVPService(s.store, s.logger, service.Options{
		StrictDates: s.config.StrictDates,
	})
	rsvpHandler, err := handler.NewRSVPHandler(rsvpService, s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating rsvp handler: %w", err)
	}
	healthHandler := handler.NewHealthHandler(s.store, s.logger)

	s.router.Get("/", rsvpHandler.HandleForm)
	s.router.Post("/", rsvpHandler.HandleSubmit)
	s.router.Get("/admin", rsvpHandler.HandleAdmin)
	s.router.Get("/healthz", healthHandler.HandleHealth)

	return nil
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the Attendee Store.
func (s *Server) Close() error {
	return s.store.Close()
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up to
// 30 seconds and closes the store.
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		attrs := []any{
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		}
		if s.config.DatabaseURL != "" {
			attrs = append(attrs, slog.String("store", "postgres"))
		} else {
			attrs = append(attrs, slog.String("store", "sqlite"), slog.String("database", s.config.DBPath))
		}
		s.logger.Info("server starting", attrs...)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
