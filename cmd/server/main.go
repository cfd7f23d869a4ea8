// Package main is the entry point for the event RSVP server.
//
// main only reads configuration, builds the logger and starts the server.
// Everything else lives in internal/.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sakif/event-rsvp/internal/config"
	"github.com/sakif/event-rsvp/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Relative paths resolve against the working directory; `go run ./cmd/server`
	// from the project root finds web/ directly.
	templateDir, _ := filepath.Abs(cfg.TemplateDir)
	staticDir, _ := filepath.Abs(cfg.StaticDir)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	srv, err := server.New(ctx, server.Config{
		Port:        cfg.Port,
		TemplateDir: templateDir,
		StaticDir:   staticDir,
		DBPath:      cfg.DBPath,
		DatabaseURL: cfg.DatabaseURL,
		StrictDates: cfg.StrictDates,
	}, logger)
	cancel()
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
