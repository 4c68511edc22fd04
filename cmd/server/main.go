// Package main is the entry point for the food passport server.
//
// main stays minimal: load configuration, set up logging, build the
// server, start it. All real logic lives under internal/.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hackclub/food-passport/internal/config"
	"github.com/hackclub/food-passport/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger isn't configured yet; stderr is all we have.
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	level := slog.LevelDebug
	if cfg.Production() {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	// The sqlite file and the upload dir both live under data/ by default;
	// create the parent so a fresh checkout starts cleanly.
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		logger.Error("failed to create database directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
