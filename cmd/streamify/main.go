package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sglre6355/streamify/internal/app"
	_ "github.com/sglre6355/streamify/internal/modules/music_player"
)

// version is set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0" ./cmd/streamify
var version = "dev"

func main() {
	// Load configuration
	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// The terminal view owns stdout, so logs go to a file
	logFile, err := openLogFile(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logFile.Close() }()

	level, _ := cfg.Level()
	slog.SetDefault(slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: level})))

	slog.Info("starting streamify", "version", version)

	if err := run(cfg); err != nil {
		slog.Error("exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "streamify: %v\n", err)
		_ = logFile.Close()
		os.Exit(1)
	}

	slog.Info("completed shutdown")
}

func run(cfg *app.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.NewApp(cfg)
	a.LoadModules()

	if err := a.Start(ctx); err != nil {
		_ = a.Stop()
		return fmt.Errorf("failed to start: %w", err)
	}

	runErr := a.Run(ctx)
	if ctx.Err() != nil {
		slog.Info("received termination signal, shutting down")
	}

	if err := a.Stop(); err != nil {
		slog.Error("failed to shutdown", "error", err)
	}

	return runErr
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
