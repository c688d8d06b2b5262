package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/thenoetrevino/dealboard/internal/config"
	"github.com/thenoetrevino/dealboard/internal/daemon"
	"github.com/thenoetrevino/dealboard/internal/logging"
)

func main() {
	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	if err := logging.Init(); err != nil {
		slog.Warn("file logging unavailable, using stderr", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	socketPath := cfg.Daemon.SocketPath
	if socketPath == "" {
		slog.Error("daemon.socket_path is not set and the home directory is unknown")
		os.Exit(1)
	}

	// Ensure the socket directory exists with secure permissions
	if err := os.MkdirAll(filepath.Dir(socketPath), 0o700); err != nil {
		slog.Error("failed to create socket directory", "error", err)
		os.Exit(1)
	}

	server, err := daemon.NewServer(socketPath, daemon.DefaultOptions())
	if err != nil {
		slog.Error("failed to create daemon", "error", err)
		os.Exit(1)
	}

	slog.Info("dealboard daemon starting", "socket_path", socketPath, "pid", os.Getpid())

	// Start the daemon (blocks until shutdown)
	if err := server.Start(ctx); err != nil {
		slog.Error("daemon error", "error", err)
		os.Exit(1)
	}

	slog.Info("dealboard daemon shutting down gracefully", server.Metrics().Snapshot().LogAttrs()...)
}
