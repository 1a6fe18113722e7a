package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"spyfall/internal/app"
	"spyfall/internal/config"
	"spyfall/internal/store"
	httpTransport "spyfall/internal/transport/http"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(stdout, cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting spyfall server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)
	if cfg.IsProduction() && len(cfg.Server.AllowedOrigins) == 0 {
		logger.Warn("ALLOWED_ORIGINS is empty, accepting requests from any origin")
	}

	// --- Snapshot mirror ---
	var mirror app.Mirror = app.NopMirror{}
	checks := map[string]httpTransport.Checker{}
	if cfg.Redis.URL != "" {
		rdb, err := store.Open(ctx, cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()

		redisMirror := store.NewRedisMirror(rdb, cfg.Redis.KeyPrefix, cfg.Game.RoomTTL, cfg.Redis.QueueSize, logger)
		defer redisMirror.Close()

		mirror = redisMirror
		checks["redis"] = redisMirror
		logger.Info("mirroring rooms to redis", "prefix", cfg.Redis.KeyPrefix)
	}

	// --- Rooms ---
	hub := app.NewGameHub(hubConfig(cfg), mirror, logger)
	defer hub.Close()

	// --- HTTP Server ---
	server := httpTransport.NewServer(cfg, hub, checks, logger)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		return server.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

func hubConfig(cfg *config.Config) app.HubConfig {
	return app.HubConfig{
		Settings: cfg.Settings(),
		Session: app.SessionOptions{
			TickInterval:   cfg.Game.TickInterval,
			AutoStartDelay: cfg.Game.AutoStartDelay,
			SweepInterval:  cfg.Game.SweepInterval,
			NoticeTTL:      cfg.Game.NoticeTTL,
		},
		RoomTTL:         cfg.Game.RoomTTL,
		CleanupInterval: cfg.Game.CleanupInterval,
	}
}

func newLogger(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Level),
	}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
