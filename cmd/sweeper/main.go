package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/footyheroes/platform/internal/app"
	"github.com/footyheroes/platform/internal/infra"
)

// The sweeper periodically expires overdue player requests and lifts
// suspensions whose term has ended. Both transitions are also applied
// lazily on read, so the sweep interval bounds staleness, not correctness.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("sweeper failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	interval, err := time.ParseDuration(cfg.SweepInterval)
	if err != nil {
		return fmt.Errorf("parse sweep interval: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("sweeper connected to postgres")

	svcs := app.BuildServices(app.RouterDeps{Pool: pool, Logger: logger})

	logger.Info("sweeper starting", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("sweeper shutting down")
			return nil
		case <-ticker.C:
			if _, err := svcs.Requests.SweepExpired(ctx); err != nil {
				logger.Error("request sweep error", "error", err)
			}
			if _, err := svcs.Sanctions.SweepSuspensions(ctx); err != nil {
				logger.Error("suspension sweep error", "error", err)
			}
		}
	}
}
