package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmynk/debtplan/internal/config"
	"github.com/mmynk/debtplan/internal/metrics"
	"github.com/mmynk/debtplan/internal/server"
	"github.com/mmynk/debtplan/internal/storage"
	"github.com/mmynk/debtplan/internal/storage/postgres"
	"github.com/mmynk/debtplan/internal/storage/sqlite"
	"github.com/mmynk/debtplan/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logging.SetupWithLevel(cfg.LogLevel, cfg.LogFormat)
	logger := slog.Default()
	if cfg.UsesDevSecret() {
		logger.Warn("JWT_SECRET not set, using the development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	srv, err := server.New(cfg, store, metrics.New(), logger)
	if err != nil {
		logger.Error("Failed to build server", "error", err)
		os.Exit(1)
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.DBDriver == config.DriverPostgres {
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "driver", cfg.DBDriver)
		return store, nil
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	slog.Info("Storage initialized", "driver", cfg.DBDriver, "database", cfg.DBPath)
	return store, nil
}
