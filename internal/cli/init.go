// Package cli holds the initialization shared by cmd/duit and
// cmd/duit-worker: env loading, logger setup, config validation and
// signal handling.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"duit/internal/config"
	applog "duit/internal/log"
	"duit/internal/storage"
)

// SetupLogger initializes structured logging for the given component and
// installs it as the process default.
func SetupLogger(component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Component = component
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. A missing file
// is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it, exiting the
// process on failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the SQLite store, exiting the process on failure.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("failed to initialize SQLite store",
			applog.FieldError, err.Error(), "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// GracefulShutdown cancels the returned context on SIGINT/SIGTERM, runs
// cleanup, and closes the done channel when shutdown finishes.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup()
		}

		cancel()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("shutdown timeout reached")
		case <-time.After(2 * time.Second):
			logger.Info("shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup has
// run.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
