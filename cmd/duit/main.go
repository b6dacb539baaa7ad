package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"duit/internal/analysis"
	"duit/internal/backend"
	"duit/internal/cli"
	apphttp "duit/internal/http"
	applog "duit/internal/log"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("invalid backend configuration", applog.FieldError, err.Error())
		os.Exit(1)
	}

	factory := backend.NewFactory(logger)
	service, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("failed to initialize data backend",
			applog.FieldError, err.Error(), "backend", cfg.DataBackend)
		os.Exit(1)
	}

	var analyzer apphttp.Analyzer
	if cfg.GeminiAPIKey != "" {
		analyzer = analysis.NewClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel)
		logger.Info("analysis enabled", "model", cfg.GeminiModel)
	} else {
		logger.Info("analysis disabled, no GEMINI_API_KEY provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, service, analyzer, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", applog.FieldError, err.Error())
		}
		if err := service.Close(); err != nil {
			logger.Error("backend close error", applog.FieldError, err.Error())
		}
	})

	logger.Info("starting server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", applog.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("server stopped")
}
