package main

import (
	"context"
	"errors"
	"os"
	"time"

	"duit/internal/amqp"
	"duit/internal/cli"
	applog "duit/internal/log"
	gsheet "duit/internal/sheets/google"
	"duit/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)
	if err := cfg.ValidateSheets(); err != nil {
		logger.Error("worker configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}

	// The worker reads pending rows from the same SQLite database the
	// server writes to.
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	sheetsClient, err := gsheet.New(context.Background(), gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		OAuthClientFile: cfg.GoogleOAuthClientFile,
		OAuthTokenFile:  cfg.GoogleOAuthTokenFile,
		OAuthClientJSON: cfg.GoogleOAuthClientJSON,
		OAuthTokenJSON:  cfg.GoogleOAuthTokenJSON,
	})
	if err != nil {
		logger.Error("failed to initialize Google Sheets client", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("failed to initialize AMQP client", applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, sheetsClient, cfg.SyncBatchSize, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.Info("starting sync worker",
		"queue", cfg.AMQPQueue, "interval", cfg.SyncInterval.String())
	if err := syncWorker.Run(ctx, amqpClient, cfg.SyncInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("sync worker stopped with error", applog.FieldError, err.Error())
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("worker stopped")
}
