package main

import (
	"context"
	"errors"
	"os"
	"time"

	"finpanel/internal/amqp"
	"finpanel/internal/cli"
	"finpanel/internal/log"
	"finpanel/internal/services"
	"finpanel/internal/sheets"
	gsheet "finpanel/internal/sheets/google"
	"finpanel/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting finpanel-worker", log.FieldOperation, log.OpStartup, "interval", cfg.RefreshInterval)

	startCtx := context.Background()
	dash, err := cli.OpenDashboards(startCtx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize dashboards", log.FieldError, err)
		os.Exit(1)
	}
	defer dash.Close()

	// Google Sheets export is optional
	var exporter sheets.DashboardExporter
	if cfg.ExportEnabled() {
		client, err := gsheet.New(startCtx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleExportSheet,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		exporter = client
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	// Notifications and ledger events need a broker
	var (
		amqpClient *amqp.Client
		scanner    worker.Scanner
	)
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPNotifyQueue, cfg.AMQPEventsQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		scanner = services.NewNotificationService(amqpClient, dash.Repo, cfg.ReminderDays, cfg.DisplayCurrency, logger)
	} else {
		logger.Info("AMQP disabled - notifications and ledger events are off")
	}

	w := worker.NewRefreshWorker(dash.Service, scanner, exporter, dash.Repo, worker.RefreshWorkerConfig{
		Interval: cfg.RefreshInterval,
		Location: dash.Service.Location(),
	}, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	if amqpClient != nil {
		go func() {
			if err := amqpClient.ConsumeLedgerEvents(ctx, w.HandleLedgerEvent); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Ledger event consumption failed", log.FieldError, err)
			}
		}()
	}

	if err := w.Run(ctx); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
