package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finpanel/internal/cache"
	"finpanel/internal/cli"
	apphttp "finpanel/internal/http"
	"finpanel/internal/log"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting finpanel server", log.FieldOperation, log.OpStartup, "port", cfg.Port, "backend", cfg.LedgerBackend)

	dash, err := cli.OpenDashboards(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize dashboards", log.FieldError, err)
		os.Exit(1)
	}

	cacheManager := cache.NewManager(logger)
	cacheManager.Register(dash.Service.Cache())
	cacheManager.StartCleanup(time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, dash.Service, apphttp.Options{
		Logger:         logger,
		AllowedOrigins: cfg.CORSOrigins,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cacheManager.Stop()
		if err := dash.Close(); err != nil {
			logger.Error("Failed to close dashboards", log.FieldError, err)
		}
	})

	// Warm the snapshot so the first request does not pay for the fetch
	if _, err := dash.Service.Refresh(ctx); err != nil {
		logger.Warn("Initial ledger fetch failed", log.FieldError, err)
	}

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
