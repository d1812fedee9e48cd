package cli

import (
	"context"
	"errors"
	"fmt"

	"finpanel/internal/backend"
	"finpanel/internal/config"
	"finpanel/internal/log"
	"finpanel/internal/services"
	"finpanel/internal/storage"
)

// Dashboards bundles the ledger backend, the snapshot store and the
// dashboard service built on top of them.
type Dashboards struct {
	Service *services.DashboardService
	Repo    *storage.SQLiteRepository
	backend *backend.Backend
}

// OpenDashboards builds the dashboard service for cfg. The snapshot store is
// always opened; it only serves as a fallback when the ledger backend is not
// the store itself.
func OpenDashboards(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Dashboards, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	result, err := backend.NewFactory(logger).Open(ctx, backendCfg)
	if err != nil {
		return nil, fmt.Errorf("create ledger backend: %w", err)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		_ = result.Close()
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	var store services.SnapshotStore
	if !result.Persistent {
		store = repo
	}

	svc := services.NewDashboardService(result.Source, store, services.DashboardServiceConfig{
		Window:    cfg.RollupWindow,
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
		Location:  loc,
	}, logger)

	logger.InfoContext(ctx, "Dashboard service ready",
		"backend", backendCfg.Kind.String(),
		log.FieldWindow, cfg.RollupWindow,
		"fallback", store != nil)

	return &Dashboards{Service: svc, Repo: repo, backend: result}, nil
}

// Close releases the backend and the snapshot store.
func (d *Dashboards) Close() error {
	return errors.Join(d.backend.Close(), d.Repo.Close())
}
