package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"finpanel/internal/amqp"
	"finpanel/internal/core"
	"finpanel/internal/ledger"
	"finpanel/internal/log"
	"finpanel/internal/services"
	"finpanel/internal/sheets"
)

// Dashboards is the part of services.DashboardService the worker drives.
type Dashboards interface {
	Refresh(ctx context.Context) (ledger.Result, error)
	Dashboard(ctx context.Context, now time.Time) (services.DashboardView, error)
	Invalidate()
}

// Scanner publishes due notifications for a snapshot.
type Scanner interface {
	Scan(ctx context.Context, snap core.Snapshot, now time.Time) (services.ScanResult, error)
}

// Pruner drops notification marks older than a cutoff.
type Pruner interface {
	PruneNotifications(ctx context.Context, cutoff time.Time) (int64, error)
}

// RefreshWorkerConfig holds configuration for the refresh worker
type RefreshWorkerConfig struct {
	// Interval between periodic refreshes (default: 15m)
	Interval time.Duration
	// Retention of sent-notification marks (default: 90 days)
	Retention time.Duration
	// Clock replaces time.Now
	Clock func() time.Time
	// Location is the calendar reminders and overdue notices are dated in
	// (default: time.Local)
	Location *time.Location
}

// RefreshWorker keeps the stored snapshot fresh, sends notifications and
// optionally exports the dashboard after each refresh.
type RefreshWorker struct {
	dashboards Dashboards
	scanner    Scanner
	exporter   sheets.DashboardExporter
	pruner     Pruner
	config     RefreshWorkerConfig
	logger     *log.Logger

	// ticks from events and from the timer never overlap
	mu sync.Mutex
}

// NewRefreshWorker creates a worker. scanner, exporter and pruner may be nil.
func NewRefreshWorker(dashboards Dashboards, scanner Scanner, exporter sheets.DashboardExporter, pruner Pruner, config RefreshWorkerConfig, logger *log.Logger) *RefreshWorker {
	if config.Interval <= 0 {
		config.Interval = 15 * time.Minute
	}
	if config.Retention <= 0 {
		config.Retention = 90 * 24 * time.Hour
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &RefreshWorker{
		dashboards: dashboards,
		scanner:    scanner,
		exporter:   exporter,
		pruner:     pruner,
		config:     config,
		logger:     logger.WithComponent(log.ComponentWorker),
	}
}

// HandleLedgerEvent refreshes after a ledger change. An unreachable ledger
// is not an error here: the event is acknowledged and the next tick retries.
func (w *RefreshWorker) HandleLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	w.logger.InfoContext(ctx, "Processing ledger event",
		log.FieldEventType, ev.Type,
		log.FieldRecordID, ev.RecordID,
		"event_id", ev.ID)

	w.dashboards.Invalidate()
	err := w.Tick(ctx)
	if errors.Is(err, ledger.ErrSourceUnavailable) {
		w.logger.WarnContext(ctx, "Ledger unavailable while handling event", log.FieldError, err)
		return nil
	}
	return err
}

// Tick runs one refresh, notification scan, export and prune cycle. Later
// steps still run when an earlier one fails, except that nothing runs when
// the refresh produced no data.
func (w *RefreshWorker) Tick(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.config.Clock().In(w.config.Location)

	res, err := w.dashboards.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	var errs []error
	if w.scanner != nil {
		if _, err := w.scanner.Scan(ctx, res.Snapshot, now); err != nil {
			errs = append(errs, fmt.Errorf("scan notifications: %w", err))
		}
	}

	if w.exporter != nil {
		view, err := w.dashboards.Dashboard(ctx, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("build dashboard: %w", err))
		} else if _, err := w.exporter.Export(ctx, view.Dashboard); err != nil {
			errs = append(errs, fmt.Errorf("export dashboard: %w", err))
		}
	}

	if w.pruner != nil {
		n, err := w.pruner.PruneNotifications(ctx, now.Add(-w.config.Retention))
		if err != nil {
			errs = append(errs, fmt.Errorf("prune notifications: %w", err))
		} else if n > 0 {
			w.logger.DebugContext(ctx, "Pruned notification marks", "removed", n)
		}
	}

	w.logger.InfoContext(ctx, "Refresh cycle finished",
		log.FieldOperation, log.OpRefresh,
		"failed_sources", res.Failed(),
		"errors", len(errs))
	return errors.Join(errs...)
}

// Run ticks immediately and then every Interval until ctx is done.
func (w *RefreshWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Refresh worker started", "interval", w.config.Interval)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		if err := w.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			log.NewStructuredLogger(w.logger).LogError(ctx, "Refresh cycle failed", err, log.ComponentWorker, log.OpRefresh, nil)
		}

		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Refresh worker stopped", "reason", ctx.Err())
			return nil
		case <-ticker.C:
		}
	}
	w.logger.InfoContext(ctx, "Refresh worker stopped", "reason", ctx.Err())
	return nil
}
