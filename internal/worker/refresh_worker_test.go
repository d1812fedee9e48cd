package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finpanel/internal/amqp"
	"finpanel/internal/core"
	"finpanel/internal/ledger"
	"finpanel/internal/ledger/memory"
	"finpanel/internal/services"
	sheetsmem "finpanel/internal/sheets/memory"
	"finpanel/internal/storage"
)

var now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type countingNotifier struct {
	n    int
	keys []string
}

func (c *countingNotifier) PublishNotification(_ context.Context, msg *amqp.NotificationMessage) error {
	c.n++
	c.keys = append(c.keys, msg.Key)
	return nil
}

type fixture struct {
	ledger   *memory.Store
	repo     *storage.SQLiteRepository
	notifier *countingNotifier
	exporter *sheetsmem.Exporter
	worker   *RefreshWorker
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "w.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	src := memory.New()
	src.AddTransaction(core.TransactionRecord{ID: "b1", Type: core.Expense, IsBill: true, Issuer: "Energy",
		Amount: core.Cents(9000), DueDate: core.NewDate(2024, 3, 16), Status: core.StatusPending})

	clock := func() time.Time { return now }
	dash := services.NewDashboardService(src, repo, services.DashboardServiceConfig{Location: time.UTC, Clock: clock}, nil)
	notifier := &countingNotifier{}
	scanner := services.NewNotificationService(notifier, repo, nil, "BRL", nil)
	exporter := sheetsmem.New("Dashboard")

	w := NewRefreshWorker(dash, scanner, exporter, repo, RefreshWorkerConfig{Interval: time.Hour, Clock: clock}, nil)
	return fixture{ledger: src, repo: repo, notifier: notifier, exporter: exporter, worker: w}
}

func TestRefreshWorker_Tick(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.worker.Tick(ctx))
	assert.Equal(t, 1, f.notifier.n, "one reminder for the bill due tomorrow")

	last, ok := f.exporter.Last()
	require.True(t, ok)
	assert.Equal(t, "2024-03", last.Period)

	state, err := f.repo.SourceState(ctx, ledger.SourceBills)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Records)

	require.NoError(t, f.worker.Tick(ctx))
	assert.Equal(t, 1, f.notifier.n, "reminder is not repeated")
	assert.Len(t, f.exporter.Exports(), 2)
}

func TestRefreshWorker_TickDatesInConfiguredLocation(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "w.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	src := memory.New()
	src.AddTransaction(core.TransactionRecord{ID: "b1", Type: core.Expense, IsBill: true, Issuer: "Energy",
		Amount: core.Cents(9000), DueDate: core.NewDate(2024, 3, 16), Status: core.StatusPending})

	// 01:00 UTC on the 16th is still the evening of the 15th in Sao Paulo.
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	clock := func() time.Time { return time.Date(2024, 3, 16, 1, 0, 0, 0, time.UTC) }

	dash := services.NewDashboardService(src, repo, services.DashboardServiceConfig{Location: saoPaulo, Clock: clock}, nil)
	notifier := &countingNotifier{}
	scanner := services.NewNotificationService(notifier, repo, nil, "BRL", nil)
	w := NewRefreshWorker(dash, scanner, nil, repo, RefreshWorkerConfig{Clock: clock, Location: saoPaulo}, nil)

	require.NoError(t, w.Tick(context.Background()))
	assert.Equal(t, []string{"reminder:b1:1"}, notifier.keys, "bill is due tomorrow, not overdue")
}

func TestRefreshWorker_HandleLedgerEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.worker.Tick(ctx))

	f.ledger.AddTransaction(core.TransactionRecord{ID: "b2", Type: core.Expense, IsBill: true, Issuer: "Gas",
		Amount: core.Cents(4000), DueDate: core.NewDate(2024, 3, 22), Status: core.StatusPending})

	require.NoError(t, f.worker.HandleLedgerEvent(ctx, amqp.NewLedgerEvent(amqp.EventBillCreated, "b2")))
	assert.Equal(t, 2, f.notifier.n, "new bill due in 7 days gets a reminder")
}

func TestRefreshWorker_HandleLedgerEventLedgerDown(t *testing.T) {
	f := newFixture(t)
	for _, name := range ledger.SourceNames {
		f.ledger.Fail(name, errors.New("offline"))
	}
	// Nothing stored yet, so every source is unavailable.
	err := f.worker.HandleLedgerEvent(context.Background(), amqp.NewLedgerEvent(amqp.EventBillUpdated, "b1"))
	assert.NoError(t, err)
	assert.Equal(t, 0, f.notifier.n)
}

func TestRefreshWorker_RunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.worker.Run(ctx) }()

	require.Eventually(t, func() bool { _, ok := f.exporter.Last(); return ok }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
