package adapters

import (
	"context"
	"errors"
	"fmt"

	"finpanel/internal/core"
	"finpanel/internal/ledger"
	"finpanel/internal/storage"
)

// SnapshotReader is the subset of the SQLite repository the adapter reads.
type SnapshotReader interface {
	LoadTransactions(ctx context.Context, source string) ([]core.TransactionRecord, error)
	LoadInvestments(ctx context.Context, source string) ([]core.InvestmentRecord, error)
	LoadGoals(ctx context.Context, source string) ([]core.SavingsGoal, error)
}

// SQLiteAdapter serves the stored snapshot as a read-only ledger.Source.
// This lets the dashboard run offline from the last fetched data.
type SQLiteAdapter struct {
	storage SnapshotReader
}

var _ ledger.Source = (*SQLiteAdapter)(nil)

func NewSQLiteAdapter(storage SnapshotReader) *SQLiteAdapter {
	return &SQLiteAdapter{storage: storage}
}

// ListBills implements ledger.BillReader
func (a *SQLiteAdapter) ListBills(ctx context.Context) ([]core.TransactionRecord, error) {
	recs, err := a.storage.LoadTransactions(ctx, ledger.SourceBills)
	return recs, mapErr(ledger.SourceBills, err)
}

// ListFinances implements ledger.FinanceReader
func (a *SQLiteAdapter) ListFinances(ctx context.Context) ([]core.TransactionRecord, error) {
	recs, err := a.storage.LoadTransactions(ctx, ledger.SourceFinances)
	return recs, mapErr(ledger.SourceFinances, err)
}

// ListInvestments implements ledger.InvestmentReader
func (a *SQLiteAdapter) ListInvestments(ctx context.Context) ([]core.InvestmentRecord, error) {
	recs, err := a.storage.LoadInvestments(ctx, ledger.SourceInvestments)
	return recs, mapErr(ledger.SourceInvestments, err)
}

// ListGoals implements ledger.GoalReader
func (a *SQLiteAdapter) ListGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	recs, err := a.storage.LoadGoals(ctx, ledger.SourceGoals)
	return recs, mapErr(ledger.SourceGoals, err)
}

// mapErr reports a never-fetched source as unavailable rather than empty.
func mapErr(source string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNoSnapshot) {
		return fmt.Errorf("%w: %s never fetched", ledger.ErrSourceUnavailable, source)
	}
	return fmt.Errorf("load %s: %w", source, err)
}
