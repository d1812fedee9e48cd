// Package ledger defines the read ports of the remote ledger and the
// concurrent fetch that assembles a snapshot from them.
package ledger

import (
	"context"
	"errors"

	"finpanel/internal/core"
)

// Source names, used in statuses, storage and logs.
const (
	SourceBills       = "bills"
	SourceFinances    = "finances"
	SourceInvestments = "investments"
	SourceGoals       = "goals"
)

// SourceNames lists every source in fetch order.
var SourceNames = []string{SourceBills, SourceFinances, SourceInvestments, SourceGoals}

var (
	ErrSourceUnavailable = errors.New("ledger source unavailable")
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("ledger rejected credentials")
)

// Ports for inbound ledger adapters.
type (
	BillReader interface {
		// ListBills returns the records flagged is_bill=true.
		ListBills(ctx context.Context) ([]core.TransactionRecord, error)
	}

	FinanceReader interface {
		// ListFinances returns the incomes and expenses that are not bills.
		ListFinances(ctx context.Context) ([]core.TransactionRecord, error)
	}

	InvestmentReader interface {
		ListInvestments(ctx context.Context) ([]core.InvestmentRecord, error)
	}

	GoalReader interface {
		ListGoals(ctx context.Context) ([]core.SavingsGoal, error)
	}

	// Source is a complete ledger backend.
	Source interface {
		BillReader
		FinanceReader
		InvestmentReader
		GoalReader
	}
)
