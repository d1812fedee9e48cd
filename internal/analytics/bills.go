package analytics

import (
	"time"

	"finpanel/internal/core"
)

// BillsDue is the pending/overdue split of the expense bills.
type BillsDue struct {
	Pending      []core.TransactionRecord `json:"pending"`
	Overdue      []core.TransactionRecord `json:"overdue"`
	TotalPending core.Money               `json:"total_pending"`
	TotalOverdue core.Money               `json:"total_overdue"`
}

// PendingBills returns expense bills whose display status is pending or
// confirmed at now, in input order.
func PendingBills(txs []core.TransactionRecord, now time.Time) []core.TransactionRecord {
	var out []core.TransactionRecord
	for _, r := range txs {
		if r.Type != core.Expense || !r.IsBill {
			continue
		}
		switch DisplayStatus(r, now) {
		case core.StatusPending, core.StatusConfirmed:
			out = append(out, r)
		}
	}
	return out
}

// OverdueBills returns records whose display status is overdue at now.
func OverdueBills(txs []core.TransactionRecord, now time.Time) []core.TransactionRecord {
	var out []core.TransactionRecord
	for _, r := range txs {
		if DisplayStatus(r, now) == core.StatusOverdue {
			out = append(out, r)
		}
	}
	return out
}

// TotalAmount sums the amounts of txs.
func TotalAmount(txs []core.TransactionRecord) core.Money {
	var total core.Money
	for _, r := range txs {
		total = total.Add(r.Amount)
	}
	return total
}

// SelectBills computes both selections and their totals.
func SelectBills(txs []core.TransactionRecord, now time.Time) BillsDue {
	pending := PendingBills(txs, now)
	overdue := OverdueBills(txs, now)
	return BillsDue{
		Pending:      pending,
		Overdue:      overdue,
		TotalPending: TotalAmount(pending),
		TotalOverdue: TotalAmount(overdue),
	}
}
