// Package analytics turns ledger collections into the derived views shown on
// the dashboard: monthly rollups, breakdowns, installment groups, portfolio
// totals and bill selections.
//
// Every function here is pure. Time-relative results depend only on the now
// argument, and inputs are never mutated.
package analytics

import (
	"time"

	"finpanel/internal/core"
)

// Classification is the time-relative view of a transaction record.
type Classification struct {
	Type          core.TxType `json:"type"`
	IsBill        bool        `json:"is_bill"`
	DisplayStatus core.Status `json:"display_status"`
}

// Classify derives the display status of r at now. The stored status is kept
// except that an unpaid expense bill whose due date has passed is overdue.
// A due date is considered passed once its midnight in now's location is
// before now.
func Classify(r core.TransactionRecord, now time.Time) Classification {
	c := Classification{Type: r.Type, IsBill: r.IsBill, DisplayStatus: r.Status}
	if r.Status == core.StatusPaid {
		c.DisplayStatus = core.StatusPaid
		return c
	}
	if !r.DueDate.IsZero() && r.Type == core.Expense && r.IsBill && r.DueDate.At(now.Location()).Before(now) {
		c.DisplayStatus = core.StatusOverdue
	}
	return c
}

// DisplayStatus is shorthand for Classify(r, now).DisplayStatus.
func DisplayStatus(r core.TransactionRecord, now time.Time) core.Status {
	return Classify(r, now).DisplayStatus
}
