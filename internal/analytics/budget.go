package analytics

import (
	"time"

	"finpanel/internal/core"
)

// BudgetStatus compares realized income and expense for now's month.
type BudgetStatus struct {
	Period         string     `json:"period"`
	Income         core.Money `json:"income"`
	Expense        core.Money `json:"expense"`
	Balance        core.Money `json:"balance"`
	Exceeded       bool       `json:"exceeded"`
	PercentageOver float64    `json:"percentage_over"`
}

// BudgetAlert reports whether this month's realized expenses exceed a
// positive realized income, and by how much in percent.
func BudgetAlert(txs []core.TransactionRecord, now time.Time) BudgetStatus {
	b := CurrentMonth(txs, now)
	s := BudgetStatus{
		Period:  b.Key().String(),
		Income:  b.Income,
		Expense: b.Expense,
		Balance: b.Balance,
	}
	if b.Income.Cents > 0 && b.Expense.GreaterThan(b.Income) {
		s.Exceeded = true
		s.PercentageOver = Round2(Percent(b.Expense.Sub(b.Income), b.Income))
	}
	return s
}
