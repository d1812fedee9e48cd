package analytics

import (
	"sort"
	"time"

	"finpanel/internal/core"
)

// DefaultReminderDays are the offsets, in days before the due date, at which
// bill reminders fire.
var DefaultReminderDays = []int{7, 3, 1}

// Reminder is an upcoming bill due in exactly DaysBefore days.
type Reminder struct {
	Record     core.TransactionRecord `json:"record"`
	DaysBefore int                    `json:"days_before"`
}

// Reminders returns the unpaid, non-cancelled expense bills due exactly one
// of days after today's date at now. A nil days uses DefaultReminderDays.
// Results are ordered by DaysBefore ascending, then input order.
func Reminders(txs []core.TransactionRecord, now time.Time, days []int) []Reminder {
	if days == nil {
		days = DefaultReminderDays
	}
	wanted := make(map[int]bool, len(days))
	for _, d := range days {
		if d >= 0 {
			wanted[d] = true
		}
	}

	var out []Reminder
	for _, r := range txs {
		if r.Type != core.Expense || !r.IsBill || r.DueDate.IsZero() {
			continue
		}
		if r.Status == core.StatusPaid || r.Status == core.StatusCancelled {
			continue
		}
		n := r.DueDate.DaysUntil(now)
		if wanted[n] {
			out = append(out, Reminder{Record: r, DaysBefore: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysBefore < out[j].DaysBefore
	})
	return out
}
