package analytics

import (
	"time"

	"finpanel/internal/core"
)

// DefaultWindow is the number of trailing months, current included, used when
// no positive window is requested.
const DefaultWindow = 6

// MonthlyBucket aggregates the realized movement of one calendar month.
// Count includes every dated record in the month regardless of status.
type MonthlyBucket struct {
	Label   string     `json:"label"`
	Month   time.Month `json:"month"`
	Year    int        `json:"year"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
	Balance core.Money `json:"balance"`
	Count   int        `json:"count"`
}

// Key returns the month the bucket covers.
func (b MonthlyBucket) Key() core.MonthKey {
	return core.MonthKey{Year: b.Year, Month: b.Month}
}

// MonthlyRollup returns window buckets ending at now's month, oldest first.
// Only paid or confirmed records contribute to Income and Expense; records
// without a due date fall in no bucket. Empty months are kept.
func MonthlyRollup(txs []core.TransactionRecord, now time.Time, window int) []MonthlyBucket {
	if window <= 0 {
		window = DefaultWindow
	}
	current := core.MonthKeyOf(now)

	buckets := make([]MonthlyBucket, window)
	index := make(map[core.MonthKey]int, window)
	for i := range buckets {
		k := current.AddMonths(i - window + 1)
		buckets[i] = MonthlyBucket{Label: k.Label(), Month: k.Month, Year: k.Year}
		index[k] = i
	}

	for _, r := range txs {
		if r.DueDate.IsZero() {
			continue
		}
		i, ok := index[r.DueDate.MonthKey()]
		if !ok {
			continue
		}
		b := &buckets[i]
		b.Count++
		if !r.Status.Realized() {
			continue
		}
		switch r.Type {
		case core.Income:
			b.Income = b.Income.Add(r.Amount)
		case core.Expense:
			b.Expense = b.Expense.Add(r.Amount)
		}
	}

	for i := range buckets {
		buckets[i].Balance = buckets[i].Income.Sub(buckets[i].Expense)
	}
	return buckets
}

// CurrentMonth returns the bucket for now's month.
func CurrentMonth(txs []core.TransactionRecord, now time.Time) MonthlyBucket {
	return MonthlyRollup(txs, now, 1)[0]
}
