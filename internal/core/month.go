package core

import (
	"fmt"
	"time"
)

// MonthKey identifies a calendar month. Two dates fall in the same month iff
// both components match.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthKeyOf returns the month of t in t's own location.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// AddMonths returns the key n months after k (n may be negative).
func (k MonthKey) AddMonths(n int) MonthKey {
	t := time.Date(k.Year, k.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// Contains reports whether d falls in the month. Absent dates are in no month.
func (k MonthKey) Contains(d Date) bool {
	if d.IsZero() {
		return false
	}
	return d.MonthKey() == k
}

// Label is the short presentation form, e.g. "Jan 2024".
func (k MonthKey) Label() string {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}

// String returns the sortable "2006-01" form.
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Before reports whether k is an earlier month than o.
func (k MonthKey) Before(o MonthKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Month < o.Month
}
