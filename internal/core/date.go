package core

import (
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the wire and storage form of a calendar date.
const DateLayout = "2006-01-02"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Date is a calendar date without a time of day. The zero value means the
// date is absent.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t as observed in t's location.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// IsEmpty returns true if the date is absent
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// At returns midnight of the date in loc.
func (d Date) At(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

// MonthKey returns the calendar month the date falls in.
func (d Date) MonthKey() MonthKey {
	return MonthKey{Year: d.Year(), Month: d.Time.Month()}
}

// DaysUntil returns the number of whole calendar days from today's date (in
// now's location) to d. Negative when d is in the past.
func (d Date) DaysUntil(now time.Time) int {
	today := DateOf(now)
	return int(d.Sub(today.Time).Hours() / 24)
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD", or null when absent.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

// UnmarshalJSON never fails; unparseable input decodes to an absent date.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		*d = Date{}
		return nil
	}
	*d = ParseDueDate(raw)
	return nil
}

// ParseDueDate returns the calendar date held by value, or an absent Date.
//
// Accepted inputs are "YYYY-MM-DD" strings, RFC 3339 timestamps (the calendar
// date as written, ignoring the offset), time.Time, Date and pointers to them.
// Anything else, including nil and malformed strings, yields an absent Date.
func ParseDueDate(value any) Date {
	switch v := value.(type) {
	case nil:
		return Date{}
	case Date:
		return DateOf(v.Time)
	case *Date:
		if v == nil {
			return Date{}
		}
		return DateOf(v.Time)
	case time.Time:
		return DateOf(v)
	case *time.Time:
		if v == nil {
			return Date{}
		}
		return DateOf(*v)
	case string:
		return parseDateString(v)
	case *string:
		if v == nil {
			return Date{}
		}
		return parseDateString(*v)
	}
	return Date{}
}

func parseDateString(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t)
		}
	}
	return Date{}
}
