package analytics

import (
	"sort"
	"strings"
	"time"

	"finpanel/internal/core"
)

const (
	Uncategorized = "uncategorized"
	UnknownIssuer = "unknown"

	// MaxIssuerGroups caps the issuer ranking.
	MaxIssuerGroups = 10
	// MaxDisplayName is the rune length after which display names are cut.
	MaxDisplayName = 15
)

// Group is one ranked bucket of a breakdown. Name is the full grouping key;
// DisplayName may be shortened for presentation.
type Group struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"display_name"`
	Total       core.Money `json:"total"`
	Count       int        `json:"count"`
	Rank        int        `json:"rank"`
}

// CategoryBreakdown groups the current month's expenses by category, sorted
// by total descending. It is never truncated.
func CategoryBreakdown(txs []core.TransactionRecord, now time.Time) []Group {
	groups := groupExpenses(txs, now, func(r core.TransactionRecord) string {
		return keyOr(r.Category, Uncategorized)
	})
	for i := range groups {
		groups[i].DisplayName = groups[i].Name
	}
	return groups
}

// IssuerBreakdown groups the current month's expenses by issuer and keeps the
// top MaxIssuerGroups groups by total.
func IssuerBreakdown(txs []core.TransactionRecord, now time.Time) []Group {
	groups := groupExpenses(txs, now, func(r core.TransactionRecord) string {
		return keyOr(r.Issuer, UnknownIssuer)
	})
	if len(groups) > MaxIssuerGroups {
		groups = groups[:MaxIssuerGroups]
	}
	for i := range groups {
		groups[i].DisplayName = Truncate(groups[i].Name, MaxDisplayName)
	}
	return groups
}

// Truncate shortens s to n runes followed by "..." when it is longer.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func groupExpenses(txs []core.TransactionRecord, now time.Time, key func(core.TransactionRecord) string) []Group {
	month := core.MonthKeyOf(now)
	var groups []Group
	index := make(map[string]int)
	for _, r := range txs {
		if r.Type != core.Expense || !month.Contains(r.DueDate) {
			continue
		}
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Name: k})
		}
		groups[i].Total = groups[i].Total.Add(r.Amount)
		groups[i].Count++
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Total.Cents > groups[j].Total.Cents
	})
	for i := range groups {
		groups[i].Rank = i
	}
	return groups
}

func keyOr(s, fallback string) string {
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}
