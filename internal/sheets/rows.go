package sheets

import (
	"time"

	"finpanel/internal/analytics"
)

// Rows lays out a dashboard as spreadsheet rows: a title line, then the
// monthly rollup, the category breakdown, the portfolio by type and the
// budget status, each with its own header and separated by a blank row.
// Amounts are plain numbers so the sheet can format them.
func Rows(d analytics.Dashboard) [][]any {
	rows := [][]any{
		{"finpanel", d.PeriodLabel, d.GeneratedAt.Format(time.RFC3339)},
		{},
		{"Month", "Income", "Expense", "Balance", "Records"},
	}
	for _, b := range d.Monthly {
		rows = append(rows, []any{b.Label, b.Income.Float(), b.Expense.Float(), b.Balance.Float(), b.Count})
	}

	rows = append(rows, []any{}, []any{"Category", "Total", "Records"})
	for _, g := range d.Categories {
		rows = append(rows, []any{g.Name, g.Total.Float(), g.Count})
	}

	rows = append(rows, []any{}, []any{"Investment type", "Invested", "Current", "Profit", "Profit %"})
	for _, ts := range d.Portfolio.ByType {
		rows = append(rows, []any{ts.Label, ts.Invested.Float(), ts.Current.Float(), ts.Profit.Float(), ts.ProfitPct})
	}

	b := d.Budget
	rows = append(rows,
		[]any{},
		[]any{"Budget", "Income", "Expense", "Balance", "Exceeded", "% over"},
		[]any{b.Period, b.Income.Float(), b.Expense.Float(), b.Balance.Float(), b.Exceeded, b.PercentageOver},
	)
	return rows
}
