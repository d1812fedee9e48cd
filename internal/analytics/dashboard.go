package analytics

import (
	"time"

	"finpanel/internal/core"
)

// Options tune BuildDashboard.
type Options struct {
	// Window is the rollup length in months; non-positive means DefaultWindow.
	Window int
	// Unavailable names the sources whose data is missing from the snapshot.
	Unavailable []string
}

// Dashboard bundles every derived view for one snapshot at one instant.
type Dashboard struct {
	GeneratedAt  time.Time          `json:"generated_at"`
	Period       string             `json:"period"`
	PeriodLabel  string             `json:"period_label"`
	CurrentMonth MonthlyBucket      `json:"current_month"`
	Monthly      []MonthlyBucket    `json:"monthly"`
	Categories   []Group            `json:"categories"`
	Issuers      []Group            `json:"issuers"`
	Installments []InstallmentGroup `json:"installments"`
	Portfolio    Portfolio          `json:"portfolio"`
	Bills        BillsDue           `json:"bills"`
	Goals        GoalsSummary       `json:"goals"`
	Budget       BudgetStatus       `json:"budget"`
	Unavailable  []string           `json:"unavailable,omitempty"`
}

// BuildDashboard computes every view from s at now. Transactions are the
// bills followed by the finances; installment detection sees bills only.
func BuildDashboard(s core.Snapshot, now time.Time, opts Options) Dashboard {
	txs := s.Transactions()
	monthly := MonthlyRollup(txs, now, opts.Window)
	current := monthly[len(monthly)-1]
	month := core.MonthKeyOf(now)

	return Dashboard{
		GeneratedAt:  now,
		Period:       month.String(),
		PeriodLabel:  month.Label(),
		CurrentMonth: current,
		Monthly:      monthly,
		Categories:   CategoryBreakdown(txs, now),
		Issuers:      IssuerBreakdown(txs, now),
		Installments: DetectInstallmentGroups(s.Bills),
		Portfolio:    PortfolioRollup(s.Investments),
		Bills:        SelectBills(txs, now),
		Goals:        GoalsOverview(s.Goals, now),
		Budget:       BudgetAlert(txs, now),
		Unavailable:  append([]string(nil), opts.Unavailable...),
	}
}
