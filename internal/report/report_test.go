package report

import (
	"strings"
	"testing"
	"time"

	"finpanel/internal/analytics"
	"finpanel/internal/core"
)

var now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func snapshot() core.Snapshot {
	cv := core.Cents(120000)
	return core.Snapshot{
		Bills: []core.TransactionRecord{
			{ID: "b1", Type: core.Expense, IsBill: true, Issuer: "Energy", Amount: core.Cents(10000),
				DueDate: core.NewDate(2024, 3, 10), Status: core.StatusPending},
			{ID: "b2", Type: core.Expense, IsBill: true, Issuer: "Store|One", Amount: core.Cents(5000),
				DueDate: core.NewDate(2024, 3, 18), Status: core.StatusPending},
			{ID: "b3", Type: core.Expense, IsBill: true, Issuer: "Store|One", Amount: core.Cents(5000),
				DueDate: core.NewDate(2024, 2, 18), Status: core.StatusPaid},
		},
		Finances: []core.TransactionRecord{
			{ID: "f1", Type: core.Income, Issuer: "Salary", Amount: core.Cents(100000),
				DueDate: core.NewDate(2024, 3, 1), Status: core.StatusConfirmed},
			{ID: "f2", Type: core.Expense, Issuer: "Rent", Category: "housing", Amount: core.Cents(150000),
				DueDate: core.NewDate(2024, 3, 2), Status: core.StatusPaid},
		},
		Investments: []core.InvestmentRecord{
			{ID: "i1", Name: "Index fund", Type: core.Stock, AmountInvested: core.Cents(100000), CurrentValue: &cv},
		},
		Goals: []core.SavingsGoal{
			{ID: "g1", Name: "Trip", TargetAmount: core.Cents(100000), CurrentAmount: core.Cents(25000),
				Deadline: core.NewDate(2024, 12, 31), Status: core.GoalActive},
		},
	}
}

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New("usd")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestDashboard(t *testing.T) {
	d := analytics.BuildDashboard(snapshot(), now, analytics.Options{Window: 3, Unavailable: []string{"goals"}})

	out, err := newRenderer(t).Dashboard(d)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	for _, want := range []string{
		"# Dashboard",
		"> Unavailable sources: goals",
		"| $1,000.00 | $1,500.00 |",
		"| 1 | housing | $1,500.00 | 1 |",
		"| 2024-03-10 | Energy | $100.00 |",
		`Store\|One`,
		"**Expenses exceed income by 50.00%.**",
		"| Trip | $250.00 | $1,000.00 | 25.00% | 2024-12-31 | active |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard missing %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "\n| 2024-"); n < 1 {
		t.Errorf("expected bill rows, got %d", n)
	}
}

func TestDashboardEmpty(t *testing.T) {
	d := analytics.BuildDashboard(core.Snapshot{}, now, analytics.Options{})

	out, err := newRenderer(t).Dashboard(d)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	for _, want := range []string{"No expenses this month.", "No savings goals.", "Within budget."} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Unavailable") {
		t.Errorf("unexpected unavailable banner:\n%s", out)
	}
}

func TestInstallments(t *testing.T) {
	groups := analytics.DetectInstallmentGroups(snapshot().Bills)

	out, err := newRenderer(t).Installments(groups)
	if err != nil {
		t.Fatalf("Installments: %v", err)
	}
	if !strings.Contains(out, `| Store\|One | 1/2 | 1 | $100.00 | 2024-03-18 |`) {
		t.Errorf("unexpected installments:\n%s", out)
	}

	out, err = newRenderer(t).Installments(nil)
	if err != nil {
		t.Fatalf("Installments: %v", err)
	}
	if !strings.Contains(out, "No installment series found.") {
		t.Errorf("unexpected empty output:\n%s", out)
	}
}

func TestPortfolio(t *testing.T) {
	p := analytics.PortfolioRollup(snapshot().Investments)

	out, err := newRenderer(t).Portfolio(p)
	if err != nil {
		t.Fatalf("Portfolio: %v", err)
	}
	for _, want := range []string{
		"| $1,000.00 | $1,200.00 | $200.00 | 20.00% | 1/1 |",
		"| Index fund | $1,000.00 | $1,200.00 | 20.00% | - |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("portfolio missing %q:\n%s", want, out)
		}
	}
}

func TestCell(t *testing.T) {
	cases := map[string]string{
		"a|b":   `a\|b`,
		"x\ny":  "x y",
		"   ":   "-",
		"plain": "plain",
	}
	for in, want := range cases {
		if got := cell(in); got != want {
			t.Errorf("cell(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTerminal(t *testing.T) {
	out, err := Terminal("# Title\n\nbody", 40)
	if err != nil {
		t.Fatalf("Terminal: %v", err)
	}
	if !strings.Contains(out, "Title") {
		t.Errorf("unexpected terminal output: %q", out)
	}
}
