package core

import (
	"encoding/json"
	"testing"
)

func TestTransactionRecordUnmarshal(t *testing.T) {
	data := `[
		{"id": 12, "issuer": " Electric Co ", "amount": "100.00", "due_date": "2024-01-05", "status": "PAID", "type": "expense", "is_bill": true, "confidence": 0.92},
		{"id": "abc", "amount": -5, "due_date": "bogus", "status": "whatever", "type": null, "is_bill": "false", "category": null, "confidence": 4}
	]`
	var recs []TransactionRecord
	if err := json.Unmarshal([]byte(data), &recs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}

	a := recs[0]
	if a.ID != "12" || a.Issuer != "Electric Co" || a.Amount.Cents != 10000 {
		t.Errorf("unexpected first record: %+v", a)
	}
	if a.Status != StatusPaid || a.Type != Expense || !a.IsBill {
		t.Errorf("unexpected enums: %+v", a)
	}
	if a.Confidence == nil || *a.Confidence != 0.92 {
		t.Errorf("confidence = %v", a.Confidence)
	}
	if a.DueDate.String() != "2024-01-05" {
		t.Errorf("due date = %s", a.DueDate)
	}

	b := recs[1]
	if b.ID != "abc" || b.Amount.Cents != 0 || !b.DueDate.IsEmpty() {
		t.Errorf("unexpected defaults: %+v", b)
	}
	if b.Status != StatusPending || b.Type != Expense || b.IsBill || b.Confidence != nil {
		t.Errorf("unexpected defaults: %+v", b)
	}
}

func TestUnmarshalNonStringTextFields(t *testing.T) {
	var recs []TransactionRecord
	data := `[
		{"id": 1, "issuer": 42, "category": 7, "status": 3, "type": false, "amount": 10, "due_date": "2024-03-01"},
		{"id": 2, "issuer": "Ok", "category": ["food"], "status": {"v": "paid"}, "amount": 20, "due_date": "2024-03-02"}
	]`
	if err := json.Unmarshal([]byte(data), &recs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	a := recs[0]
	if a.Issuer != "" || a.Category != "" || a.Status != StatusPending || a.Type != Expense || a.Amount.Cents != 1000 {
		t.Errorf("unexpected first record: %+v", a)
	}
	b := recs[1]
	if b.Issuer != "Ok" || b.Category != "" || b.Status != StatusPending {
		t.Errorf("unexpected second record: %+v", b)
	}

	var invs []InvestmentRecord
	if err := json.Unmarshal([]byte(`[{"id": 1, "name": 99, "type": 5, "amount_invested": 10}]`), &invs); err != nil {
		t.Fatalf("unmarshal investments: %v", err)
	}
	if invs[0].Name != "" || invs[0].Type != Other || invs[0].AmountInvested.Cents != 1000 {
		t.Errorf("unexpected investment: %+v", invs[0])
	}

	var goals []SavingsGoal
	if err := json.Unmarshal([]byte(`[{"id": 1, "name": true, "description": 3, "status": 1, "target_amount": 100}]`), &goals); err != nil {
		t.Fatalf("unmarshal goals: %v", err)
	}
	if goals[0].Name != "" || goals[0].Description != "" || goals[0].Status != GoalActive || goals[0].TargetAmount.Cents != 10000 {
		t.Errorf("unexpected goal: %+v", goals[0])
	}
}

func TestInvestmentRecordUnmarshal(t *testing.T) {
	var recs []InvestmentRecord
	data := `[
		{"id": 1, "name": "ACME", "type": "fixedIncome", "amount_invested": 1000, "current_value": 1200},
		{"id": 2, "name": "BTC", "type": "crypto", "amount_invested": 50, "current_value": null, "sell_date": "2024-02-01"},
		{"id": 3, "name": "Zero", "type": "mystery", "amount_invested": 10, "current_value": 0}
	]`
	if err := json.Unmarshal([]byte(data), &recs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if recs[0].Type != FixedIncome || recs[0].EffectiveCurrentValue().Cents != 120000 {
		t.Errorf("unexpected first: %+v", recs[0])
	}
	if recs[1].CurrentValue != nil || recs[1].EffectiveCurrentValue().Cents != 5000 || recs[1].Open() {
		t.Errorf("unexpected second: %+v", recs[1])
	}
	if recs[2].Type != Other || recs[2].CurrentValue == nil || recs[2].EffectiveCurrentValue().Cents != 0 {
		t.Errorf("unexpected third: %+v", recs[2])
	}
}

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"paid":      StatusPaid,
		" Overdue ": StatusOverdue,
		"canceled":  StatusCancelled,
		"":          StatusPending,
		"unknown":   StatusPending,
	}
	for in, want := range cases {
		if got := ParseStatus(in); got != want {
			t.Errorf("ParseStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSnapshotTransactions(t *testing.T) {
	s := Snapshot{
		Bills:    []TransactionRecord{{ID: "b1"}, {ID: "b2"}},
		Finances: []TransactionRecord{{ID: "f1"}},
	}
	txs := s.Transactions()
	if len(txs) != 3 || txs[0].ID != "b1" || txs[2].ID != "f1" {
		t.Fatalf("unexpected order: %+v", txs)
	}
	txs[0].ID = "changed"
	if s.Bills[0].ID != "b1" {
		t.Fatal("Transactions must not alias the bills slice")
	}
}
