package core

// Snapshot is one consistent view of the ledger collections the engine
// aggregates over. Any collection may be empty when its source failed.
type Snapshot struct {
	Bills       []TransactionRecord `json:"bills"`
	Finances    []TransactionRecord `json:"finances"`
	Investments []InvestmentRecord  `json:"investments"`
	Goals       []SavingsGoal       `json:"goals"`
}

// Transactions returns bills followed by finances in a new slice.
func (s Snapshot) Transactions() []TransactionRecord {
	out := make([]TransactionRecord, 0, len(s.Bills)+len(s.Finances))
	out = append(out, s.Bills...)
	return append(out, s.Finances...)
}
