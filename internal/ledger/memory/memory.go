// Package memory is an in-process ledger used for demos and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"finpanel/internal/core"
	"finpanel/internal/ledger"
)

// Seed file names read by NewFromFiles.
const (
	BillsFile       = "bills.json"
	FinancesFile    = "finances.json"
	InvestmentsFile = "investments.json"
	GoalsFile       = "goals.json"
)

type Store struct {
	mu          sync.Mutex
	bills       []core.TransactionRecord
	finances    []core.TransactionRecord
	investments []core.InvestmentRecord
	goals       []core.SavingsGoal
	failing     map[string]error
}

func New() *Store {
	return &Store{failing: map[string]error{}}
}

// NewFromFiles seeds a store from the JSON files in dir. Missing files leave
// the matching collection empty; malformed files are an error.
func NewFromFiles(dir string) (*Store, error) {
	s := New()
	if err := readSeed(filepath.Join(dir, BillsFile), &s.bills); err != nil {
		return nil, err
	}
	if err := readSeed(filepath.Join(dir, FinancesFile), &s.finances); err != nil {
		return nil, err
	}
	if err := readSeed(filepath.Join(dir, InvestmentsFile), &s.investments); err != nil {
		return nil, err
	}
	if err := readSeed(filepath.Join(dir, GoalsFile), &s.goals); err != nil {
		return nil, err
	}
	// Bills and finances are told apart by file, not by the flag in the data.
	for i := range s.bills {
		s.bills[i].IsBill = true
	}
	for i := range s.finances {
		s.finances[i].IsBill = false
	}
	return s, nil
}

func readSeed(path string, dst any) error {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read seed %s: %w", path, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode seed %s: %w", path, err)
	}
	return nil
}

// ListBills returns a copy of the stored bills.
func (s *Store) ListBills(_ context.Context) ([]core.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failing[ledger.SourceBills]; err != nil {
		return nil, err
	}
	return append([]core.TransactionRecord(nil), s.bills...), nil
}

func (s *Store) ListFinances(_ context.Context) ([]core.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failing[ledger.SourceFinances]; err != nil {
		return nil, err
	}
	return append([]core.TransactionRecord(nil), s.finances...), nil
}

func (s *Store) ListInvestments(_ context.Context) ([]core.InvestmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failing[ledger.SourceInvestments]; err != nil {
		return nil, err
	}
	return append([]core.InvestmentRecord(nil), s.investments...), nil
}

func (s *Store) ListGoals(_ context.Context) ([]core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failing[ledger.SourceGoals]; err != nil {
		return nil, err
	}
	return append([]core.SavingsGoal(nil), s.goals...), nil
}

// AddTransaction stores r as a bill or a finance entry according to IsBill.
func (s *Store) AddTransaction(r core.TransactionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.IsBill {
		s.bills = append(s.bills, r)
		return
	}
	s.finances = append(s.finances, r)
}

func (s *Store) AddInvestment(r core.InvestmentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.investments = append(s.investments, r)
}

func (s *Store) AddGoal(g core.SavingsGoal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals = append(s.goals, g)
}

// Remove deletes every record with the given id from all collections.
// It returns ledger.ErrNotFound when nothing matched.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.bills) + len(s.finances) + len(s.investments) + len(s.goals)
	s.bills = removeTx(s.bills, id)
	s.finances = removeTx(s.finances, id)
	s.investments = removeFunc(s.investments, func(r core.InvestmentRecord) bool { return r.ID == id })
	s.goals = removeFunc(s.goals, func(g core.SavingsGoal) bool { return g.ID == id })
	if n == len(s.bills)+len(s.finances)+len(s.investments)+len(s.goals) {
		return fmt.Errorf("remove %q: %w", id, ledger.ErrNotFound)
	}
	return nil
}

// Fail makes reads of the named source return err until cleared with a nil
// err.
func (s *Store) Fail(source string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failing, source)
		return
	}
	s.failing[source] = err
}

func removeTx(in []core.TransactionRecord, id string) []core.TransactionRecord {
	return removeFunc(in, func(r core.TransactionRecord) bool { return r.ID == id })
}

func removeFunc[T any](in []T, match func(T) bool) []T {
	out := in[:0]
	for _, v := range in {
		if !match(v) {
			out = append(out, v)
		}
	}
	return out
}
