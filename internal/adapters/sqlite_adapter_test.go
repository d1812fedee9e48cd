package adapters

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"finpanel/internal/core"
	"finpanel/internal/ledger"
	"finpanel/internal/storage"
)

func TestSQLiteAdapterReadsSnapshot(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "snap.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()
	ctx := context.Background()

	if err := repo.SaveTransactions(ctx, ledger.SourceBills, []core.TransactionRecord{{ID: "b1", IsBill: true}}, time.Now()); err != nil {
		t.Fatal(err)
	}

	a := NewSQLiteAdapter(repo)
	res := ledger.Fetch(ctx, a, nil)

	if len(res.Snapshot.Bills) != 1 || res.Snapshot.Bills[0].ID != "b1" {
		t.Fatalf("unexpected bills: %+v", res.Snapshot.Bills)
	}
	fin, _ := res.Status(ledger.SourceFinances)
	if fin.OK || !errors.Is(fin.Error(), ledger.ErrSourceUnavailable) {
		t.Fatalf("never-fetched source should be unavailable: %+v", fin)
	}
}
