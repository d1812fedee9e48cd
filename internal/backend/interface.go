package backend

import (
	"context"
	"fmt"
	"slices"

	"finpanel/internal/ledger"
	"finpanel/internal/ledger/remote"
)

// Kind names a ledger backend.
type Kind string

const (
	KindRemote Kind = "remote"
	KindMemory Kind = "memory"
	KindSQLite Kind = "sqlite"
)

// Kinds lists the supported backends.
var Kinds = []Kind{KindRemote, KindMemory, KindSQLite}

// ParseKind maps a LEDGER_BACKEND value to its Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !slices.Contains(Kinds, k) {
		return "", fmt.Errorf("unknown ledger backend %q, want one of %v", s, Kinds)
	}
	return k, nil
}

func (k Kind) String() string { return string(k) }

// Config selects and parameterizes a backend.
type Config struct {
	Kind Kind

	Remote remote.Config
	// SQLitePath is the snapshot database served by the sqlite backend
	SQLitePath string
	// SeedDir holds the JSON files loaded into the memory backend; empty
	// starts it with no records
	SeedDir string
}

// Backend is an opened ledger source.
type Backend struct {
	Source ledger.Source
	// Persistent is set when Source reads from the snapshot store itself,
	// so fetched data must not be saved back or used as a fallback.
	Persistent bool

	close func() error
}

// Close releases whatever the backend holds open.
func (b *Backend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}

// Opener opens ledger backends.
type Opener interface {
	Open(ctx context.Context, cfg Config) (*Backend, error)
}
