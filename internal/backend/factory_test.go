package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"finpanel/internal/adapters"
	"finpanel/internal/config"
	"finpanel/internal/ledger/memory"
	"finpanel/internal/ledger/remote"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}

	cfg, err := FromAppConfig(&config.Config{
		LedgerBackend: "remote",
		LedgerBaseURL: "https://ledger.example.com",
		LedgerToken:   "secret",
		LedgerTimeout: 3 * time.Second,
	})
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Kind != KindRemote || cfg.Remote.Token != "secret" || cfg.Remote.Timeout != 3*time.Second {
		t.Errorf("unexpected config %+v", cfg)
	}

	if _, err := FromAppConfig(&config.Config{LedgerBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}
	if _, err := ParseKind("Remote"); err == nil {
		t.Error("expected error for mixed-case kind")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"remote ok", Config{Kind: KindRemote, Remote: remote.Config{BaseURL: "http://x"}}, ""},
		{"remote without url", Config{Kind: KindRemote}, "base URL is required"},
		{"sqlite without path", Config{Kind: KindSQLite}, "SQLite database path is required"},
		{"memory ok", Config{Kind: KindMemory}, ""},
		{"invalid", Config{Kind: "csv"}, `unknown ledger backend "csv"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFactoryOpen(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	t.Run("memory", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, memory.GoalsFile), []byte(`[{"id":1,"name":"Trip"}]`), 0o644); err != nil {
			t.Fatal(err)
		}
		res, err := f.Open(ctx, Config{Kind: KindMemory, SeedDir: dir})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		goals, err := res.Source.ListGoals(ctx)
		if err != nil || len(goals) != 1 || goals[0].ID != "1" {
			t.Fatalf("unexpected goals %+v, %v", goals, err)
		}
		if _, ok := res.Source.(*memory.Store); !ok || res.Persistent {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		res, err := f.Open(ctx, Config{Kind: KindSQLite, SQLitePath: filepath.Join(t.TempDir(), "db", "f.db")})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer res.Close()
		if _, ok := res.Source.(*adapters.SQLiteAdapter); !ok || !res.Persistent {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("remote", func(t *testing.T) {
		res, err := f.Open(ctx, Config{Kind: KindRemote, Remote: remote.Config{BaseURL: "https://ledger.example.com/api"}})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if _, ok := res.Source.(*remote.Client); !ok {
			t.Errorf("unexpected source %T", res.Source)
		}
		if err := res.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	t.Run("remote bad scheme", func(t *testing.T) {
		if _, err := f.Open(ctx, Config{Kind: KindRemote, Remote: remote.Config{BaseURL: "ftp://ledger"}}); err == nil {
			t.Fatal("expected error")
		}
	})
}
