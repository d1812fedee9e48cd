package backend

import (
	"context"
	"fmt"

	"finpanel/internal/adapters"
	"finpanel/internal/ledger/memory"
	"finpanel/internal/ledger/remote"
	"finpanel/internal/log"
	"finpanel/internal/storage"
)

// Factory opens the backend named by Config.Kind.
type Factory struct {
	logger *log.Logger
}

var _ Opener = (*Factory)(nil)

// NewFactory creates a backend factory. A nil logger discards output.
func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Open validates cfg and opens its backend.
func (f *Factory) Open(ctx context.Context, cfg Config) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		b   *Backend
		err error
	)
	switch cfg.Kind {
	case KindRemote:
		b, err = f.openRemote(cfg)
	case KindSQLite:
		b, err = f.openSQLite(cfg)
	case KindMemory:
		b, err = f.openMemory(cfg)
	}
	if err != nil {
		return nil, err
	}

	f.logger.InfoContext(ctx, "Ledger backend opened",
		"backend", cfg.Kind.String(),
		"persistent", b.Persistent)
	return b, nil
}

func (f *Factory) openRemote(cfg Config) (*Backend, error) {
	client, err := remote.NewClient(cfg.Remote)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ledger client: %w", err)
	}
	f.logger.Debug("Remote ledger configured",
		"base_url", cfg.Remote.BaseURL,
		"authenticated", cfg.Remote.Token != "")
	return &Backend{Source: client}, nil
}

func (f *Factory) openSQLite(cfg Config) (*Backend, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	return &Backend{
		Source:     adapters.NewSQLiteAdapter(repo),
		Persistent: true,
		close:      repo.Close,
	}, nil
}

func (f *Factory) openMemory(cfg Config) (*Backend, error) {
	if cfg.SeedDir == "" {
		return &Backend{Source: memory.New()}, nil
	}
	store, err := memory.NewFromFiles(cfg.SeedDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory seed: %w", err)
	}
	f.logger.Debug("Memory ledger seeded", "data_directory", cfg.SeedDir)
	return &Backend{Source: store}, nil
}
