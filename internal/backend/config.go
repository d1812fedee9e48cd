package backend

import (
	"errors"
	"fmt"

	"finpanel/internal/config"
	"finpanel/internal/ledger/remote"
)

// FromAppConfig picks the backend settings out of the application config.
func FromAppConfig(app *config.Config) (Config, error) {
	if app == nil {
		return Config{}, errors.New("app config is nil")
	}

	kind, err := ParseKind(app.LedgerBackend)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Kind: kind,
		Remote: remote.Config{
			BaseURL: app.LedgerBaseURL,
			Token:   app.LedgerToken,
			Timeout: app.LedgerTimeout,
		},
		SQLitePath: app.SQLiteDBPath,
		SeedDir:    app.MemoryDataDir,
	}, nil
}

// Validate checks the settings the selected kind needs.
func (c Config) Validate() error {
	switch c.Kind {
	case KindRemote:
		if c.Remote.BaseURL == "" {
			return errors.New("ledger base URL is required for remote backend")
		}
	case KindSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case KindMemory:
	default:
		return fmt.Errorf("unknown ledger backend %q", c.Kind)
	}
	return nil
}
