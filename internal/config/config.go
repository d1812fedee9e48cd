package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Backend names accepted in LEDGER_BACKEND.
const (
	BackendRemote = "remote"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

var validBackends = []string{BackendRemote, BackendMemory, BackendSQLite}

type Config struct {
	// HTTP Server
	Port        string
	LogLevel    string
	CORSOrigins []string

	// Ledger
	LedgerBackend string
	LedgerBaseURL string
	LedgerToken   string
	LedgerTimeout time.Duration
	MemoryDataDir string

	// Snapshot store
	SQLiteDBPath string

	// AMQP
	AMQPURL         string
	AMQPExchange    string
	AMQPNotifyQueue string
	AMQPEventsQueue string

	// Dashboard
	RollupWindow    int
	CacheSize       int
	CacheTTL        time.Duration
	DisplayCurrency string
	Timezone        string

	// Worker
	RefreshInterval time.Duration
	ReminderDays    []int

	// Google Sheets export
	GoogleSpreadsheetID      string
	GoogleExportSheet        string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8081"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),

		LedgerBackend: getEnv("LEDGER_BACKEND", BackendMemory),
		LedgerBaseURL: getEnv("LEDGER_BASE_URL", ""),
		LedgerToken:   getEnv("LEDGER_TOKEN", ""),
		LedgerTimeout: getEnvDuration("LEDGER_TIMEOUT", 15*time.Second),
		MemoryDataDir: getEnv("MEMORY_DATA_DIR", "./data/seed"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finpanel.db"),

		AMQPURL:         getEnv("AMQP_URL", ""),
		AMQPExchange:    getEnv("AMQP_EXCHANGE", "finpanel"),
		AMQPNotifyQueue: getEnv("AMQP_NOTIFY_QUEUE", "finpanel_notifications"),
		AMQPEventsQueue: getEnv("AMQP_EVENTS_QUEUE", "finpanel_ledger_events"),

		RollupWindow:    getEnvInt("ROLLUP_WINDOW", 6),
		CacheSize:       getEnvInt("CACHE_SIZE", 128),
		CacheTTL:        getEnvDuration("CACHE_TTL", 5*time.Minute),
		DisplayCurrency: strings.ToUpper(getEnv("DISPLAY_CURRENCY", "BRL")),
		Timezone:        getEnv("TIMEZONE", "Local"),

		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 15*time.Minute),
		ReminderDays:    getEnvIntList("REMINDER_DAYS", []int{7, 3, 1}),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleExportSheet:        getEnv("GOOGLE_EXPORT_SHEET", "Dashboard"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
	}

	return cfg
}

// Location resolves Timezone; "Local" or empty mean the process location.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// ExportEnabled reports whether a spreadsheet is configured.
func (c *Config) ExportEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			continue
		}
		if u, err := url.Parse(origin); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid CORS origin '%s': must be '*' or scheme://host", origin))
		}
	}

	if !slices.Contains(validBackends, c.LedgerBackend) {
		errors = append(errors, fmt.Sprintf("invalid ledger backend '%s': must be one of %v", c.LedgerBackend, validBackends))
	}

	if c.LedgerBackend == BackendRemote {
		if c.LedgerBaseURL == "" {
			errors = append(errors, "LEDGER_BASE_URL is required when using remote backend")
		} else if u, err := url.Parse(c.LedgerBaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid ledger URL '%s': %v", c.LedgerBaseURL, err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid ledger URL scheme '%s': must be 'http' or 'https'", u.Scheme))
		}
		if c.LedgerTimeout < time.Second || c.LedgerTimeout > 5*time.Minute {
			errors = append(errors, fmt.Sprintf("invalid ledger timeout %v: must be between 1s and 5m", c.LedgerTimeout))
		}
	}

	if c.LedgerBackend == BackendMemory && c.MemoryDataDir != "" {
		if info, err := os.Stat(c.MemoryDataDir); err == nil && !info.IsDir() {
			errors = append(errors, fmt.Sprintf("memory data dir '%s' is not a directory", c.MemoryDataDir))
		}
	}

	if c.SQLiteDBPath == "" {
		if c.LedgerBackend == BackendSQLite {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPNotifyQueue == "" || c.AMQPEventsQueue == "" {
			errors = append(errors, "AMQP queue names cannot be empty when AMQP URL is provided")
		}
	}

	if c.RollupWindow < 1 || c.RollupWindow > 60 {
		errors = append(errors, fmt.Sprintf("invalid rollup window %d: must be between 1 and 60", c.RollupWindow))
	}
	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}
	if len(c.DisplayCurrency) != 3 {
		errors = append(errors, fmt.Sprintf("invalid display currency '%s': must be an ISO 4217 code", c.DisplayCurrency))
	}
	if _, err := c.Location(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if c.RefreshInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be at least 1 second", c.RefreshInterval))
	} else if c.RefreshInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be at most 24 hours", c.RefreshInterval))
	}
	for _, d := range c.ReminderDays {
		if d < 0 || d > 365 {
			errors = append(errors, fmt.Sprintf("invalid reminder day %d: must be between 0 and 365", d))
		}
	}

	if c.ExportEnabled() {
		if c.GoogleExportSheet == "" {
			errors = append(errors, "GOOGLE_EXPORT_SHEET cannot be empty when GOOGLE_SPREADSHEET_ID is set")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets export")
		}
		if c.GoogleServiceAccountFile != "" && c.GoogleServiceAccountJSON == "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvIntList parses a comma-separated list such as "7,3,1". Any invalid
// element makes the whole value fall back to the default.
func getEnvIntList(key string, defaultValue []int) []int {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		i, err := strconv.Atoi(part)
		if err != nil {
			return defaultValue
		}
		out = append(out, i)
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnvList splits a comma-separated value, dropping empty elements.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
