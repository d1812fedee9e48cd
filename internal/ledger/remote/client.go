// Package remote reads ledger collections from the ledger's REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finpanel/internal/core"
	"finpanel/internal/ledger"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 32 << 20
)

// Config configures the client.
type Config struct {
	// BaseURL is the API root, e.g. "https://ledger.example.com/api/v1".
	BaseURL string
	// Token is sent as a bearer token. Never logged.
	Token string
	// Timeout applies per request when HTTPClient is nil.
	Timeout time.Duration
	// HTTPClient is an optional custom HTTP client (for testing).
	HTTPClient *http.Client
}

// Client implements ledger.Source over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	token      string
}

var _ ledger.Source = (*Client)(nil)

// NewClient validates cfg and returns a client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("remote ledger: base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("remote ledger: invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("remote ledger: unsupported scheme %q", base.Scheme)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{httpClient: httpClient, baseURL: base, token: cfg.Token}, nil
}

func (c *Client) ListBills(ctx context.Context) ([]core.TransactionRecord, error) {
	recs, err := getList[core.TransactionRecord](ctx, c, "/bills", url.Values{"is_bill": {"true"}})
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	for i := range recs {
		recs[i].IsBill = true
	}
	return recs, nil
}

func (c *Client) ListFinances(ctx context.Context) ([]core.TransactionRecord, error) {
	recs, err := getList[core.TransactionRecord](ctx, c, "/bills", url.Values{"is_bill": {"false"}})
	if err != nil {
		return nil, fmt.Errorf("list finances: %w", err)
	}
	for i := range recs {
		recs[i].IsBill = false
	}
	return recs, nil
}

func (c *Client) ListInvestments(ctx context.Context) ([]core.InvestmentRecord, error) {
	recs, err := getList[core.InvestmentRecord](ctx, c, "/investments", nil)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	return recs, nil
}

func (c *Client) ListGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	recs, err := getList[core.SavingsGoal](ctx, c, "/savings-goals", nil)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return recs, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()
	return u.String()
}

// getList fetches a JSON array. An object wrapping the array under "items"
// or "data" is accepted too.
func getList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ledger.ErrSourceUnavailable, err)
	}
	if err := statusError(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return decodeList[T](body)
}

func statusError(code int, body []byte) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", ledger.ErrUnauthorized, code)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w (status %d)", ledger.ErrNotFound, code)
	case code >= 500 || code == http.StatusTooManyRequests:
		return fmt.Errorf("%w (status %d)", ledger.ErrSourceUnavailable, code)
	}
	return fmt.Errorf("unexpected status %d: %s", code, errorDetail(body))
}

// errorDetail extracts the ledger's {"detail": ...} message when present.
func errorDetail(body []byte) string {
	var e struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(body, &e) == nil && e.Detail != nil {
		return fmt.Sprint(e.Detail)
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

func decodeList[T any](body []byte) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []T{}, nil
	}
	if body[0] == '{' {
		var wrapped struct {
			Items json.RawMessage `json:"items"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		switch {
		case len(wrapped.Items) > 0:
			body = wrapped.Items
		case len(wrapped.Data) > 0:
			body = wrapped.Data
		default:
			return []T{}, nil
		}
	}
	var out []T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
