package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finpanel/internal/core"
	"finpanel/internal/ledger"
	"finpanel/internal/ledger/memory"
	"finpanel/internal/services"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func seeded() *memory.Store {
	m := memory.New()
	m.AddTransaction(core.TransactionRecord{ID: "b1", Type: core.Expense, IsBill: true, Issuer: "Energy",
		Amount: core.Cents(10000), DueDate: core.NewDate(2024, 3, 10), Status: core.StatusPending})
	m.AddTransaction(core.TransactionRecord{ID: "b2", Type: core.Expense, IsBill: true, Issuer: "Water",
		Amount: core.Cents(5000), DueDate: core.NewDate(2024, 3, 18), Status: core.StatusPending})
	m.AddTransaction(core.TransactionRecord{ID: "f1", Type: core.Income, Issuer: "Salary",
		Amount: core.Cents(100000), DueDate: core.NewDate(2024, 3, 1), Status: core.StatusConfirmed})
	m.AddTransaction(core.TransactionRecord{ID: "f2", Type: core.Expense, Issuer: "Rent", Category: "housing",
		Amount: core.Cents(150000), DueDate: core.NewDate(2024, 3, 2), Status: core.StatusPaid})
	return m
}

func newTestServer(t *testing.T, src ledger.Source) *Server {
	t.Helper()
	clock := func() time.Time { return testNow }
	dash := services.NewDashboardService(src, nil, services.DashboardServiceConfig{
		Window:   6,
		Location: time.UTC,
		Clock:    clock,
	}, nil)
	s := NewServer(":0", dash, Options{Clock: clock, RefreshLimit: 2})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func do(t *testing.T, s *Server, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	s.Handler.ServeHTTP(rr, req)

	var body map[string]any
	if rr.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	}
	return rr, body
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, seeded())

	rr, _ := do(t, s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr, _ = do(t, s, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestServer_ReadyFailsWhenLedgerIsDown(t *testing.T) {
	src := seeded()
	down := errors.New("ledger down")
	for _, name := range ledger.SourceNames {
		src.Fail(name, down)
	}
	s := newTestServer(t, src)

	rr, body := do(t, s, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Len(t, body["failed"], len(ledger.SourceNames))
}

func TestServer_Dashboard(t *testing.T) {
	s := newTestServer(t, seeded())

	rr, body := do(t, s, http.MethodGet, "/api/dashboard")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "2024-03", body["period"])
	assert.Len(t, body["monthly"], 6)
	assert.Len(t, body["sources"], len(ledger.SourceNames))
}

func TestServer_BadNow(t *testing.T) {
	s := newTestServer(t, seeded())

	rr, body := do(t, s, http.MethodGet, "/api/dashboard?now=yesterday")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, body["error"], "invalid now")
	assert.Equal(t, rr.Header().Get("X-Request-ID"), body["request_id"])
}

func TestServer_Bills(t *testing.T) {
	s := newTestServer(t, seeded())

	rr, body := do(t, s, http.MethodGet, "/api/bills/overdue")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 1, body["count"])

	rr, body = do(t, s, http.MethodGet, "/api/bills/pending")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 1, body["count"])

	// on Mar 20 the second bill is overdue too
	rr, body = do(t, s, http.MethodGet, "/api/bills/overdue?now=2024-03-20")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 2, body["count"])
}

func TestServer_BudgetAlert(t *testing.T) {
	s := newTestServer(t, seeded())

	rr, body := do(t, s, http.MethodGet, "/api/alerts/budget")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, body["exceeded"])
	assert.InDelta(t, 50.0, body["percentage_over"], 0.001)
}

func TestServer_MonthlyRollupWindow(t *testing.T) {
	s := newTestServer(t, seeded())

	rr, body := do(t, s, http.MethodGet, "/api/rollup/monthly")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 6, body["window"])
	assert.Len(t, body["buckets"], 6)

	rr, body = do(t, s, http.MethodGet, "/api/rollup/monthly?window=12")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, body["buckets"], 12)

	rr, _ = do(t, s, http.MethodGet, "/api/rollup/monthly?window=0")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = do(t, s, http.MethodGet, "/api/rollup/monthly?window=61")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestServer_SourcesReportFailure(t *testing.T) {
	src := seeded()
	src.Fail(ledger.SourceInvestments, errors.New("timeout"))
	s := newTestServer(t, src)

	rr, body := do(t, s, http.MethodGet, "/api/sources")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []any{ledger.SourceInvestments}, body["failed"])

	_, body = do(t, s, http.MethodGet, "/api/dashboard")
	assert.Equal(t, []any{ledger.SourceInvestments}, body["unavailable"])
}

func TestServer_RefreshPicksUpChanges(t *testing.T) {
	src := seeded()
	s := newTestServer(t, src)

	_, body := do(t, s, http.MethodGet, "/api/bills/pending")
	assert.EqualValues(t, 1, body["count"])

	src.AddTransaction(core.TransactionRecord{ID: "b3", Type: core.Expense, IsBill: true, Issuer: "Phone",
		Amount: core.Cents(3000), DueDate: core.NewDate(2024, 3, 25), Status: core.StatusPending})

	_, body = do(t, s, http.MethodGet, "/api/bills/pending")
	assert.EqualValues(t, 1, body["count"], "memoized until refreshed")

	rr, _ := do(t, s, http.MethodPost, "/api/refresh")
	require.Equal(t, http.StatusOK, rr.Code)

	_, body = do(t, s, http.MethodGet, "/api/bills/pending")
	assert.EqualValues(t, 2, body["count"])
}

func TestServer_RefreshRateLimited(t *testing.T) {
	s := newTestServer(t, seeded())

	for i := 0; i < 2; i++ {
		rr, _ := do(t, s, http.MethodPost, "/api/refresh")
		require.Equal(t, http.StatusOK, rr.Code)
	}
	rr, _ := do(t, s, http.MethodPost, "/api/refresh")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Equal(t, "2", rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))
}

func TestServer_RefreshAllSourcesDown(t *testing.T) {
	src := seeded()
	for _, name := range ledger.SourceNames {
		src.Fail(name, errors.New("down"))
	}
	s := newTestServer(t, src)

	rr, body := do(t, s, http.MethodPost, "/api/refresh")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Len(t, body["failed"], len(ledger.SourceNames))
}

func TestServer_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, seeded())

	rr, _ := do(t, s, http.MethodGet, "/api/refresh")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRequestID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", requestID(r))

	r.Header.Set("X-Request-ID", "<script>")
	assert.NotEqual(t, "<script>", requestID(r))
}

func TestRateLimiterWindow(t *testing.T) {
	current := testNow
	rl := newRateLimiter(1, func() time.Time { return current })
	var m securityMetrics

	d := rl.allow("10.0.0.1", &m)
	assert.True(t, d.allowed)
	assert.Equal(t, 0, d.remaining)

	d = rl.allow("10.0.0.1", &m)
	assert.False(t, d.allowed)
	assert.Equal(t, 60, d.retryAfter(current))
	assert.True(t, rl.allow("10.0.0.2", &m).allowed)

	current = current.Add(time.Minute)
	assert.True(t, rl.allow("10.0.0.1", &m).allowed)
	assert.EqualValues(t, 1, m.rateLimitHits)
}

func TestRateLimiterSweepsStaleWindows(t *testing.T) {
	current := testNow
	rl := newRateLimiter(10, func() time.Time { return current })

	for i := 0; i < sweepEvery-1; i++ {
		rl.allow(fmt.Sprintf("10.0.%d.%d", i/250, i%250), nil)
	}
	require.Equal(t, sweepEvery-1, rl.size())

	current = current.Add(2 * time.Minute)
	rl.allow("10.9.9.9", nil)
	assert.Equal(t, 1, rl.size())
}

func TestExtractClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:1234"
	r.Header.Set("X-Forwarded-For", "1.2.3.4")
	assert.Equal(t, "203.0.113.9", extractClientIP(r), "untrusted peer cannot spoof")

	r.RemoteAddr = "10.0.0.5:1234"
	assert.Equal(t, "1.2.3.4", extractClientIP(r))
}

func TestSuspiciousReason(t *testing.T) {
	scanner := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	scanner.Header.Set("User-Agent", "sqlmap/1.7")

	tests := []struct {
		name string
		req  *http.Request
		want string
	}{
		{"clean", httptest.NewRequest(http.MethodGet, "/api/dashboard?window=3", nil), ""},
		{"dotenv probe", httptest.NewRequest(http.MethodGet, "/.env", nil), "path .env"},
		{"query injection", httptest.NewRequest(http.MethodGet, "/api/goals?q=union+select", nil), "query union select"},
		{"script in query", httptest.NewRequest(http.MethodGet, "/api/goals?q=%3Cscript%3E", nil), "query <script"},
		{"trace", httptest.NewRequest("TRACE", "/", nil), "method TRACE"},
		{"scanner agent", scanner, "agent sqlmap"},
	}

	var m securityMetrics
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, suspiciousReason(tt.req, &m))
		})
	}
	assert.EqualValues(t, 5, m.suspiciousRequests)
}

func TestServer_CORS(t *testing.T) {
	dash := services.NewDashboardService(seeded(), nil, services.DashboardServiceConfig{Location: time.UTC}, nil)
	s := NewServer(":0", dash, Options{AllowedOrigins: []string{"https://app.example.com"}})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()
	s.Handler.ServeHTTP(rr, req)
	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	s.Handler.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
