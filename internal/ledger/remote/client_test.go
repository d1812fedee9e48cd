package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"finpanel/internal/core"
	"finpanel/internal/ledger"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL + "/api/v1/", Token: "secret"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestListBillsAndFinances(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization header = %q", got)
		}
		if r.URL.Path != "/api/v1/bills" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		switch r.URL.Query().Get("is_bill") {
		case "true":
			_, _ = w.Write([]byte(`[{"id":1,"issuer":"Electric Co","amount":100.5,"due_date":"2024-01-05","status":"paid","type":"expense"}]`))
		case "false":
			_, _ = w.Write([]byte(`{"items":[{"id":2,"amount":"50","due_date":"2024-01-10T10:00:00Z","status":"confirmed","type":"income","is_bill":true}]}`))
		default:
			http.Error(w, "missing is_bill", http.StatusBadRequest)
		}
	})

	bills, err := c.ListBills(context.Background())
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if len(bills) != 1 || !bills[0].IsBill || bills[0].Amount.Cents != 10050 || bills[0].ID != "1" {
		t.Fatalf("unexpected bills: %+v", bills)
	}

	fins, err := c.ListFinances(context.Background())
	if err != nil {
		t.Fatalf("ListFinances: %v", err)
	}
	if len(fins) != 1 || fins[0].IsBill || fins[0].DueDate.String() != "2024-01-10" {
		t.Fatalf("unexpected finances: %+v", fins)
	}
}

func TestListBillsKeepsRecordsWithOddFields(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":1,"issuer":42,"category":7,"status":3,"amount":10,"due_date":"2024-03-01","type":"expense"},
			{"id":2,"issuer":"Ok","amount":20,"due_date":"2024-03-02","status":"paid","type":"expense"}
		]`))
	})

	bills, err := c.ListBills(context.Background())
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if len(bills) != 2 {
		t.Fatalf("expected 2 bills, got %+v", bills)
	}
	if bills[0].Issuer != "" || bills[0].Category != "" || bills[0].Status != core.StatusPending {
		t.Errorf("unexpected defaults: %+v", bills[0])
	}
	if bills[1].Issuer != "Ok" || bills[1].Status != core.StatusPaid {
		t.Errorf("unexpected second bill: %+v", bills[1])
	}
}

func TestListInvestmentsAndGoals(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/investments":
			_, _ = w.Write([]byte(`[{"id":"i1","name":"ACME","type":"stock","amount_invested":1000,"current_value":null}]`))
		case "/api/v1/savings-goals":
			_, _ = w.Write([]byte(`null`))
		default:
			http.NotFound(w, r)
		}
	})

	invs, err := c.ListInvestments(context.Background())
	if err != nil || len(invs) != 1 || invs[0].CurrentValue != nil {
		t.Fatalf("unexpected investments: %+v err=%v", invs, err)
	}
	goals, err := c.ListGoals(context.Background())
	if err != nil || goals == nil || len(goals) != 0 {
		t.Fatalf("expected empty goals, got %v err=%v", goals, err)
	}
}

func TestStatusErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ledger.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ledger.ErrUnauthorized},
		{"not found", http.StatusNotFound, ledger.ErrNotFound},
		{"server error", http.StatusBadGateway, ledger.ErrSourceUnavailable},
		{"throttled", http.StatusTooManyRequests, ledger.ErrSourceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"detail":"nope"}`))
			})
			_, err := c.ListInvestments(context.Background())
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUnexpectedStatusIncludesDetail(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"bad filter"}`))
	})
	_, err := c.ListGoals(context.Background())
	if err == nil || errors.Is(err, ledger.ErrSourceUnavailable) {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := err.Error(); got != "list goals: unexpected status 400: bad filter" {
		t.Fatalf("error = %q", got)
	}
}

func TestNetworkErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c, err := NewClient(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.ListBills(context.Background()); !errors.Is(err, ledger.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	for _, base := range []string{"", "ftp://ledger", "://bad"} {
		if _, err := NewClient(Config{BaseURL: base}); err == nil {
			t.Errorf("expected error for base %q", base)
		}
	}
}
