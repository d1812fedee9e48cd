package http

import (
	"errors"
	"net/http"

	"finpanel/internal/analytics"
	"finpanel/internal/core"
	"finpanel/internal/ledger"
	"finpanel/internal/services"
)

type billList struct {
	Items []core.TransactionRecord `json:"items"`
	Count int                      `json:"count"`
	Total core.Money               `json:"total"`
}

type rollupResponse struct {
	Window  int                       `json:"window"`
	Buckets []analytics.MonthlyBucket `json:"buckets"`
}

type sourcesResponse struct {
	Sources []ledger.SourceStatus `json:"sources"`
	Failed  []string              `json:"failed"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady is ready once at least one source has data.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	res, err := s.dash.Snapshot(r.Context())
	if err != nil {
		writeJSON(w, r, http.StatusServiceUnavailable, sourcesResponse{Sources: res.Sources, Failed: failed(res)})
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// withDashboard serves one projection of the dashboard at the request's now.
func (s *Server) withDashboard(project func(services.DashboardView) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now, err := parseNow(r, s.dash.Location(), s.clock)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		view, err := s.dash.Dashboard(r.Context(), now)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, r, http.StatusOK, project(view))
	}
}

// handleMonthlyRollup serves the rollup for an arbitrary window. The
// configured window comes from the memoized dashboard.
func (s *Server) handleMonthlyRollup(w http.ResponseWriter, r *http.Request) {
	now, err := parseNow(r, s.dash.Location(), s.clock)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	window, err := parseWindow(r, s.dash.Window())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if window == s.dash.Window() {
		view, err := s.dash.Dashboard(r.Context(), now)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, r, http.StatusOK, rollupResponse{Window: window, Buckets: view.Monthly})
		return
	}

	res, err := s.dash.Snapshot(r.Context())
	if err != nil && !errors.Is(err, ledger.ErrSourceUnavailable) {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	buckets := analytics.MonthlyRollup(res.Snapshot.Transactions(), now, window)
	writeJSON(w, r, http.StatusOK, rollupResponse{Window: window, Buckets: buckets})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	res, err := s.dash.Snapshot(r.Context())
	if err != nil && !errors.Is(err, ledger.ErrSourceUnavailable) {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sourcesResponse{Sources: res.Sources, Failed: failed(res)})
}

// handleRefresh drops cached dashboards and refetches the ledger. It answers
// 502 when no source could be read.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.dash.Invalidate()
	res, err := s.dash.Refresh(r.Context())

	status := http.StatusOK
	switch {
	case errors.Is(err, ledger.ErrSourceUnavailable):
		status = http.StatusBadGateway
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, r, status, sourcesResponse{Sources: res.Sources, Failed: failed(res)})
}

func failed(res ledger.Result) []string {
	if f := res.Failed(); f != nil {
		return f
	}
	return []string{}
}
