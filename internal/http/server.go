package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/cors"

	"finpanel/internal/ledger"
	"finpanel/internal/log"
	"finpanel/internal/services"
)

// DashboardProvider is what the API needs from services.DashboardService.
type DashboardProvider interface {
	Dashboard(ctx context.Context, now time.Time) (services.DashboardView, error)
	Snapshot(ctx context.Context) (ledger.Result, error)
	Refresh(ctx context.Context) (ledger.Result, error)
	Invalidate()
	Window() int
	Location() *time.Location
}

// Options tune NewServer.
type Options struct {
	Logger *log.Logger
	// Clock replaces time.Now for requests without a "now" parameter
	Clock func() time.Time
	// RefreshLimit caps POST /api/refresh per client per minute (default 6)
	RefreshLimit int
	// AllowedOrigins enables CORS for browser clients when not empty
	AllowedOrigins []string
}

type Server struct {
	http.Server
	dash        DashboardProvider
	logger      *log.Logger
	clock       func() time.Time
	rateLimiter *rateLimiter
	metrics     securityMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, dash DashboardProvider, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.RefreshLimit <= 0 {
		opts.RefreshLimit = 6
	}

	s := &Server{
		dash:        dash,
		logger:      opts.Logger.WithComponent(log.ComponentHTTP),
		clock:       opts.Clock,
		rateLimiter: newRateLimiter(opts.RefreshLimit, opts.Clock),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/dashboard", s.withDashboard(func(v services.DashboardView) any { return v }))
	mux.HandleFunc("GET /api/rollup/monthly", s.handleMonthlyRollup)
	mux.HandleFunc("GET /api/breakdown/categories", s.withDashboard(func(v services.DashboardView) any { return v.Categories }))
	mux.HandleFunc("GET /api/breakdown/issuers", s.withDashboard(func(v services.DashboardView) any { return v.Issuers }))
	mux.HandleFunc("GET /api/installments", s.withDashboard(func(v services.DashboardView) any { return v.Installments }))
	mux.HandleFunc("GET /api/portfolio", s.withDashboard(func(v services.DashboardView) any { return v.Portfolio }))
	mux.HandleFunc("GET /api/bills/pending", s.withDashboard(func(v services.DashboardView) any {
		return billList{Items: v.Bills.Pending, Count: len(v.Bills.Pending), Total: v.Bills.TotalPending}
	}))
	mux.HandleFunc("GET /api/bills/overdue", s.withDashboard(func(v services.DashboardView) any {
		return billList{Items: v.Bills.Overdue, Count: len(v.Bills.Overdue), Total: v.Bills.TotalOverdue}
	}))
	mux.HandleFunc("GET /api/goals", s.withDashboard(func(v services.DashboardView) any { return v.Goals }))
	mux.HandleFunc("GET /api/alerts/budget", s.withDashboard(func(v services.DashboardView) any { return v.Budget }))
	mux.HandleFunc("GET /api/sources", s.handleSources)
	mux.HandleFunc("POST /api/refresh", s.withRateLimit(s.handleRefresh))

	var handler http.Handler = mux
	handler = s.withSecurityHeaders(handler)
	if len(opts.AllowedOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
			MaxAge:         300,
		}).Handler(handler)
	}
	handler = log.AccessLogMiddleware()(handler)
	handler = log.RequestIDMiddleware(requestID)(handler)
	handler = log.Middleware(s.logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// withSecurityHeaders adds security headers and flags suspicious requests
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason := suspiciousReason(r, &s.metrics); reason != "" {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				"reason", reason,
				log.FieldClientIP, extractClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldUserAgent, r.Header.Get("User-Agent"))
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)
		d := s.rateLimiter.allow(clientIP, &s.metrics)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(s.rateLimiter.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))
		if !d.allowed {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded", log.FieldClientIP, clientIP, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(d.retryAfter(s.clock())))
			writeJSON(w, r, http.StatusTooManyRequests, errorResponse{
				Error:     "rate limit exceeded, try again later",
				RequestID: log.RequestIDFromContext(r.Context()),
			})
			return
		}
		next(w, r)
	}
}

// Shutdown stops accepting requests and waits for active ones. Calls after
// the first return nil.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
