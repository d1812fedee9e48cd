package http

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	rateWindow = time.Minute
	// sweepEvery bounds how many decisions pass between stale-entry sweeps
	sweepEvery = 256
)

// rateLimiter is a fixed-window counter per client IP. Stale windows are
// dropped lazily while deciding, so it needs no background goroutine.
type rateLimiter struct {
	mu        sync.Mutex
	limit     int
	now       func() time.Time
	windows   map[string]*window
	decisions int
}

type window struct {
	start    time.Time
	requests int
}

// decision is the outcome of one allow call.
type decision struct {
	allowed   bool
	remaining int
	reset     time.Time
}

// retryAfter is the number of whole seconds until the window resets.
func (d decision) retryAfter(now time.Time) int {
	secs := int(d.reset.Sub(now).Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

func newRateLimiter(limit int, now func() time.Time) *rateLimiter {
	if now == nil {
		now = time.Now
	}
	return &rateLimiter{
		limit:   limit,
		now:     now,
		windows: make(map[string]*window),
	}
}

func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) decision {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.decisions++
	if rl.decisions%sweepEvery == 0 {
		rl.sweep(now)
	}

	w, ok := rl.windows[clientIP]
	if !ok || !now.Before(w.start.Add(rateWindow)) {
		w = &window{start: now}
		rl.windows[clientIP] = w
	}
	w.requests++

	d := decision{
		allowed:   w.requests <= rl.limit,
		remaining: max(rl.limit-w.requests, 0),
		reset:     w.start.Add(rateWindow),
	}
	if !d.allowed && metrics != nil {
		atomic.AddInt64(&metrics.rateLimitHits, 1)
	}
	return d
}

// sweep drops windows that ended before now. Callers hold mu.
func (rl *rateLimiter) sweep(now time.Time) {
	for ip, w := range rl.windows {
		if !now.Before(w.start.Add(rateWindow)) {
			delete(rl.windows, ip)
		}
	}
}

func (rl *rateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.windows)
}
