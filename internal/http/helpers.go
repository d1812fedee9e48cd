package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"finpanel/internal/core"
	"finpanel/internal/log"
)

const maxWindow = 60

// parseNow reads the optional "now" query parameter. RFC 3339 timestamps and
// plain YYYY-MM-DD dates (midnight in loc) are accepted; when absent the
// clock is used. The result is always in loc.
func parseNow(r *http.Request, loc *time.Location, clock func() time.Time) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get("now"))
	if v == "" {
		return clock().In(loc), nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.In(loc), nil
	}
	if t, err := time.ParseInLocation(core.DateLayout, v, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid now %q: want RFC 3339 or YYYY-MM-DD", v)
}

// parseWindow reads the optional "window" query parameter.
func parseWindow(r *http.Request, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("window"))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxWindow {
		return 0, fmt.Errorf("invalid window %q: must be between 1 and %d", v, maxWindow)
	}
	return n, nil
}

// requestID keeps a well-formed incoming X-Request-ID, otherwise mints one.
func requestID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Request-ID")); id != "" && len(id) <= 64 {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	return uuid.NewString()
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response", log.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := http.StatusText(status)
	if status < http.StatusInternalServerError && err != nil {
		msg = err.Error()
	} else if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", log.FieldError, err, log.FieldPath, r.URL.Path)
	}
	writeJSON(w, r, status, errorResponse{Error: msg, RequestID: log.RequestIDFromContext(r.Context())})
}
