package log

import (
	"context"
	"log/slog"
	"net/http"
)

// StructuredLogger emits the recurring events with a fixed set of fields.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

func (sl *StructuredLogger) emit(ctx context.Context, level slog.Level, msg string, fields LogFields) {
	sl.logger.Logger.Log(ctx, level, msg, fields.ToSlice()...)
}

// LogHTTPEnd logs a finished request: 4xx at warn, 5xx at error.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}

	sl.emit(ctx, level, "HTTP request completed", NewFields().
		WithComponent(ComponentHTTP).
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP))
}

// LogSourceFetched reports a failed read at warn and a good one at debug.
func (sl *StructuredLogger) LogSourceFetched(ctx context.Context, source string, records int, stale bool, err error) {
	fields := NewFields().
		WithComponent(ComponentLedger).
		WithOperation(OpFetch).
		WithSource(source, records, stale).
		WithError(err)

	if err != nil {
		sl.emit(ctx, slog.LevelWarn, "Ledger source fetch failed", fields)
		return
	}
	sl.emit(ctx, slog.LevelDebug, "Ledger source fetched", fields)
}

func (sl *StructuredLogger) LogNotificationPublished(ctx context.Context, kind, key string) {
	sl.emit(ctx, slog.LevelInfo, "Notification published", NewFields().
		WithComponent(ComponentNotification).
		WithOperation(OpPublish).
		WithNotification(kind, key))
}

// LogError logs err under component and operation, merged into fields.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	sl.emit(ctx, slog.LevelError, msg, fields.
		WithComponent(component).
		WithOperation(operation).
		WithError(err))
}
