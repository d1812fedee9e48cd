package log

// Common field names for structured logging
const (
	FieldComponent       = "component"
	FieldRequestID       = "request_id"
	FieldClientIP        = "client_ip"
	FieldMethod          = "method"
	FieldPath            = "path"
	FieldQuery           = "query"
	FieldStatusCode      = "status_code"
	FieldDuration        = "duration_ms"
	FieldUserAgent       = "user_agent"
	FieldSuccess         = "success"
	FieldError           = "error"
	FieldOperation       = "operation"
	FieldSource          = "source"
	FieldRecords         = "records"
	FieldStale           = "stale"
	FieldPeriod          = "period"
	FieldWindow          = "window"
	FieldRecordID        = "record_id"
	FieldNotification    = "notification_kind"
	FieldNotificationKey = "notification_key"
	FieldEventType       = "event_type"
	FieldFingerprint     = "fingerprint"
	FieldCacheHit        = "cache_hit"
)

// Components defines standard component names
const (
	ComponentApp          = "app"
	ComponentHTTP         = "http"
	ComponentLedger       = "ledger"
	ComponentDashboard    = "dashboard"
	ComponentNotification = "notification"
	ComponentAMQP         = "amqp"
	ComponentWorker       = "worker"
	ComponentExport       = "export"
	ComponentCache        = "cache"
	ComponentBackend      = "backend"
	ComponentCLI          = "cli"
)

// Operations defines standard operation names
const (
	OpFetch    = "fetch"
	OpFallback = "fallback"
	OpSave     = "save"
	OpCompute  = "compute"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpScan     = "scan"
	OpExport   = "export"
	OpRefresh  = "refresh"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// ErrorTypes categorize failures for alerting
const (
	ErrorTypeConfiguration = "configuration_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithClientIP adds client IP field
func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithSource adds ledger source fields
func (f LogFields) WithSource(source string, records int, stale bool) LogFields {
	f[FieldSource] = source
	f[FieldRecords] = records
	f[FieldStale] = stale
	return f
}

// WithNotification adds notification fields
func (f LogFields) WithNotification(kind, key string) LogFields {
	f[FieldNotification] = kind
	f[FieldNotificationKey] = key
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
