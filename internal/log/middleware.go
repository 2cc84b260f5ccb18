package log

import (
	"context"
	"log/slog"
	"net/http"
)

// ContextKey is the type for logger context keys.
type ContextKey string

// LoggerContextKey carries the request-scoped *Logger; the HTTP middleware
// stores one per request and handlers read it back with FromContext.
const LoggerContextKey ContextKey = "logger"

// FromContext returns the request-scoped logger, or a default-backed one
// when the request skipped the middleware.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger emits the fixed-shape log events the HTTP layer produces.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogHTTPStart records an incoming request before it is handled.
func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	sl.logger.InfoContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// LogHTTPEnd records a finished request. Client errors log at warn, server
// errors at error.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	sl.logger.Logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogRecordCreated records a successful record write.
func (sl *StructuredLogger) LogRecordCreated(ctx context.Context, id, identityID, amount int64, label string) {
	fields := NewFields().
		WithRecord(id, amount, label).
		WithOperation(OpCreate).
		WithComponent(ComponentRecord).
		ToSlice()

	fields = append(fields, FieldIdentityID, identityID)

	sl.logger.InfoContext(ctx, "Record created successfully", fields...)
}

// LogError records a failed operation with its component and operation tags.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	allFields := fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
