// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// SessionIDKey is the context key for the caller-supplied session ID
	SessionIDKey contextKey = "session_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports request_id and session_id from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = newLogger.WithRequestID(requestID)
	}

	if sessionID, ok := ctx.Value(SessionIDKey).(string); ok && sessionID != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("session_id", sessionID)),
		}
	}

	return newLogger
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// SupplierFailure logs a failed supplier adapter call during distribution.
// Per-supplier failures are tolerated, so these are warnings, not errors.
func (l *Logger) SupplierFailure(requestID, supplier, reason string) {
	l.Warn("supplier_failure",
		slog.String("flight_request_id", requestID),
		slog.String("supplier", supplier),
		slog.String("reason", reason),
	)
}

// PolicyMiss logs an offer dropped because no markup policy matched.
func (l *Logger) PolicyMiss(requestID, supplier, market, currency string) {
	l.Warn("markup_policy_miss",
		slog.String("flight_request_id", requestID),
		slog.String("supplier", supplier),
		slog.String("market", market),
		slog.String("currency", currency),
	)
}

// OfferDropped logs an offer excluded from an offer set with a reason.
func (l *Logger) OfferDropped(requestID, supplier, reference, reason string) {
	l.Warn("offer_dropped",
		slog.String("flight_request_id", requestID),
		slog.String("supplier", supplier),
		slog.String("reference", reference),
		slog.String("reason", reason),
	)
}

// CacheError logs offer cache errors
func (l *Logger) CacheError(operation string, err error) {
	l.Error("offer_cache_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}
