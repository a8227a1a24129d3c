package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// contextKey type for request-scoped values (avoids collisions with string keys)
type contextKey string

const (
	// TraceIDKey is the context key for the per-request trace ID
	TraceIDKey contextKey = "trace_id"
)

// Tracing assigns every request a trace ID, logs start and completion, and
// exposes the ID through the context for audit records.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := uuid.New().String()
		start := time.Now()

		ctx := context.WithValue(r.Context(), TraceIDKey, traceID)

		wrapped := &responseWriterWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		logrus.WithFields(logrus.Fields{
			"trace_id": traceID,
			"method":   r.Method,
			"path":     r.URL.Path,
		}).Debug("Request started")

		next.ServeHTTP(wrapped, r.WithContext(ctx))

		logrus.WithFields(logrus.Fields{
			"trace_id": traceID,
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   wrapped.statusCode,
			"duration": time.Since(start),
		}).Debug("Request completed")
	})
}

// TraceIDFromContext returns the trace ID assigned by Tracing, if any.
func TraceIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(TraceIDKey).(string); ok {
		return v
	}
	return ""
}
