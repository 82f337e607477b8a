// Package middleware provides HTTP middleware components.
package middleware

import (
	"context"
	"net/http"

	"github.com/fleetlink/fleetlink/internal/requestid"
)

// contextKey is a type for context keys to avoid collisions.
type contextKey string

// TraceIDKey is the context key for trace ID.
const TraceIDKey contextKey = "trace_id"

// TraceIDHeader is the HTTP header for trace ID.
const TraceIDHeader = "X-Trace-ID"

// maxRequestIDLength caps caller-supplied request IDs.
const maxRequestIDLength = 128

// RequestID injects a unique request ID into each request.
// If the X-Request-ID header is present, it uses that value.
// Otherwise, it generates a new UUID. The ID travels on to the
// customer service with outgoing lookups.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestid.Header)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = requestid.New()
		}

		traceID := r.Header.Get(TraceIDHeader)

		ctx := requestid.WithID(r.Context(), requestID)
		if traceID != "" {
			ctx = context.WithValue(ctx, TraceIDKey, traceID)
		}

		w.Header().Set(requestid.Header, requestID)
		if traceID != "" {
			w.Header().Set(TraceIDHeader, traceID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	return requestid.FromContext(ctx)
}

// GetTraceID retrieves the trace ID from context.
func GetTraceID(ctx context.Context) string {
	if id, ok := ctx.Value(TraceIDKey).(string); ok {
		return id
	}
	return ""
}
