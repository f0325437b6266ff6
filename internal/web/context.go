// internal/web/context.go
// This file contains the request-scoped values stored on the request context.
package web

import "context"

// RequestIDHeader carries the request id between clients, the gateway and
// the backends.
const RequestIDHeader = "X-Request-ID"

// contextKey keeps this package's context values apart from other packages'.
type contextKey string

const requestIDKey = contextKey("request_id")

// ContextWithRequestID returns a copy of ctx carrying id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request id stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
