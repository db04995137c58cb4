// Package contexthelpers stores and retrieves request-scoped values.
package contexthelpers

import (
	"context"
	"net/http"
)

type contextKey string

const UserIDContextKey = contextKey("userID")
const TraceIDContextKey = contextKey("traceID")

// SetUserID attaches the caller-supplied user identifier to the request.
func SetUserID(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
	return r.WithContext(ctx)
}

// SetTraceID attaches the request trace identifier.
func SetTraceID(r *http.Request, traceID string) *http.Request {
	ctx := context.WithValue(r.Context(), TraceIDContextKey, traceID)
	return r.WithContext(ctx)
}

// UserID returns the user identifier or "" when the caller sent none.
func UserID(ctx context.Context) string {
	userID, ok := ctx.Value(UserIDContextKey).(string)
	if !ok {
		return ""
	}

	return userID
}

// TraceID returns the request trace identifier or "" outside a request.
func TraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDContextKey).(string)
	if !ok {
		return ""
	}

	return traceID
}
