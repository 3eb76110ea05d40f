package util

import (
	"context"
	"time"
)

// Context keys.
type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
	ctxKeyStartTime ctxKey = "start_time"
	ctxKeyRoute     ctxKey = "route"
)

// ContextWithRequestID adds a request ID to the context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// ContextWithStartTime adds a start time to the context.
func ContextWithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ctxKeyStartTime, t)
}

// StartTimeFromContext extracts the start time from context.
func StartTimeFromContext(ctx context.Context) time.Time {
	if v, ok := ctx.Value(ctxKeyStartTime).(time.Time); ok {
		return v
	}
	return time.Time{}
}

// RouteHolder is a mutable slot placed into the request context by outer
// middleware so that the kernel can report the matched route name back
// to it after routing.
type RouteHolder struct {
	Name string
}

// ContextWithRouteHolder adds a route holder to the context.
func ContextWithRouteHolder(ctx context.Context, h *RouteHolder) context.Context {
	return context.WithValue(ctx, ctxKeyRoute, h)
}

// RouteHolderFromContext extracts the route holder from context.
func RouteHolderFromContext(ctx context.Context) *RouteHolder {
	if v, ok := ctx.Value(ctxKeyRoute).(*RouteHolder); ok {
		return v
	}
	return nil
}

// RouteFromContext returns the matched route name, if any was recorded.
func RouteFromContext(ctx context.Context) string {
	if h := RouteHolderFromContext(ctx); h != nil {
		return h.Name
	}
	return ""
}

// ElapsedTime returns the elapsed time since the start time in context.
func ElapsedTime(ctx context.Context) time.Duration {
	startTime := StartTimeFromContext(ctx)
	if startTime.IsZero() {
		return 0
	}
	return time.Since(startTime)
}
