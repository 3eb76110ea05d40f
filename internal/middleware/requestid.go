package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/util"
)

// RequestIDHeader is the header name for request ID.
const RequestIDHeader = HeaderXRequestID

// RequestID returns a middleware that adds a request ID to each request.
// An incoming X-Request-ID is kept.
func RequestID() func(http.Handler) http.Handler {
	return RequestIDWithGenerator(func() string { return uuid.New().String() })
}

// RequestIDWithGenerator returns a middleware that uses a custom ID generator.
func RequestIDWithGenerator(generator func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = generator()
			}

			ctx := util.ContextWithRequestID(r.Context(), requestID)
			ctx = observability.ContextWithRequestID(ctx, requestID)

			w.Header().Set(RequestIDHeader, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
