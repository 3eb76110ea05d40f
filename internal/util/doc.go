// Package util provides utility functions and types shared by the
// path support server.
//
// # Context Helpers
//
// Context utilities for request-scoped data:
//
//	ctx = util.ContextWithRequestID(ctx, "req-123")
//	requestID := util.RequestIDFromContext(ctx)
//
// # Error Types
//
// Structured error types for consistent error handling:
//
//   - ConfigError: configuration errors bound to a field path
//   - ValidationError: aggregated validation failures
//   - Common sentinel errors: ErrNotFound, ErrInvalidInput, ErrConfigInvalid
//
// # HTTP Utilities
//
// ResponseRecorder remembers the status and size of a response while
// passing it through:
//
//	w := util.NewResponseRecorder(responseWriter)
//	handler.ServeHTTP(w, r)
//	status := w.Status
package util
