// Package middleware provides the HTTP middleware wrapped around the
// kernel, and the circuit breaker wrapped around sub-request dispatch.
//
// # Middleware Components
//
//   - RequestID: request identifier injection
//   - Recovery: panic recovery with stack trace logging
//   - Logging: structured access logging with the matched route name
//   - RateLimit: global token bucket limiter
//   - PageCache: anonymous GET response cache keyed by URL and format
//   - BreakerDispatcher: gobreaker around kernel sub-requests
//
// # Usage
//
// Middleware functions follow the standard Go pattern. Chain applies
// them so that the first one listed runs first:
//
//	handler := middleware.Chain(k,
//	    middleware.Recovery(logger),
//	    middleware.RequestID(),
//	    middleware.Logging(logger),
//	)
package middleware
