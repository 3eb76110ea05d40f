package middleware

import "net/http"

// HTTP header constants.
const (
	// HeaderContentType is the Content-Type header name.
	HeaderContentType = "Content-Type"

	// HeaderRetryAfter is the Retry-After header name.
	HeaderRetryAfter = "Retry-After"

	// HeaderXRequestID is the X-Request-ID header name.
	HeaderXRequestID = "X-Request-ID"

	// HeaderXCache reports the page cache result.
	HeaderXCache = "X-Cache"

	// HeaderCookie is the Cookie header name.
	HeaderCookie = "Cookie"

	// HeaderSetCookie is the Set-Cookie header name.
	HeaderSetCookie = "Set-Cookie"

	// HeaderAuthorization is the Authorization header name.
	HeaderAuthorization = "Authorization"

	// HeaderCacheControl is the Cache-Control header name.
	HeaderCacheControl = "Cache-Control"
)

// ContentTypeJSON is the JSON content type.
const ContentTypeJSON = "application/json"

// Error response constants.
const (
	// ErrRateLimitExceeded is the error message for rate limit exceeded.
	ErrRateLimitExceeded = `{"error":"rate limit exceeded"}`

	// ErrInternalServerError is the error message for internal server error.
	ErrInternalServerError = `{"error":"internal server error"}`
)

// Chain wraps h so that mws run in the order given.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
