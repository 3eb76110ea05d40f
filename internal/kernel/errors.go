package kernel

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/routing"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/util"
)

// HTTPError is an error with an HTTP status.
type HTTPError struct {
	Status  int
	Message string
	Header  http.Header
	Cause   error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Cause)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// Unwrap returns the underlying error.
func (e *HTTPError) Unwrap() error {
	return e.Cause
}

// NewHTTPError creates an HTTPError.
func NewHTTPError(status int, message string) *HTTPError {
	return &HTTPError{Status: status, Message: message}
}

// NotFound returns a 404 error.
func NotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message)
}

// BadRequest returns a 400 error.
func BadRequest(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message)
}

// Forbidden returns a 403 error.
func Forbidden(message string) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message)
}

// Conflict returns a 409 error.
func Conflict(message string) *HTTPError {
	return NewHTTPError(http.StatusConflict, message)
}

// MethodNotAllowed returns a 405 error carrying the Allow header.
func MethodNotAllowed(message string, allowed []string) *HTTPError {
	err := NewHTTPError(http.StatusMethodNotAllowed, message)
	err.Header = http.Header{"Allow": []string{strings.Join(allowed, ", ")}}
	return err
}

// AsHTTPError maps any error to an HTTPError. Unknown errors become 500s
// whose message does not leak the cause.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var mna *routing.MethodNotAllowedError
	switch {
	case errors.As(err, &mna):
		e := MethodNotAllowed(err.Error(), mna.Allowed)
		e.Cause = err
		return e
	case errors.Is(err, routing.ErrRouteNotFound), errors.Is(err, util.ErrNotFound):
		return &HTTPError{Status: http.StatusNotFound, Message: err.Error(), Cause: err}
	case errors.Is(err, routing.ErrNotAcceptable):
		return &HTTPError{Status: http.StatusNotAcceptable, Message: err.Error(), Cause: err}
	case errors.Is(err, ErrBodyTooLarge):
		return &HTTPError{Status: http.StatusRequestEntityTooLarge, Message: err.Error(), Cause: err}
	case errors.Is(err, util.ErrInvalidInput):
		return &HTTPError{Status: http.StatusBadRequest, Message: err.Error(), Cause: err}
	default:
		return &HTTPError{Status: http.StatusInternalServerError, Message: "internal server error", Cause: err}
	}
}
