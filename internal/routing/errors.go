package routing

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors.
var (
	// ErrRouteNotFound is returned when no route matches the path.
	ErrRouteNotFound = errors.New("route not found")

	// ErrMethodNotAllowed is returned when routes match the path but
	// none allows the method.
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrNotAcceptable is returned when routes match the path but none
	// accepts the request format.
	ErrNotAcceptable = errors.New("not acceptable")
)

// RouteNotFoundError reports an unmatched request.
type RouteNotFoundError struct {
	Method string
	Path   string
}

// Error implements the error interface.
func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("no route found for %s %s", e.Method, e.Path)
}

// Is checks if the error matches the target.
func (e *RouteNotFoundError) Is(target error) bool {
	return target == ErrRouteNotFound
}

// MethodNotAllowedError lists the methods that would have matched.
type MethodNotAllowedError struct {
	Method  string
	Path    string
	Allowed []string
}

// Error implements the error interface.
func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("method %s not allowed for %s (allowed: %s)",
		e.Method, e.Path, strings.Join(e.Allowed, ", "))
}

// Is checks if the error matches the target.
func (e *MethodNotAllowedError) Is(target error) bool {
	return target == ErrMethodNotAllowed
}

// NotAcceptableError reports a format that no matching route serves.
type NotAcceptableError struct {
	Path   string
	Format string
}

// Error implements the error interface.
func (e *NotAcceptableError) Error() string {
	return fmt.Sprintf("no route for %s accepts format %q", e.Path, e.Format)
}

// Is checks if the error matches the target.
func (e *NotAcceptableError) Is(target error) bool {
	return target == ErrNotAcceptable
}
