// Package util provides utility functions and types for the path support server.
//
// # Error Conventions
//
// This project follows a standardized error pattern across all packages:
//
//   - Sentinel errors (errors.New) for well-known, stable conditions
//     that callers check with errors.Is(). Example: ErrNotFound.
//   - Structured error types for context-rich errors that carry
//     additional fields (e.g., ConfigError, HTTPError). Each type
//     implements Error(), Unwrap() (if wrapping), and Is().
//   - fmt.Errorf with %w for ad-hoc wrapping that adds context to an
//     existing error without introducing a new type.
package util

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common sentinel errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrConfigInvalid = errors.New("invalid configuration")
)

// ConfigError represents a configuration-related error.
type ConfigError struct {
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error at %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *ConfigError) Is(target error) bool {
	if target == ErrConfigInvalid {
		return true
	}
	_, ok := target.(*ConfigError)
	return ok || errors.Is(e.Cause, target)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewConfigErrorWithCause creates a new ConfigError with a cause.
func NewConfigErrorWithCause(field, message string, cause error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Cause: cause}
}

// ValidationError represents a validation failure.
type ValidationError struct {
	Fields  map[string]string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("validation error: %s", e.Message)
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("validation error: %s (%s)", e.Message, strings.Join(parts, "; "))
}

// Is checks if the error matches the target.
func (e *ValidationError) Is(target error) bool {
	if target == ErrInvalidInput {
		return true
	}
	_, ok := target.(*ValidationError)
	return ok
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message, Fields: make(map[string]string)}
}

// AddField adds a field error.
func (e *ValidationError) AddField(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

// HasErrors reports whether any field error was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
