// Package apperrors holds the error taxonomy shared by repositories, services
// and controllers. Callers match with errors.Is / errors.As.
package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound means no matching active record exists.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a uniqueness rule would be violated.
	ErrConflict = errors.New("conflict")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken covers bad signature, expiry and malformed tokens alike.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrPowerBINotConfigured is returned by dashboard operations that need
	// Power BI when no service principal credentials were provided.
	ErrPowerBINotConfigured = errors.New("power bi integration is not configured")

	// ErrUpstream wraps failures of the Power BI REST API.
	ErrUpstream = errors.New("upstream service error")
)

// ValidationError carries field-level detail for malformed input.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ConfigurationError reports a missing or invalid setting at startup.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Key, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
