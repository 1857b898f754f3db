package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across services and handlers.
// Handlers map them to HTTP statuses with errors.Is.
var (
	// ErrNotFound is returned when a user with the requested ID does not exist
	ErrNotFound = errors.New("user not found")
	// ErrInvalidCredentials is the single outcome for both unknown username
	// and wrong password, so callers cannot enumerate accounts
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrConflict is returned when a write targets a stale concurrency stamp
	ErrConflict = errors.New("user was modified by another request")
)

// ValidationError carries field-level validation failures
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates an empty validation error
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add appends a message for a field
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors reports whether any field failed validation
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, messages := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(messages, "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
