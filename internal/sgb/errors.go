package sgb

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrQuotaExceeded is returned by a Store when a write would exceed its size limit.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrStorageUnavailable is returned by a Store whose backend cannot be reached or is locked.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFound is returned by service lookups for an id that does not exist.
	// Repository Update and Delete never return it; they are silent no-ops.
	ErrNotFound = errors.New("analysis not found")
)

// DeserializationError reports a stored value that is not valid JSON or does
// not match the expected shape. Callers fall back to an empty default.
type DeserializationError struct {
	Key string
	Err error
}

func (e *DeserializationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("deserializing stored value: %v", e.Err)
	}
	return fmt.Sprintf("deserializing %q: %v", e.Key, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// ValidationError reports user input that was rejected before any persistence.
// Fields maps a field name to its messages.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates a ValidationError with a single field message.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {msg}}}
}

// Add records another message for field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
