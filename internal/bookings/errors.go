package bookings

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNoRecord is returned by backends when an id is unknown.
var ErrNoRecord = errors.New("bookings: no such record")

// ValidationError carries per-field messages for input rejected before it
// reaches the store.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

// NewValidationError returns an empty error to collect field messages into.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add records msg for field, keeping the first message per field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

// Err returns e when any field failed, nil otherwise.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError is returned for status changes on an unknown id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("bookings: booking %s not found", e.ID)
}

// PersistenceError wraps a failed read or write against a backend.
type PersistenceError struct {
	Op      string
	Backend string
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("bookings: %s on %s store failed: %v", e.Op, e.Backend, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IllegalTransitionError is returned when a booking's current status does
// not permit the requested one.
type IllegalTransitionError struct {
	ID   string
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("bookings: booking %s cannot move from %s to %s", e.ID, e.From, e.To)
}
