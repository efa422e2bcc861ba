// Package errs defines the error taxonomy shared by the Little Helpers
// services. Every error here is recoverable at the feature level; none is
// fatal to the process.
package errs

import "fmt"

// ValidationError reports bad input to a mutation: a non-positive amount,
// an empty participant set, an unknown person ID, and so on.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an operation referencing an entity that does not
// exist.
type NotFoundError struct {
	Kind string // "project", "expense", "person", ...
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// NotFound builds a NotFoundError for the given entity kind and ID.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// PersistenceError reports that the underlying store failed to read or
// write. In-memory state remains authoritative; the caller surfaces the
// failure as a non-fatal warning.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NetworkError reports a failed remote fetch. Callers fall back to cached
// data where available and surface an offline indicator.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
