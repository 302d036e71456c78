// Package apperr defines the error values the handlers and middleware
// branch on, and the Fiber error handler that maps them to responses.
package apperr

import "fmt"

// UnauthenticatedError means the action requires a signed-in principal.
type UnauthenticatedError struct {
	Action string
}

func (e *UnauthenticatedError) Error() string {
	if e.Action == "" {
		return "authentication required"
	}
	return fmt.Sprintf("you must be signed in to %s", e.Action)
}

// ValidationError reports malformed input, tied to a field when one exists
// so the caller can surface it inline.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrEmptyCart rejects checkout of a cart with no items.
var ErrEmptyCart = &ValidationError{Message: "cart is empty"}

// InvalidTransitionError reports an illegal order-status change. The prior
// status is retained by the caller.
type InvalidTransitionError struct {
	From, To string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}

// PersistenceError wraps a rejected read or write against the data store.
// The same user action may be retried.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err as a PersistenceError, passing nil through.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// DataIntegrityWarning records a failed compensating cleanup, e.g. an
// orphaned order left behind after a failed item insert. It must reach the
// operator log, never be silently swallowed.
type DataIntegrityWarning struct {
	Detail string
	Cause  error
	Err    error
}

func (e *DataIntegrityWarning) Error() string {
	return fmt.Sprintf("data integrity warning: %s (cause: %v, cleanup: %v)", e.Detail, e.Cause, e.Err)
}
