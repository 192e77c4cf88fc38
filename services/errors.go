package services

import "errors"

// Workflow validation errors. These are detected before any mutation and the
// case is left untouched.
var (
	// ErrForbiddenTransition means the actor's role, identity or the case's
	// current status does not allow the requested operation.
	ErrForbiddenTransition = errors.New("transition not allowed for this actor or status")

	// ErrMissingAttachment means a submit-for-review was attempted without
	// any new file.
	ErrMissingAttachment = errors.New("at least one file is required to submit for review")

	// ErrMissingNotes means a revision was requested with blank note text.
	ErrMissingNotes = errors.New("revision notes must not be empty")

	// ErrIncompleteCase means a case is missing its name, due date,
	// technician or at least one order.
	ErrIncompleteCase = errors.New("case is missing required fields")

	// ErrNotFound means a case or technician id did not resolve.
	ErrNotFound = errors.New("record not found")
)

// PersistenceError wraps a storage failure detected after the new in-memory
// state was computed. Callers can distinguish it from validation errors with
// errors.As and decide whether to retry or discard the intended update.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "failed to persist case: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
