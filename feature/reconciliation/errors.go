package reconciliation

import (
	"errors"
	"fmt"

	"forecast-recon/feature/reconciliation/models"
	"forecast-recon/feature/reconciliation/store"
)

// ValidationError reports malformed input. Nothing was read or written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

// StateConflictError reports a record that is not in the status an operation requires.
type StateConflictError struct {
	Kind    models.RecordKind
	ID      uint
	Status  string
	Message string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s %d is %s: %s", e.Kind, e.ID, e.Status, e.Message)
}

// NotFoundError reports an unknown record id.
type NotFoundError struct {
	Kind models.RecordKind
	ID   uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// PersistenceError reports a failed transaction. All of its writes were rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ConcurrencyConflictError reports a record modified by another caller, or a
// period already being reconciled. Retrying the single operation is safe.
type ConcurrencyConflictError struct {
	Op  string
	Err error
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("%s conflicted with a concurrent change: %v", e.Op, e.Err)
}

func (e *ConcurrencyConflictError) Unwrap() error { return e.Err }

// translate maps store and state machine errors onto the typed errors callers see.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}

	var (
		validation *ValidationError
		conflict   *StateConflictError
		notFound   *NotFoundError
		concurrent *ConcurrencyConflictError
		persist    *PersistenceError
		transition *models.TransitionError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &conflict), errors.As(err, &notFound),
		errors.As(err, &concurrent), errors.As(err, &persist):
		return err
	case errors.As(err, &transition):
		return &StateConflictError{Kind: transition.Kind, ID: transition.ID, Status: transition.Status, Message: transition.Reason}
	case errors.Is(err, store.ErrVersionConflict):
		return &ConcurrencyConflictError{Op: op, Err: err}
	default:
		return &PersistenceError{Op: op, Err: err}
	}
}
