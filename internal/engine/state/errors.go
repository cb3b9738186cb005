package state

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Errors returned by owner operations.
var (
	// ErrInvalidSnapshot is matched by every InvalidSnapshotError.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrPrecondition indicates a constructor was called with a missing argument.
	ErrPrecondition = errors.New("precondition violated")

	// ErrGeneratorExhausted is returned by a SequenceGenerator with no values left.
	ErrGeneratorExhausted = errors.New("generator exhausted")

	// ErrRejectedState is returned by validators built with RejectValue.
	ErrRejectedState = errors.New("state rejected")
)

// InvalidSnapshotError describes why a snapshot could not be restored.
type InvalidSnapshotError struct {
	// SnapshotID is uuid.Nil for nil or zero-value snapshots.
	SnapshotID uuid.UUID
	Reason     string
	Err        error
}

// Error implements the error interface.
func (e *InvalidSnapshotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid snapshot %s: %s: %v", e.SnapshotID, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid snapshot %s: %s", e.SnapshotID, e.Reason)
}

// Unwrap returns the underlying validation error, if any.
func (e *InvalidSnapshotError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match InvalidSnapshotError with ErrInvalidSnapshot.
func (e *InvalidSnapshotError) Is(target error) bool {
	return target == ErrInvalidSnapshot
}
