package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidScore is returned when a value is not a band score.
	ErrInvalidScore = errors.New("invalid band score")

	// ErrInvalidTarget is returned when a plan cannot be built for the requested target.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrDuplicateRecord is returned when a past day's progress record is appended again.
	ErrDuplicateRecord = errors.New("duplicate progress record")

	// ErrInvalidRecord is returned when a progress record is malformed or future-dated.
	ErrInvalidRecord = errors.New("invalid progress record")

	// ErrInvalidTransition is returned for an illegal phase state transition.
	ErrInvalidTransition = errors.New("invalid phase transition")

	// ErrConflict is returned when a write is attempted against a stale path version.
	ErrConflict = errors.New("learning path version conflict")

	// ErrPathCompleted is returned when mutating a path that has finished.
	ErrPathCompleted = errors.New("learning path is completed")

	// ErrPhaseNotFound is returned when a phase ID does not belong to the path.
	ErrPhaseNotFound = errors.New("phase not found")

	// ErrTopicNotFound is returned when a topic is not part of the current phase.
	ErrTopicNotFound = errors.New("topic not found in current phase")
)

// InvalidTargetError names the planning invariant a request violated.
type InvalidTargetError struct {
	Invariant string
	Message   string
}

// NewInvalidTargetError creates an InvalidTargetError.
func NewInvalidTargetError(invariant, message string) *InvalidTargetError {
	return &InvalidTargetError{Invariant: invariant, Message: message}
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid target (%s): %s", e.Invariant, e.Message)
}

// Is matches ErrInvalidTarget.
func (e *InvalidTargetError) Is(target error) bool {
	return target == ErrInvalidTarget
}

// DuplicateRecordError reports a re-append for a day that has rolled over.
type DuplicateRecordError struct {
	PathID uuid.UUID
	Date   time.Time
}

func (e *DuplicateRecordError) Error() string {
	return fmt.Sprintf("progress record for path %s on %s already exists",
		e.PathID, e.Date.Format(DateLayout))
}

// Is matches ErrDuplicateRecord.
func (e *DuplicateRecordError) Is(target error) bool {
	return target == ErrDuplicateRecord
}

// InvalidTransitionError reports an illegal phase status change.
type InvalidTransitionError struct {
	PhaseID uuid.UUID
	From    PhaseStatus
	To      PhaseStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("phase %s cannot move from %s to %s", e.PhaseID, e.From, e.To)
}

// Is matches ErrInvalidTransition.
func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// ConflictError reports an optimistic concurrency failure.
type ConflictError struct {
	PathID          uuid.UUID
	ExpectedVersion int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("learning path %s was modified (expected version %d)",
		e.PathID, e.ExpectedVersion)
}

// Is matches ErrConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError wrapping err, or ErrValidation if err is nil.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap returns the wrapped sentinel.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is matches ErrValidation regardless of the wrapped sentinel.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
