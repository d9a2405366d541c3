package learningpath

import (
	"errors"
	"fmt"
)

// Errors returned by Service. Domain and store sentinels pass through
// unchanged, so callers may also test for domain.ErrConflict,
// domain.ErrInvalidTarget and friends with errors.Is.
var (
	// ErrPathNotFound indicates that the learning path does not exist.
	ErrPathNotFound = errors.New("learning path not found")

	// ErrNotOwned indicates the path belongs to a different user.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("learning path is owned by another user")

	// ErrActivePathExists indicates the user already has an active path.
	ErrActivePathExists = errors.New("user already has an active learning path")

	// ErrPathNotActive indicates the operation needs an active path.
	ErrPathNotActive = errors.New("learning path is not active")

	// ErrPathNotPaused indicates a resume of a path that is not paused.
	ErrPathNotPaused = errors.New("learning path is not paused")

	// ErrGradingUnavailable indicates the grading collaborator is disabled or failing.
	ErrGradingUnavailable = errors.New("essay grading is unavailable")
)

// ServiceError wraps errors from the learning path service with the
// operation that failed.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_plan", "record_progress")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
