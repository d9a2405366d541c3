package store

import (
	"errors"
	"fmt"
)

// Base errors. Every store implementation wraps one of these so callers can
// branch with errors.Is regardless of the backend.
var (
	ErrNotFound          = errors.New("entity not found")
	ErrDuplicate         = errors.New("entity already exists")
	ErrInvalidEntity     = errors.New("invalid entity")
	ErrTransactionFailed = errors.New("transaction failed")
)

// Learning path specific errors, each matching one of the base errors.
var (
	ErrPathNotFound     = fmt.Errorf("%w: learning path", ErrNotFound)
	ErrProgressNotFound = fmt.Errorf("%w: progress record", ErrNotFound)
	// ErrActivePathExists is returned when a user would end up with two
	// active paths.
	ErrActivePathExists = fmt.Errorf("%w: active learning path", ErrDuplicate)
)

// StoreError records which entity and operation failed.
type StoreError struct {
	Entity    string
	Operation string
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	msg := fmt.Sprintf("store: %s %s: %s", e.Operation, e.Entity, e.Message)
	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a StoreError. err may be nil.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Message: message, Err: err}
}
