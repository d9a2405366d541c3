package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		notFound  bool
		duplicate bool
	}{
		{"nil", nil, false, false},
		{"generic", errors.New("boom"), false, false},
		{"not found", ErrNotFound, true, false},
		{"path not found", ErrPathNotFound, true, false},
		{"wrapped progress not found", fmt.Errorf("load: %w", ErrProgressNotFound), true, false},
		{"active path exists", ErrActivePathExists, false, true},
		{"store error wrapping duplicate",
			NewStoreError("learning_path", "create", "unique violation", ErrActivePathExists), false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.notFound, errors.Is(tc.err, ErrNotFound))
			assert.Equal(t, tc.duplicate, errors.Is(tc.err, ErrDuplicate))
		})
	}
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := NewStoreError("phase", "update", "failed to replace phases", cause)
	assert.Equal(t, "store: update phase: failed to replace phases: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	var se *StoreError
	assert.True(t, errors.As(fmt.Errorf("outer: %w", err), &se))
	assert.Equal(t, "phase", se.Entity)

	bare := NewStoreError("learning_path", "get", "not found", nil)
	assert.Equal(t, "store: get learning_path: not found", bare.Error())
}
