package grading

import "errors"

// Common errors returned by graders.
var (
	// ErrGradingFailed is returned when grading fails for any general reason.
	ErrGradingFailed = errors.New("failed to grade submission")

	// ErrEmptySubmission is returned when the essay text is blank.
	ErrEmptySubmission = errors.New("submission text cannot be empty")

	// ErrInvalidResponse is returned when the grader's output cannot be parsed
	// or contains scores outside the band scale.
	ErrInvalidResponse = errors.New("invalid response from grader")

	// ErrContentBlocked is returned when the grading model refuses the content.
	ErrContentBlocked = errors.New("content blocked by grader safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry.
	ErrTransientFailure = errors.New("transient error during grading")

	// ErrInvalidConfig is returned when the grader configuration is invalid.
	ErrInvalidConfig = errors.New("invalid grader configuration")
)
