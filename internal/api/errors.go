package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/bandpath/internal/api/shared"
	"github.com/phrazzld/bandpath/internal/domain"
	"github.com/phrazzld/bandpath/internal/grading"
	"github.com/phrazzld/bandpath/internal/service/auth"
	"github.com/phrazzld/bandpath/internal/service/learningpath"
	"github.com/phrazzld/bandpath/internal/store"
)

// MapErrorToStatusCode maps service, domain and store errors to an HTTP
// status. Unknown errors are 500.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrMissingUserID):
		return http.StatusUnauthorized

	case errors.Is(err, learningpath.ErrNotOwned):
		return http.StatusForbidden

	case errors.Is(err, learningpath.ErrPathNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, domain.ErrPhaseNotFound),
		errors.Is(err, domain.ErrTopicNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, learningpath.ErrActivePathExists),
		errors.Is(err, store.ErrDuplicate),
		errors.Is(err, domain.ErrDuplicateRecord),
		errors.Is(err, learningpath.ErrPathNotActive),
		errors.Is(err, learningpath.ErrPathNotPaused),
		errors.Is(err, domain.ErrPathCompleted):
		return http.StatusConflict

	case errors.Is(err, learningpath.ErrGradingUnavailable):
		return http.StatusServiceUnavailable

	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, grading.ErrContentBlocked):
		return http.StatusUnprocessableEntity

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidTarget),
		errors.Is(err, domain.ErrInvalidRecord),
		errors.Is(err, domain.ErrInvalidScore),
		errors.Is(err, grading.ErrEmptySubmission),
		errors.Is(err, grading.ErrGradingFailed),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Validation
// and target errors carry their own field-level text, which never includes
// wrapped infrastructure errors.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var targetErr *domain.InvalidTargetError
	var validationErr *domain.ValidationError
	var dupErr *domain.DuplicateRecordError

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingUserID):
		return "Invalid token"
	case errors.Is(err, auth.ErrMissingToken):
		return "Authorization required"

	case errors.Is(err, learningpath.ErrNotOwned):
		return "You do not own this learning path"
	case errors.Is(err, learningpath.ErrPathNotFound), errors.Is(err, store.ErrPathNotFound):
		return "Learning path not found"
	case errors.Is(err, domain.ErrPhaseNotFound):
		return "Phase not found"
	case errors.Is(err, domain.ErrTopicNotFound):
		return "Topic not found in the current phase"

	case errors.Is(err, domain.ErrConflict):
		return "The learning path was modified concurrently, please retry"
	case errors.Is(err, learningpath.ErrActivePathExists):
		return "You already have an active learning path"
	case errors.As(err, &dupErr):
		return fmt.Sprintf("Progress for %s is already recorded", dupErr.Date.Format(domain.DateLayout))
	case errors.Is(err, learningpath.ErrPathNotActive):
		return "Learning path is not active"
	case errors.Is(err, learningpath.ErrPathNotPaused):
		return "Learning path is not paused"
	case errors.Is(err, domain.ErrPathCompleted):
		return "Learning path is already completed"

	case errors.Is(err, learningpath.ErrGradingUnavailable):
		return "Essay grading is currently unavailable"
	case errors.Is(err, grading.ErrContentBlocked):
		return "The essay could not be graded"
	case errors.Is(err, grading.ErrEmptySubmission):
		return "Essay text is required"
	case errors.Is(err, grading.ErrGradingFailed):
		return "This submission format cannot be graded"

	case errors.Is(err, domain.ErrInvalidTransition):
		return "Invalid phase transition"
	case errors.As(err, &targetErr):
		return "Invalid target: " + targetErr.Message
	case errors.As(err, &validationErr):
		return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
	case errors.Is(err, domain.ErrValidation), errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request"

	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the mapped status and safe message for err. A
// non-empty fallback replaces the generic message on 500 responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	var opts []shared.ResponseOption
	if status == http.StatusConflict {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// SanitizeValidationError turns validator output into a short message that
// names the first failing field.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), validationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte", "gt":
		return "too small"
	case "max", "lte", "lt":
		return "too large"
	case "oneof":
		return "invalid value"
	case "datetime":
		return "expected YYYY-MM-DD"
	default:
		return "validation failed"
	}
}
