package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/bandpath/internal/api/shared"
	"github.com/phrazzld/bandpath/internal/domain"
	"github.com/phrazzld/bandpath/internal/service/auth"
)

// getPathUUID parses the URL parameter paramName as a UUID.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", nil)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", nil)
	}
	return id, nil
}

// handleUserIDAndPathUUID extracts the caller and the path ID. On failure it
// writes the error response and returns false.
func handleUserIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, auth.ErrMissingUserID, "")
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log.Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, pathID, true
}

// decodeAndValidate reads the JSON body into req and validates it. On
// failure it writes a 400 and returns false. allowEmpty accepts a missing
// body and leaves req at its zero value.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}, allowEmpty bool) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		if allowEmpty && errors.Is(err, shared.ErrEmptyBody) {
			return true
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// parseOptionalDay parses a YYYY-MM-DD value. An empty value is the zero
// time, which the service reads as today.
func parseOptionalDay(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	day, err := domain.ParseDay(value)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "expected YYYY-MM-DD", nil)
	}
	return day, nil
}

// parseScore converts a JSON band value to a domain.Score.
func parseScore(field string, value float64) (domain.Score, error) {
	s, err := domain.NewScore(value)
	if err != nil {
		return 0, domain.NewValidationError(field, "must be a half band between 0 and 9", domain.ErrInvalidScore)
	}
	return s, nil
}
