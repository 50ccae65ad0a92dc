package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/redact"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
)

// Client-facing messages for errors that carry no safe text of their own.
const (
	MsgNotFound      = "Not found."
	MsgServerError   = "A server error occurred."
	MsgLoginFailed   = "An error occurred during login."
	MsgMalformedBody = "Malformed request body."
)

// MapErrorToStatusCode maps internal errors to HTTP status codes.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, store.ErrDuplicate),
		errors.Is(err, auth.ErrMissingCredentials),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrAccountDisabled):
		return http.StatusBadRequest

	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrUserInactive),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a message for err that is safe to show clients.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return MsgServerError
	case errors.Is(err, auth.ErrMissingCredentials),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrAccountDisabled),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrUserInactive):
		return err.Error()
	case errors.Is(err, store.ErrNotFound):
		return MsgNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return auth.ErrMissingToken.Error()
	default:
		return MsgServerError
	}
}

// exceptionMessage is the redacted text of an unexpected error, for the
// few responses that echo it.
func exceptionMessage(err error) string {
	return redact.Error(err)
}

// HandleAPIError writes the response for a task endpoint error: field
// errors as a map, everything else as {"detail": ...}.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)

	if verrs, ok := domain.AsValidationErrors(err); ok {
		shared.RespondWithErrorAndLog(w, r, status, verrs, err)
		return
	}
	shared.RespondWithErrorAndLog(w, r, status, shared.DetailResponse{Detail: GetSafeErrorMessage(err)}, err)
}
