package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// AuthHandler handles the register, login and logout endpoints.
type AuthHandler struct {
	auth auth.Service
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register/.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, RegisterErrorResponse{
			Errors: domain.NewFieldError(domain.NonFieldErrors, MsgMalformedBody),
		}, err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		verrs, ok := domain.AsValidationErrors(err)
		if !ok {
			verrs = domain.NewFieldError(domain.NonFieldErrors, exceptionMessage(err))
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, RegisterErrorResponse{Errors: verrs}, err)
		return
	}

	result, err := h.auth.Register(r.Context(), auth.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Client:          clientInfo(r),
	})
	if err != nil {
		verrs, ok := domain.AsValidationErrors(err)
		if !ok {
			verrs = domain.NewFieldError(domain.NonFieldErrors, exceptionMessage(err))
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, RegisterErrorResponse{Errors: verrs}, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, RegisterResponse{
		User: RegisteredUser{
			Username: result.User.Username,
			Email:    result.User.Email,
		},
		Token: result.Token,
	})
}

// Login handles POST /api/auth/login/.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest,
			NonFieldErrorResponse{NonFieldErrors: []string{MsgMalformedBody}}, err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest,
			NonFieldErrorResponse{NonFieldErrors: []string{auth.ErrMissingCredentials.Error()}}, err)
		return
	}

	result, err := h.auth.Login(r.Context(), auth.LoginInput{
		Username: req.Username,
		Password: req.Password,
		Client:   clientInfo(r),
	})
	if err != nil {
		status := MapErrorToStatusCode(err)
		msg := MsgLoginFailed
		if status == http.StatusBadRequest {
			msg = GetSafeErrorMessage(err)
		} else {
			status = http.StatusInternalServerError
		}
		shared.RespondWithErrorAndLog(w, r, status,
			NonFieldErrorResponse{NonFieldErrors: []string{msg}}, err, shared.WithElevatedLogLevel())
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		User: LoggedInUser{
			ID:       result.User.ID,
			Username: result.User.Username,
			Email:    result.User.Email,
		},
		Token: result.Token,
	})
}

// Logout handles POST /api/auth/logout/. It requires token authentication.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	key, ok := shared.TokenFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized)
		return
	}

	if err := h.auth.Logout(r.Context(), key); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest,
			LogoutErrorResponse{Error: exceptionMessage(err)}, err)
		return
	}

	if user, ok := shared.UserFromContext(r.Context()); ok {
		logger.FromContext(r.Context()).Debug("logout complete", slog.Int64("user_id", user.ID))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, LogoutResponse{Detail: "Successfully logged out."})
}
