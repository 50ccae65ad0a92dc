package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// TokenKeyword is the Authorization scheme accepted by AuthMiddleware.
const TokenKeyword = "Token"

// Header parsing errors, reported to the client as-is.
var (
	errNoCredentials = errors.New("Invalid token header. No credentials provided.")
	errTokenSpaces   = errors.New("Invalid token header. Token string should not contain spaces.")
)

// Authenticator resolves a token key to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, key string) (*domain.User, error)
}

// AuthMiddleware provides token authentication for routes.
type AuthMiddleware struct {
	auth Authenticator
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: authenticator}
}

// Authenticate requires an "Authorization: Token <key>" header naming an
// active user's token. The user and key are stored in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := tokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			unauthorized(w, r, err)
			return
		}

		user, err := m.auth.Authenticate(r.Context(), key)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrMissingToken),
				errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrUserInactive):
				unauthorized(w, r, err)
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
					shared.DetailResponse{Detail: "A server error occurred."}, err)
			}
			return
		}

		logger.FromContext(r.Context()).Debug("request authenticated")
		ctx := shared.WithAuth(r.Context(), user, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tokenFromHeader extracts the key from an Authorization header value.
// A header using another scheme counts as no credentials at all.
func tokenFromHeader(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) == 0 || !strings.EqualFold(parts[0], TokenKeyword) {
		return "", auth.ErrMissingToken
	}
	switch len(parts) {
	case 1:
		return "", errNoCredentials
	case 2:
		return parts[1], nil
	default:
		return "", errTokenSpaces
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("WWW-Authenticate", TokenKeyword)
	shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
		shared.DetailResponse{Detail: err.Error()}, err)
}
