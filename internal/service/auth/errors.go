package auth

import "errors"

// Common authentication service errors. Their messages are returned to clients
// verbatim.
var (
	// ErrMissingCredentials indicates a login without a username or password.
	ErrMissingCredentials = errors.New("Must include 'username' and 'password'.")

	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("Invalid username or password.")

	// ErrAccountDisabled indicates correct credentials for an inactive account.
	ErrAccountDisabled = errors.New("User account is disabled.")

	// ErrMissingToken indicates a protected request without a usable Authorization header.
	ErrMissingToken = errors.New("Authentication credentials were not provided.")

	// ErrInvalidToken indicates the presented token key does not exist.
	ErrInvalidToken = errors.New("Invalid token.")

	// ErrUserInactive indicates the token's owner has been deactivated.
	ErrUserInactive = errors.New("User inactive or deleted.")
)
