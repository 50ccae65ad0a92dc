package domain

import (
	"errors"
	"sort"
	"strings"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// ValidationErrors unwraps to it.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized is returned when an operation is attempted without an
	// authenticated user.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// NonFieldErrors is the key used for errors that are not tied to a single field.
const NonFieldErrors = "non_field_errors"

// Field error messages shared by the services and the HTTP layer.
const (
	MsgRequired        = "This field is required."
	MsgBlank           = "This field may not be blank."
	MsgInvalidEmail    = "Enter a valid email address."
	MsgPasswordsMatch  = "Passwords must match."
	MsgEmailInUse      = "This email is already in use."
	MsgEmailRegistered = "This email is already registered."
	MsgUsernameTaken   = "A user with that username already exists."
)

// ValidationErrors collects field-keyed validation messages.
// The zero value is not usable; create one with NewValidationErrors.
type ValidationErrors map[string][]string

// NewValidationErrors returns an empty ValidationErrors.
func NewValidationErrors() ValidationErrors {
	return make(ValidationErrors)
}

// NewFieldError returns a ValidationErrors holding a single message.
func NewFieldError(field, message string) ValidationErrors {
	v := NewValidationErrors()
	v.Add(field, message)
	return v
}

// Add appends a message for field.
func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

// Merge copies every message of other into v.
func (v ValidationErrors) Merge(other ValidationErrors) {
	for field, msgs := range other {
		for _, msg := range msgs {
			v.Add(field, msg)
		}
	}
}

// HasErrors reports whether any message was recorded.
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

// Err returns v as an error, or nil when it holds no messages.
func (v ValidationErrors) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

// Error implements the error interface with a stable, field-sorted rendering.
func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(v[field], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap makes errors.Is(err, ErrValidation) hold for any ValidationErrors.
func (v ValidationErrors) Unwrap() error {
	return ErrValidation
}

// AsValidationErrors extracts ValidationErrors from err, if present.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
