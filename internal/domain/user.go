package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Field limits for User.
const (
	MaxUsernameLength = 150
	MaxEmailLength    = 254
)

var fieldValidator = validator.New()

// User represents a registered account.
type User struct {
	ID             int64      `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	Password       string     `json:"-"` // Plaintext password, used temporarily during registration
	HashedPassword string     `json:"-"` // Never expose password hash in JSON
	IsActive       bool       `json:"is_active"`
	IsStaff        bool       `json:"-"`
	IsSuperuser    bool       `json:"-"`
	DateJoined     time.Time  `json:"date_joined"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
}

// NewUser creates an active, non-admin User with the given credentials.
// It returns ValidationErrors if the username or email are unusable.
//
// NOTE: the caller is responsible for hashing Password before storing the user.
func NewUser(username, email, password string) (*User, error) {
	user := &User{
		Username:   strings.TrimSpace(username),
		Email:      strings.TrimSpace(email),
		Password:   password,
		IsActive:   true,
		DateJoined: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks the identity fields of the user.
func (u *User) Validate() error {
	errs := NewValidationErrors()

	switch {
	case u.Username == "":
		errs.Add("username", MsgRequired)
	case utf8.RuneCountInString(u.Username) > MaxUsernameLength:
		errs.Add("username", fmt.Sprintf("Ensure this field has no more than %d characters.", MaxUsernameLength))
	}

	switch {
	case u.Email == "":
		errs.Add("email", MsgRequired)
	case utf8.RuneCountInString(u.Email) > MaxEmailLength || !IsEmail(u.Email):
		errs.Add("email", MsgInvalidEmail)
	}

	if u.Password == "" && u.HashedPassword == "" {
		errs.Add("password", MsgRequired)
	}

	return errs.Err()
}

// IsEmail reports whether s is shaped like an email address.
func IsEmail(s string) bool {
	return fieldValidator.Var(s, "required,email") == nil
}
