package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("  alice ", "alice@example.com", "pw123!")
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username, "username should be trimmed")
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "pw123!", user.Password)
	assert.Empty(t, user.HashedPassword)
	assert.True(t, user.IsActive, "new users are active")
	assert.False(t, user.IsStaff)
	assert.False(t, user.IsSuperuser)
	assert.False(t, user.DateJoined.IsZero())
}

func TestUserValidate(t *testing.T) {
	tests := []struct {
		name       string
		user       User
		wantFields []string
	}{
		{
			name: "valid user with plaintext password",
			user: User{Username: "bob", Email: "bob@example.com", Password: "secret"},
		},
		{
			name: "valid user with hash only",
			user: User{Username: "bob", Email: "bob@example.com", HashedPassword: "$2a$10$abc"},
		},
		{
			name:       "missing username",
			user:       User{Email: "bob@example.com", Password: "secret"},
			wantFields: []string{"username"},
		},
		{
			name:       "username too long",
			user:       User{Username: strings.Repeat("a", MaxUsernameLength+1), Email: "bob@example.com", Password: "x"},
			wantFields: []string{"username"},
		},
		{
			name: "multibyte username within limit",
			user: User{Username: strings.Repeat("日", MaxUsernameLength), Email: "bob@example.com", Password: "x"},
		},
		{
			name:       "multibyte username over limit",
			user:       User{Username: strings.Repeat("日", MaxUsernameLength+1), Email: "bob@example.com", Password: "x"},
			wantFields: []string{"username"},
		},
		{
			name:       "invalid email",
			user:       User{Username: "bob", Email: "not-an-email", Password: "secret"},
			wantFields: []string{"email"},
		},
		{
			name:       "everything missing",
			user:       User{},
			wantFields: []string{"username", "email", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			verrs, ok := AsValidationErrors(err)
			require.True(t, ok)
			for _, field := range tt.wantFields {
				assert.Contains(t, verrs, field)
			}
			assert.Len(t, verrs, len(tt.wantFields))
		})
	}
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("alice@x.com"))
	assert.False(t, IsEmail("alice"))
	assert.False(t, IsEmail(""))
}

func TestValidationErrors(t *testing.T) {
	errs := NewValidationErrors()
	assert.NoError(t, errs.Err())

	errs.Add("password", "too short")
	errs.Merge(NewFieldError("email", MsgInvalidEmail))
	errs.Add("password", "too common")

	require.Error(t, errs.Err())
	assert.Equal(t, []string{"too short", "too common"}, errs["password"])
	assert.Equal(t,
		"validation failed: email: Enter a valid email address.; password: too short too common",
		errs.Error())
}
