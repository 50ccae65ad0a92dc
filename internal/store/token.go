package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// TokenStore persists opaque auth tokens. A user owns at most one token.
type TokenStore interface {
	// Create inserts a new token.
	// Returns ErrTokenExists if the user already owns a token or the key collides.
	Create(ctx context.Context, token *domain.AuthToken) error

	// GetOrCreate returns the user's existing token, or inserts candidate and
	// returns it. The boolean reports whether candidate was inserted.
	GetOrCreate(ctx context.Context, candidate *domain.AuthToken) (*domain.AuthToken, bool, error)

	// GetUserByKey resolves a token key to its owning user.
	// Returns ErrTokenNotFound if no such token exists.
	GetUserByKey(ctx context.Context, key string) (*domain.User, error)

	// Delete removes the token with the given key.
	// Returns ErrTokenNotFound if no such token exists.
	Delete(ctx context.Context, key string) error

	// WithTx returns a new TokenStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) TokenStore
}
