package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

type tokenRow struct {
	Key       string    `db:"key"`
	UserID    int64     `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *tokenRow) toDomain() *domain.AuthToken {
	return &domain.AuthToken{Key: r.Key, UserID: r.UserID, CreatedAt: r.CreatedAt}
}

// PostgresTokenStore implements store.TokenStore on the auth_tokens table.
type PostgresTokenStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTokenStore creates a new PostgreSQL implementation of the TokenStore interface.
func NewPostgresTokenStore(db store.DBTX, logger *slog.Logger) *PostgresTokenStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTokenStore{
		db:     db,
		logger: logger.With(slog.String("component", "token_store")),
	}
}

var _ store.TokenStore = (*PostgresTokenStore)(nil)

// WithTx implements store.TokenStore.WithTx
func (s *PostgresTokenStore) WithTx(tx *sqlx.Tx) store.TokenStore {
	return &PostgresTokenStore{db: tx, logger: s.logger}
}

// Create implements store.TokenStore.Create
func (s *PostgresTokenStore) Create(ctx context.Context, token *domain.AuthToken) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO auth_tokens (key, user_id, created_at) VALUES ($1, $2, $3)`,
		token.Key, token.UserID, token.CreatedAt)
	if err != nil {
		if !IsUniqueViolation(err) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to create token",
				slog.String("error", err.Error()),
				slog.Int64("user_id", token.UserID))
		}
		return MapUniqueViolation(err, store.ErrTokenExists)
	}
	return nil
}

// GetOrCreate implements store.TokenStore.GetOrCreate
// A conflict on user_id keeps the existing token; a conflict on the key
// itself surfaces as ErrTokenExists so the caller can retry with a new key.
func (s *PostgresTokenStore) GetOrCreate(
	ctx context.Context,
	candidate *domain.AuthToken,
) (*domain.AuthToken, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO auth_tokens (key, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT `+authTokensUserIDKey+` DO NOTHING
	`, candidate.Key, candidate.UserID, candidate.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("token key collision", slog.Int64("user_id", candidate.UserID))
		} else {
			log.Error("failed to insert token",
				slog.String("error", err.Error()),
				slog.Int64("user_id", candidate.UserID))
		}
		return nil, false, MapUniqueViolation(err, store.ErrTokenExists)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if inserted == 1 {
		return candidate, true, nil
	}

	var row tokenRow
	err = sqlx.GetContext(ctx, s.db, &row,
		`SELECT key, user_id, created_at FROM auth_tokens WHERE user_id = $1`, candidate.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, store.ErrTokenNotFound
		}
		log.Error("failed to load existing token",
			slog.String("error", err.Error()),
			slog.Int64("user_id", candidate.UserID))
		return nil, false, MapError(err)
	}
	return row.toDomain(), false, nil
}

// GetUserByKey implements store.TokenStore.GetUserByKey
func (s *PostgresTokenStore) GetUserByKey(ctx context.Context, key string) (*domain.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.password_hash, u.is_active, u.is_staff,
		       u.is_superuser, u.date_joined, u.last_login
		FROM auth_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.key = $1
	`

	var row userRow
	if err := sqlx.GetContext(ctx, s.db, &row, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTokenNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to resolve token",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return row.toDomain(), nil
}

// Delete implements store.TokenStore.Delete
func (s *PostgresTokenStore) Delete(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE key = $1`, key)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete token",
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTokenNotFound)
}
