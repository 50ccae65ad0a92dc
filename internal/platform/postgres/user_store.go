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

const userColumns = `id, username, email, password_hash, is_active, is_staff, is_superuser, date_joined, last_login`

// userRow mirrors the users table.
type userRow struct {
	ID           int64        `db:"id"`
	Username     string       `db:"username"`
	Email        string       `db:"email"`
	PasswordHash string       `db:"password_hash"`
	IsActive     bool         `db:"is_active"`
	IsStaff      bool         `db:"is_staff"`
	IsSuperuser  bool         `db:"is_superuser"`
	DateJoined   time.Time    `db:"date_joined"`
	LastLogin    sql.NullTime `db:"last_login"`
}

func (r *userRow) toDomain() *domain.User {
	user := &domain.User{
		ID:             r.ID,
		Username:       r.Username,
		Email:          r.Email,
		HashedPassword: r.PasswordHash,
		IsActive:       r.IsActive,
		IsStaff:        r.IsStaff,
		IsSuperuser:    r.IsSuperuser,
		DateJoined:     r.DateJoined,
	}
	if r.LastLogin.Valid {
		lastLogin := r.LastLogin.Time
		user.LastLogin = &lastLogin
	}
	return user
}

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sqlx.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, logger: s.logger}
}

// Create implements store.UserStore.Create
// The user must already carry a password hash; plaintext is never stored.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user.HashedPassword == "" {
		return store.NewStoreError("user", "create", "missing password hash", store.ErrInvalidEntity)
	}
	if err := user.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO users (username, email, password_hash, is_active, is_staff, is_superuser, date_joined)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := s.db.QueryRowxContext(ctx, query,
		user.Username,
		user.Email,
		user.HashedPassword,
		user.IsActive,
		user.IsStaff,
		user.IsSuperuser,
		user.DateJoined,
	).Scan(&user.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate user rejected", slog.String("constraint", ConstraintName(err)))
			if ConstraintName(err) == usersUsernameKey {
				return MapUniqueViolation(err, store.ErrUsernameExists)
			}
			return MapUniqueViolation(err, store.ErrEmailExists)
		}
		log.Error("failed to create user", slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Info("user created", slog.Int64("user_id", user.ID))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (s *PostgresUserStore) getOne(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var row userRow
	if err := sqlx.GetContext(ctx, s.db, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return row.toDomain(), nil
}

// EmailExists implements store.UserStore.EmailExists
func (s *PostgresUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

// UsernameExists implements store.UserStore.UsernameExists
func (s *PostgresUserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

func (s *PostgresUserStore) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var found bool
	if err := sqlx.GetContext(ctx, s.db, &found, query, arg); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed existence check",
			slog.String("error", err.Error()))
		return false, MapError(err)
	}
	return found, nil
}

// UpdateLastLogin implements store.UserStore.UpdateLastLogin
func (s *PostgresUserStore) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update last login",
			slog.String("error", err.Error()),
			slog.Int64("user_id", id))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}
