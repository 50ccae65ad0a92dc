// Package bootstrap prepares a fresh or existing database for serving:
// it applies pending migrations and seeds the configured superuser.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

// Migrator applies pending schema migrations.
type Migrator func(ctx context.Context) error

// Hasher hashes the superuser's password.
type Hasher interface {
	Hash(password string) (string, error)
}

// SuperuserOutcome reports what EnsureSuperuser did.
type SuperuserOutcome string

const (
	SuperuserCreated       SuperuserOutcome = "created"
	SuperuserExists        SuperuserOutcome = "exists"
	SuperuserNotConfigured SuperuserOutcome = "not_configured"
)

// Bootstrapper runs the start-up steps.
type Bootstrapper struct {
	migrate Migrator
	users   store.UserStore
	hasher  Hasher
	cfg     config.SuperuserConfig
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a Bootstrapper. migrate may be nil to skip migrations.
func New(
	migrate Migrator,
	users store.UserStore,
	hasher Hasher,
	cfg config.SuperuserConfig,
	logger *slog.Logger,
) *Bootstrapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bootstrapper{
		migrate: migrate,
		users:   users,
		hasher:  hasher,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "bootstrap")),
		now:     time.Now,
	}
}

// Run applies migrations and then ensures the superuser. Running it again
// against an up-to-date database changes nothing.
func (b *Bootstrapper) Run(ctx context.Context) error {
	log := b.logger.With(slog.String("bootstrap_id", uuid.NewString()))
	ctx = logger.WithLogger(ctx, log)

	start := b.now()
	log.Info("bootstrap started")

	if b.migrate != nil {
		if err := b.migrate(ctx); err != nil {
			log.Error("migrations failed", slog.String("error", err.Error()))
			return fmt.Errorf("bootstrap: migrate: %w", err)
		}
		log.Info("migrations applied")
	}

	if _, err := b.EnsureSuperuser(ctx); err != nil {
		return fmt.Errorf("bootstrap: superuser: %w", err)
	}

	log.Info("bootstrap finished", slog.Duration("duration", b.now().Sub(start)))
	return nil
}

// EnsureSuperuser creates the configured administrator unless it already
// exists. Missing configuration is not an error.
func (b *Bootstrapper) EnsureSuperuser(ctx context.Context) (SuperuserOutcome, error) {
	log := logger.FromContextOrDefault(ctx, b.logger)

	if !b.cfg.Complete() {
		log.Info("superuser credentials not configured, skipping")
		return SuperuserNotConfigured, nil
	}

	exists, err := b.users.UsernameExists(ctx, b.cfg.Username)
	if err != nil {
		return "", err
	}
	if exists {
		log.Info("superuser already exists", slog.String("username", b.cfg.Username))
		return SuperuserExists, nil
	}

	user, err := domain.NewUser(b.cfg.Username, b.cfg.Email, b.cfg.Password)
	if err != nil {
		return "", err
	}
	hash, err := b.hasher.Hash(b.cfg.Password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hash
	user.Password = ""
	user.IsStaff = true
	user.IsSuperuser = true
	user.DateJoined = b.now().UTC()

	if err := b.users.Create(ctx, user); err != nil {
		// Another instance may have seeded it concurrently.
		if errors.Is(err, store.ErrUsernameExists) {
			log.Info("superuser already exists", slog.String("username", b.cfg.Username))
			return SuperuserExists, nil
		}
		return "", err
	}

	log.Info("superuser created",
		slog.String("username", user.Username),
		slog.Int64("user_id", user.ID))
	return SuperuserCreated, nil
}
