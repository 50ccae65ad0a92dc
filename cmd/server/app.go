package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/bootstrap"
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/platform/postgres"
	"github.com/phrazzld/tasks-api/internal/platform/session"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/service/task"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/redis/go-redis/v9"
)

// application holds the application's dependencies.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB
	redis  *redis.Client

	// Store interfaces
	users      store.UserStore
	tokens     store.TokenStore
	tasks      store.TaskStore
	transactor store.Transactor
	sessions   session.Store
	hasher     auth.PasswordHasher

	// Migrations; nil when the schema is managed elsewhere.
	migrate bootstrap.Migrator

	// Services
	authService auth.Service
	taskService task.Service
}

// newApplication creates the Postgres and Redis backed application.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sqlx.DB) (*application, error) {
	app := &application{
		config:     cfg,
		logger:     logger,
		db:         db,
		users:      postgres.NewPostgresUserStore(db, logger),
		tokens:     postgres.NewPostgresTokenStore(db, logger),
		tasks:      postgres.NewPostgresTaskStore(db, logger),
		transactor: store.NewDBTransactor(db),
		hasher:     auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		migrate: func(ctx context.Context) error {
			return postgres.Migrate(ctx, db.DB, postgres.MigrateUp, logger)
		},
	}

	if cfg.Redis.URL != "" {
		client, err := session.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.redis = client
		app.sessions = session.NewRedisStore(client, cfg.Auth.SessionTTL)
		logger.Info("redis session store enabled", slog.Duration("session_ttl", cfg.Auth.SessionTTL))
	} else {
		app.sessions = session.NopStore{}
		logger.Info("redis not configured, sessions are not recorded")
	}

	if err := app.initServices(); err != nil {
		app.cleanup()
		return nil, err
	}
	return app, nil
}

// initServices builds the services from the stores already set on app.
func (app *application) initServices() error {
	var err error
	app.authService, err = auth.NewService(auth.Dependencies{
		Users:      app.users,
		Tokens:     app.tokens,
		Transactor: app.transactor,
		Sessions:   app.sessions,
		Hasher:     app.hasher,
		Policy: auth.PasswordPolicy{
			MinLength: app.config.Auth.PasswordMinLength,
			MaxLength: app.config.Auth.PasswordMaxLength,
		},
		Logger: app.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create auth service: %w", err)
	}

	app.taskService, err = task.NewService(app.tasks, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}
	return nil
}

// bootstrap applies migrations and seeds the superuser.
func (app *application) bootstrap(ctx context.Context) error {
	return bootstrap.New(app.migrate, app.users, app.hasher, app.config.Superuser, app.logger).Run(ctx)
}

// Run serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases resources owned by the application. The database pool
// belongs to the caller.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", slog.String("error", err.Error()))
		}
	}
}
