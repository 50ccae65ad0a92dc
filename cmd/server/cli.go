package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/platform/postgres"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// newRootCmd builds the command tree. Running the binary without a
// subcommand starts the server.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tasks-api",
		Short: "Multi-user task list API",
		Long: `tasks-api serves the task list JSON API.

Configuration comes from config.yaml (or the file named by TASKS_CONFIG_FILE)
and TASKS_* environment variables.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	root.AddCommand(newServeCmd(), newMigrateCmd(), newBootstrapCmd(), newHashPasswordCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Bootstrap the database and start the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate <up|down|status|version>",
		Short:     "Run database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateStatus, postgres.MigrateVersion},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), func(ctx context.Context, cfg *config.Config, log *slog.Logger, db *sqlx.DB) error {
				return postgres.Migrate(ctx, db.DB, args[0], log)
			})
		},
	}
}

func newBootstrapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Apply migrations and seed the configured superuser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), func(ctx context.Context, cfg *config.Config, log *slog.Logger, db *sqlx.DB) error {
				app, err := newApplication(ctx, cfg, log, db)
				if err != nil {
					return err
				}
				defer app.cleanup()
				return app.bootstrap(ctx)
			})
		},
	}
}

func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.NewBcryptHasher(cost).Hash(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost factor")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	return withDatabase(cmd.Context(), func(ctx context.Context, cfg *config.Config, log *slog.Logger, db *sqlx.DB) error {
		app, err := newApplication(ctx, cfg, log, db)
		if err != nil {
			return err
		}
		defer app.cleanup()

		if err := app.bootstrap(ctx); err != nil {
			return err
		}
		return app.Run(ctx)
	})
}

// withDatabase loads configuration, sets up logging, opens the database and
// runs fn with a context cancelled on SIGINT or SIGTERM.
func withDatabase(
	parent context.Context,
	fn func(ctx context.Context, cfg *config.Config, log *slog.Logger, db *sqlx.DB) error,
) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("redis_configured", cfg.Redis.URL != ""),
		slog.Bool("superuser_configured", cfg.Superuser.Complete()))

	db, err := setupAppDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}()

	return fn(logger.WithLogger(ctx, log), cfg, log, db)
}
