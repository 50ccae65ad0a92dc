package bootstrap_test

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/tasks-api/internal/bootstrap"
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/mocks"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var adminConfig = config.SuperuserConfig{
	Username: "admin",
	Email:    "admin@example.com",
	Password: "s3cret-admin",
}

func TestRun_CreatesSuperuserOnce(t *testing.T) {
	mem := mocks.NewMemory()
	users := mocks.NewMockUserStore(mem)
	migrations := 0
	migrate := func(ctx context.Context) error {
		migrations++
		return nil
	}

	b := bootstrap.New(migrate, users, &mocks.MockPasswordHasher{}, adminConfig, nil)

	require.NoError(t, b.Run(context.Background()))
	require.NoError(t, b.Run(context.Background()))

	assert.Equal(t, 2, migrations)
	assert.Equal(t, 1, mem.UserCount())

	admin, err := users.GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsStaff)
	assert.True(t, admin.IsSuperuser)
	assert.True(t, admin.IsActive)
	assert.Equal(t, "hashed:s3cret-admin", admin.HashedPassword)
	assert.Empty(t, admin.Password)
}

func TestEnsureSuperuser_Outcomes(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.SuperuserConfig
		want bootstrap.SuperuserOutcome
	}{
		{name: "nothing configured", cfg: config.SuperuserConfig{}, want: bootstrap.SuperuserNotConfigured},
		{
			name: "password missing",
			cfg:  config.SuperuserConfig{Username: "admin", Email: "admin@example.com"},
			want: bootstrap.SuperuserNotConfigured,
		},
		{name: "fully configured", cfg: adminConfig, want: bootstrap.SuperuserCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := mocks.NewMockUserStore(mocks.NewMemory())
			b := bootstrap.New(nil, users, &mocks.MockPasswordHasher{}, tt.cfg, nil)

			got, err := b.EnsureSuperuser(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnsureSuperuser_LosesCreateRace(t *testing.T) {
	users := mocks.NewMockUserStore(mocks.NewMemory())
	users.CreateFn = func(ctx context.Context, user *domain.User) error {
		return store.ErrUsernameExists
	}
	b := bootstrap.New(nil, users, &mocks.MockPasswordHasher{}, adminConfig, nil)

	got, err := b.EnsureSuperuser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bootstrap.SuperuserExists, got)
}

func TestRun_MigrationFailure(t *testing.T) {
	users := mocks.NewMockUserStore(mocks.NewMemory())
	boom := errors.New("relation already exists")
	b := bootstrap.New(func(ctx context.Context) error { return boom }, users,
		&mocks.MockPasswordHasher{}, adminConfig, nil)

	err := b.Run(context.Background())
	assert.ErrorIs(t, err, boom)

	exists, err := users.UsernameExists(context.Background(), "admin")
	require.NoError(t, err)
	assert.False(t, exists, "no seeding after a failed migration")
}

func TestRun_LogsCorrelationID(t *testing.T) {
	log, buf := logger.GetTestLogger(t)
	users := mocks.NewMockUserStore(mocks.NewMemory())
	b := bootstrap.New(nil, users, &mocks.MockPasswordHasher{}, config.SuperuserConfig{}, log)

	require.NoError(t, b.Run(context.Background()))

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	id := entries[0]["bootstrap_id"]
	assert.NotEmpty(t, id)
	for _, e := range entries {
		assert.Equal(t, id, e["bootstrap_id"])
	}
	logger.AssertLogContains(t, buf, "superuser credentials not configured, skipping")
}
