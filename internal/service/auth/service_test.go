package auth_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/mocks"
	"github.com/phrazzld/tasks-api/internal/platform/session"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	mem      *mocks.Memory
	users    *mocks.MockUserStore
	tokens   *mocks.MockTokenStore
	tx       *mocks.MockTransactor
	sessions *mocks.MockSessionStore
	hasher   *mocks.MockPasswordHasher
	svc      auth.Service
}

func newFixture(t *testing.T, tweak ...func(*auth.Dependencies)) *fixture {
	t.Helper()

	mem := mocks.NewMemory()
	f := &fixture{
		mem:      mem,
		users:    mocks.NewMockUserStore(mem),
		tokens:   mocks.NewMockTokenStore(mem),
		tx:       &mocks.MockTransactor{},
		sessions: mocks.NewMockSessionStore(),
		hasher:   &mocks.MockPasswordHasher{},
	}

	var counter int64
	deps := auth.Dependencies{
		Users:      f.users,
		Tokens:     f.tokens,
		Transactor: f.tx,
		Sessions:   f.sessions,
		Hasher:     f.hasher,
		Policy:     auth.PasswordPolicy{MinLength: 6, MaxLength: 72},
		NewKey: func() (string, error) {
			n := atomic.AddInt64(&counter, 1)
			return "key-" + string(rune('a'+n-1)), nil
		},
		Now: func() time.Time { return fixedNow },
	}
	for _, fn := range tweak {
		fn(&deps)
	}

	svc, err := auth.NewService(deps)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func validRegistration() auth.RegisterInput {
	return auth.RegisterInput{
		Username:        "alice",
		Email:           "alice@x.com",
		Password:        "pw123!",
		PasswordConfirm: "pw123!",
		Client:          auth.ClientInfo{RemoteAddr: "10.0.0.1", UserAgent: "test"},
	}
}

func fieldErrors(t *testing.T, err error) domain.ValidationErrors {
	t.Helper()
	verrs, ok := domain.AsValidationErrors(err)
	require.True(t, ok, "expected validation errors, got %v", err)
	return verrs
}

func TestNewService_RequiresDependencies(t *testing.T) {
	_, err := auth.NewService(auth.Dependencies{})
	assert.Error(t, err)
}

func TestRegister_Success(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	assert.Equal(t, "alice", res.User.Username)
	assert.Equal(t, "alice@x.com", res.User.Email)
	assert.Equal(t, "key-a", res.Token)
	assert.Equal(t, "hashed:pw123!", res.User.HashedPassword)
	assert.Empty(t, res.User.Password, "plaintext is dropped after hashing")
	assert.True(t, res.User.IsActive)
	assert.Equal(t, 1, f.tx.Calls())
	assert.Equal(t, 1, f.mem.UserCount())
	assert.Equal(t, "key-a", f.mem.TokenForUser(res.User.ID))

	sess, err := f.sessions.Get(context.Background(), "key-a")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, sess.UserID)
	assert.Equal(t, "10.0.0.1", sess.RemoteAddr)
}

func TestRegister_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*auth.RegisterInput)
		want   map[string][]string
	}{
		{
			name:   "missing fields",
			mutate: func(in *auth.RegisterInput) { *in = auth.RegisterInput{} },
			want: map[string][]string{
				"username":         {domain.MsgRequired},
				"email":            {domain.MsgRequired},
				"password":         {domain.MsgRequired},
				"password_confirm": {domain.MsgRequired},
			},
		},
		{
			name:   "invalid email",
			mutate: func(in *auth.RegisterInput) { in.Email = "alice" },
			want:   map[string][]string{"email": {domain.MsgInvalidEmail}},
		},
		{
			name:   "password mismatch",
			mutate: func(in *auth.RegisterInput) { in.PasswordConfirm = "pw123?" },
			want:   map[string][]string{"password_confirm": {domain.MsgPasswordsMatch}},
		},
		{
			name: "weak password",
			mutate: func(in *auth.RegisterInput) {
				in.Password, in.PasswordConfirm = "12345", "12345"
			},
			want: map[string][]string{"password": {
				"This password is too short. It must contain at least 6 characters.",
				"This password is entirely numeric.",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := validRegistration()
			tt.mutate(&in)

			_, err := f.svc.Register(context.Background(), in)
			require.Error(t, err)
			assert.Equal(t, domain.ValidationErrors(tt.want), fieldErrors(t, err))
			assert.Equal(t, 0, f.mem.UserCount())
		})
	}
}

func TestRegister_MultibyteUsername(t *testing.T) {
	f := newFixture(t)
	in := validRegistration()
	in.Username = strings.Repeat("日", 60)

	res, err := f.svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in.Username, res.User.Username)
}

func TestRegister_UsernameTooLong(t *testing.T) {
	f := newFixture(t)
	in := validRegistration()
	in.Username = strings.Repeat("日", domain.MaxUsernameLength+1)

	_, err := f.svc.Register(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t,
		[]string{"Ensure this field has no more than 150 characters."},
		fieldErrors(t, err)["username"])
}

func TestRegister_FieldAndUniquenessErrorsCombine(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	in := validRegistration()
	in.Username = "bob"
	in.Email = "not-an-email"
	in.PasswordConfirm = ""
	_, err = f.svc.Register(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, domain.ValidationErrors{
		"email":            {domain.MsgInvalidEmail},
		"password_confirm": {domain.MsgRequired},
	}, fieldErrors(t, err))

	in = validRegistration()
	in.Email = "bob@x.com"
	in.Password = ""
	_, err = f.svc.Register(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, domain.ValidationErrors{
		"username": {domain.MsgUsernameTaken},
		"password": {domain.MsgRequired},
	}, fieldErrors(t, err))
}

func TestRegister_DuplicateEmailAndUsername(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	in := validRegistration()
	_, err = f.svc.Register(context.Background(), in)
	verrs := fieldErrors(t, err)
	assert.Equal(t, []string{domain.MsgUsernameTaken}, verrs["username"])
	assert.Equal(t, []string{domain.MsgEmailInUse}, verrs["email"])
	assert.Equal(t, 1, f.mem.UserCount())
}

func TestRegister_StorageRaceMapsToFieldError(t *testing.T) {
	tests := []struct {
		name      string
		createErr error
		field     string
		msg       string
	}{
		{"email race", store.ErrEmailExists, "email", domain.MsgEmailRegistered},
		{"unknown duplicate", store.ErrDuplicate, "email", domain.MsgEmailRegistered},
		{"username race", store.ErrUsernameExists, "username", domain.MsgUsernameTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.users.CreateFn = func(ctx context.Context, user *domain.User) error {
				return tt.createErr
			}

			_, err := f.svc.Register(context.Background(), validRegistration())
			verrs := fieldErrors(t, err)
			assert.Equal(t, domain.ValidationErrors{tt.field: {tt.msg}}, verrs)
		})
	}
}

func TestRegister_UnexpectedFailure(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("connection reset")
	f.users.EmailExistsFn = func(ctx context.Context, email string) (bool, error) {
		return false, boom
	}

	_, err := f.svc.Register(context.Background(), validRegistration())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	_, isValidation := domain.AsValidationErrors(err)
	assert.False(t, isValidation)
}

func TestRegister_SessionFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.sessions.SaveFn = func(ctx context.Context, key string, s *session.Session) error {
		return errors.New("redis down")
	}

	_, err := f.svc.Register(context.Background(), validRegistration())
	assert.NoError(t, err)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	reg, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	res, err := f.svc.Login(context.Background(), auth.LoginInput{Username: "alice", Password: "pw123!"})
	require.NoError(t, err)
	assert.Equal(t, reg.Token, res.Token, "login reuses the existing token")
	assert.Equal(t, reg.User.ID, res.User.ID)
	require.NotNil(t, res.User.LastLogin)
	assert.Equal(t, fixedNow, *res.User.LastLogin)

	stored, err := f.users.GetByID(context.Background(), reg.User.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)
}

func TestLogin_CreatesTokenAfterLogout(t *testing.T) {
	f := newFixture(t)
	reg, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(context.Background(), reg.Token))

	res, err := f.svc.Login(context.Background(), auth.LoginInput{Username: "alice", Password: "pw123!"})
	require.NoError(t, err)
	assert.NotEqual(t, reg.Token, res.Token)
	assert.Equal(t, 1, f.mem.TokenCount())
}

func TestLogin_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      auth.LoginInput
		wantErr error
	}{
		{"missing username", auth.LoginInput{Password: "pw123!"}, auth.ErrMissingCredentials},
		{"missing password", auth.LoginInput{Username: "alice"}, auth.ErrMissingCredentials},
		{"unknown user", auth.LoginInput{Username: "nobody", Password: "pw123!"}, auth.ErrInvalidCredentials},
		{"wrong password", auth.LoginInput{Username: "alice", Password: "nope!!"}, auth.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Register(context.Background(), validRegistration())
			require.NoError(t, err)

			_, err = f.svc.Login(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLogin_UnknownUserStillComparesHash(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), auth.LoginInput{Username: "ghost", Password: "pw123!"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, 1, f.hasher.CompareCalls())
}

func TestLogin_DisabledAccount(t *testing.T) {
	f := newFixture(t)
	reg, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	f.mem.SetUserActive(reg.User.ID, false)

	_, err = f.svc.Login(context.Background(), auth.LoginInput{Username: "alice", Password: "pw123!"})
	assert.ErrorIs(t, err, auth.ErrAccountDisabled)

	_, err = f.svc.Login(context.Background(), auth.LoginInput{Username: "alice", Password: "wrong!"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials, "a wrong password never reveals the account state")
}

func TestLogin_RetriesKeyCollision(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	attempts := 0
	f.tokens.GetOrCreateFn = func(ctx context.Context, c *domain.AuthToken) (*domain.AuthToken, bool, error) {
		attempts++
		if attempts < 3 {
			return nil, false, store.ErrTokenExists
		}
		return c, true, nil
	}

	res, err := f.svc.Login(context.Background(), auth.LoginInput{Username: "alice", Password: "pw123!"})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.NotEmpty(t, res.Token)
}

func TestLogin_StoreFailure(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("db down")
	f.users.GetByUsernameFn = func(ctx context.Context, username string) (*domain.User, error) {
		return nil, boom
	}

	_, err := f.svc.Login(context.Background(), auth.LoginInput{Username: "alice", Password: "pw123!"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	reg, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), reg.Token))
	assert.Equal(t, 0, f.mem.TokenCount())
	assert.Equal(t, 0, f.sessions.Len())

	_, err = f.svc.Authenticate(context.Background(), reg.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	err = f.svc.Logout(context.Background(), reg.Token)
	assert.ErrorIs(t, err, store.ErrTokenNotFound)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	reg, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	user, err := f.svc.Authenticate(context.Background(), reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, user.ID)

	_, err = f.svc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, auth.ErrMissingToken)

	_, err = f.svc.Authenticate(context.Background(), "unknown")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	f.mem.SetUserActive(reg.User.ID, false)
	_, err = f.svc.Authenticate(context.Background(), reg.Token)
	assert.ErrorIs(t, err, auth.ErrUserInactive)
}

func TestAuthenticate_ConcurrentLookups(t *testing.T) {
	f := newFixture(t)
	reg, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user, err := f.svc.Authenticate(context.Background(), reg.Token)
			if err == nil && user.ID != reg.User.ID {
				err = errors.New("wrong user")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestAuthenticate_CancelledCallerDoesNotFailOthers(t *testing.T) {
	f := newFixture(t)
	reg, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	f.tokens.GetUserByKeyFn = func(ctx context.Context, key string) (*domain.User, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		select {
		case <-release:
			return &domain.User{ID: reg.User.ID, Username: "alice", IsActive: true}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := f.svc.Authenticate(leaderCtx, reg.Token)
		leaderErr <- err
	}()
	<-started

	type result struct {
		user *domain.User
		err  error
	}
	follower := make(chan result, 1)
	go func() {
		user, err := f.svc.Authenticate(context.Background(), reg.Token)
		follower <- result{user, err}
	}()

	// Give the second caller time to join the in-flight lookup.
	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	close(release)
	res := <-follower
	require.NoError(t, res.err)
	assert.Equal(t, reg.User.ID, res.user.ID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "callers share one lookup")
}
