package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/platform/session"
	"github.com/phrazzld/tasks-api/internal/store"
	"golang.org/x/sync/singleflight"
)

// keyAttempts bounds retries when a generated token key collides.
const keyAttempts = 3

// ClientInfo describes the caller, recorded on the session.
type ClientInfo struct {
	RemoteAddr string
	UserAgent  string
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
	Client          ClientInfo
}

// LoginInput carries the login form.
type LoginInput struct {
	Username string
	Password string
	Client   ClientInfo
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  *domain.User
	Token string
}

// Service provides account and token operations.
type Service interface {
	// Register validates the form, creates the user and its token atomically.
	// Validation problems come back as domain.ValidationErrors.
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)

	// Login checks credentials and returns the user's token, creating it if needed.
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)

	// Logout revokes the token with key and drops its session.
	Logout(ctx context.Context, key string) error

	// Authenticate resolves a token key to an active user.
	Authenticate(ctx context.Context, key string) (*domain.User, error)
}

// Dependencies groups what the auth service needs.
type Dependencies struct {
	Users      store.UserStore
	Tokens     store.TokenStore
	Transactor store.Transactor
	Sessions   session.Store
	Hasher     PasswordHasher
	Policy     PasswordPolicy
	// NewKey defaults to GenerateKey.
	NewKey KeyGenerator
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

type serviceImpl struct {
	users      store.UserStore
	tokens     store.TokenStore
	transactor store.Transactor
	sessions   session.Store
	hasher     PasswordHasher
	policy     PasswordPolicy
	newKey     KeyGenerator
	now        func() time.Time
	logger     *slog.Logger

	lookups singleflight.Group

	dummyOnce sync.Once
	dummyHash string
}

// NewService creates an auth Service. Users, Tokens, Transactor and Hasher are required.
func NewService(deps Dependencies) (Service, error) {
	if deps.Users == nil || deps.Tokens == nil || deps.Transactor == nil || deps.Hasher == nil {
		return nil, errors.New("auth: users, tokens, transactor and hasher are required")
	}
	if deps.Sessions == nil {
		deps.Sessions = session.NopStore{}
	}
	if deps.NewKey == nil {
		deps.NewKey = GenerateKey
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &serviceImpl{
		users:      deps.Users,
		tokens:     deps.Tokens,
		transactor: deps.Transactor,
		sessions:   deps.Sessions,
		hasher:     deps.Hasher,
		policy:     deps.Policy,
		newKey:     deps.NewKey,
		now:        deps.Now,
		logger:     deps.Logger.With(slog.String("component", "auth_service")),
	}, nil
}

// Register implements Service.
func (s *serviceImpl) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.validateRegistration(ctx, in)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hash
	user.Password = ""

	now := s.now().UTC()
	user.DateJoined = now
	token := &domain.AuthToken{CreatedAt: now}
	if token.Key, err = s.newKey(); err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	err = s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		token.UserID = user.ID
		return s.tokens.WithTx(tx).Create(ctx, token)
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUsernameExists):
			log.Debug("registration lost username race")
			return nil, domain.NewFieldError("username", domain.MsgUsernameTaken)
		case store.IsDuplicateError(err) && !errors.Is(err, store.ErrTokenExists):
			log.Debug("registration lost email race")
			return nil, domain.NewFieldError("email", domain.MsgEmailRegistered)
		}
		log.Error("failed to register user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.saveSession(ctx, token.Key, user.ID, in.Client)

	log.Info("user registered", slog.Int64("user_id", user.ID))
	return &AuthResult{User: user, Token: token.Key}, nil
}

// validateRegistration applies the user's field rules and the uniqueness
// checks first; the password match and strength rules only run once every
// field is individually valid.
func (s *serviceImpl) validateRegistration(ctx context.Context, in RegisterInput) (*domain.User, error) {
	errs := domain.NewValidationErrors()

	user, err := domain.NewUser(in.Username, in.Email, in.Password)
	if err != nil {
		verrs, ok := domain.AsValidationErrors(err)
		if !ok {
			return nil, err
		}
		errs.Merge(verrs)
	}
	if in.PasswordConfirm == "" {
		errs.Add("password_confirm", domain.MsgRequired)
	}

	username := strings.TrimSpace(in.Username)
	if _, invalid := errs["username"]; !invalid {
		taken, err := s.users.UsernameExists(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			errs.Add("username", domain.MsgUsernameTaken)
		}
	}

	email := strings.TrimSpace(in.Email)
	if _, invalid := errs["email"]; !invalid {
		used, err := s.users.EmailExists(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if used {
			errs.Add("email", domain.MsgEmailInUse)
		}
	}

	if errs.HasErrors() {
		return nil, errs.Err()
	}

	if in.Password != in.PasswordConfirm {
		return nil, domain.NewFieldError("password_confirm", domain.MsgPasswordsMatch)
	}

	for _, problem := range s.policy.Validate(in.Password, username, email) {
		errs.Add("password", problem)
	}
	if errs.HasErrors() {
		return nil, errs.Err()
	}
	return user, nil
}

// Login implements Service.
func (s *serviceImpl) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		// Keep the response time close to that of a real comparison.
		_ = s.hasher.Compare(s.dummyPasswordHash(), in.Password)
		log.Debug("login for unknown username")
		return nil, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.HashedPassword, in.Password); err != nil {
		log.Debug("login with wrong password", slog.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		log.Info("login for disabled account", slog.Int64("user_id", user.ID))
		return nil, ErrAccountDisabled
	}

	token, err := s.tokenFor(ctx, user.ID)
	if err != nil {
		log.Error("failed to issue token",
			slog.String("error", err.Error()),
			slog.Int64("user_id", user.ID))
		return nil, err
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		log.Error("failed to update last login",
			slog.String("error", err.Error()),
			slog.Int64("user_id", user.ID))
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLogin = &now

	s.saveSession(ctx, token.Key, user.ID, in.Client)

	log.Info("user logged in", slog.Int64("user_id", user.ID))
	return &AuthResult{User: user, Token: token.Key}, nil
}

// tokenFor returns the user's token, minting one if none exists.
func (s *serviceImpl) tokenFor(ctx context.Context, userID int64) (*domain.AuthToken, error) {
	var lastErr error
	for attempt := 0; attempt < keyAttempts; attempt++ {
		key, err := s.newKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}

		candidate := &domain.AuthToken{Key: key, UserID: userID, CreatedAt: s.now().UTC()}
		token, _, err := s.tokens.GetOrCreate(ctx, candidate)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, store.ErrTokenExists) {
			return nil, fmt.Errorf("failed to get or create token: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to get or create token: %w", lastErr)
}

func (s *serviceImpl) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("not-a-real-password")
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

// Logout implements Service.
func (s *serviceImpl) Logout(ctx context.Context, key string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.tokens.Delete(ctx, key); err != nil {
		if !errors.Is(err, store.ErrTokenNotFound) {
			log.Error("failed to delete token", slog.String("error", err.Error()))
		}
		return err
	}
	s.lookups.Forget(key)

	if err := s.sessions.Delete(ctx, key); err != nil {
		log.Warn("failed to delete session", slog.String("error", err.Error()))
	}

	log.Info("user logged out")
	return nil
}

// Authenticate implements Service.
// Concurrent lookups of the same key share one store query. The shared query
// outlives any single caller; each caller still stops waiting when its own
// ctx is done.
func (s *serviceImpl) Authenticate(ctx context.Context, key string) (*domain.User, error) {
	if key == "" {
		return nil, ErrMissingToken
	}

	lookup := context.WithoutCancel(ctx)
	ch := s.lookups.DoChan(key, func() (interface{}, error) {
		return s.tokens.GetUserByKey(lookup, key)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}

	v, err := res.Val, res.Err
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}

	// Each caller gets its own copy; the shared result must not be mutated.
	shared := v.(*domain.User)
	user := *shared
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	if err := s.sessions.Touch(ctx, key, s.now().UTC()); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to touch session",
			slog.String("error", err.Error()),
			slog.Int64("user_id", user.ID))
	}
	return &user, nil
}

// saveSession records the session for key. Failures are logged, not returned.
func (s *serviceImpl) saveSession(ctx context.Context, key string, userID int64, client ClientInfo) {
	now := s.now().UTC()
	err := s.sessions.Save(ctx, key, &session.Session{
		UserID:     userID,
		CreatedAt:  now,
		LastSeen:   now,
		RemoteAddr: client.RemoteAddr,
		UserAgent:  client.UserAgent,
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to save session",
			slog.String("error", err.Error()),
			slog.Int64("user_id", userID))
	}
}
