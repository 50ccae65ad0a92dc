package mocks

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	CreateFn          func(ctx context.Context, user *domain.User) error
	GetByIDFn         func(ctx context.Context, id int64) (*domain.User, error)
	GetByUsernameFn   func(ctx context.Context, username string) (*domain.User, error)
	EmailExistsFn     func(ctx context.Context, email string) (bool, error)
	UsernameExistsFn  func(ctx context.Context, username string) (bool, error)
	UpdateLastLoginFn func(ctx context.Context, id int64, at time.Time) error

	mem *Memory
}

// NewMockUserStore creates a mock backed by mem.
func NewMockUserStore(mem *Memory) *MockUserStore {
	return &MockUserStore{mem: mem}
}

var _ store.UserStore = (*MockUserStore)(nil)

// WithTx returns the same mock; the memory backend has no transactions.
func (m *MockUserStore) WithTx(*sqlx.Tx) store.UserStore {
	return m
}

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	m.mem.mu.Lock()
	defer m.mem.mu.Unlock()

	for _, existing := range m.mem.users {
		if existing.Username == user.Username {
			return store.ErrUsernameExists
		}
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}

	m.mem.nextUserID++
	user.ID = m.mem.nextUserID
	m.mem.users[user.ID] = copyUser(user)
	return nil
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mem.mu.Lock()
	defer m.mem.mu.Unlock()

	u, ok := m.mem.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return copyUser(u), nil
}

// GetByUsername implements the UserStore interface
func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}

	m.mem.mu.Lock()
	defer m.mem.mu.Unlock()

	for _, u := range m.mem.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// EmailExists implements the UserStore interface
func (m *MockUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	if m.EmailExistsFn != nil {
		return m.EmailExistsFn(ctx, email)
	}

	m.mem.mu.Lock()
	defer m.mem.mu.Unlock()

	for _, u := range m.mem.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// UsernameExists implements the UserStore interface
func (m *MockUserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	if m.UsernameExistsFn != nil {
		return m.UsernameExistsFn(ctx, username)
	}

	m.mem.mu.Lock()
	defer m.mem.mu.Unlock()

	for _, u := range m.mem.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// UpdateLastLogin implements the UserStore interface
func (m *MockUserStore) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	if m.UpdateLastLoginFn != nil {
		return m.UpdateLastLoginFn(ctx, id, at)
	}

	m.mem.mu.Lock()
	defer m.mem.mu.Unlock()

	u, ok := m.mem.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}
