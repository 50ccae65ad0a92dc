package mocks

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
)

// MockTokenStore implements store.TokenStore for testing
type MockTokenStore struct {
	CreateFn       func(ctx context.Context, token *domain.AuthToken) error
	GetOrCreateFn  func(ctx context.Context, candidate *domain.AuthToken) (*domain.AuthToken, bool, error)
	GetUserByKeyFn func(ctx context.Context, key string) (*domain.User, error)
	DeleteFn       func(ctx context.Context, key string) error

	mem *Memory
}

// NewMockTokenStore creates a mock backed by mem.
func NewMockTokenStore(mem *Memory) *MockTokenStore {
	return &MockTokenStore{mem: mem}
}

var _ store.TokenStore = (*MockTokenStore)(nil)

// WithTx returns the same mock.
func (m *MockTokenStore) WithTx(*sqlx.Tx) store.TokenStore {
	return m
}

// Create implements the TokenStore interface
func (m *MockTokenStore) Create(ctx context.Context, token *domain.AuthToken) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, token)
	}

	m.mem.mu.Lock()
	defer m.mem.mu.Unlock()
	return m.insertLocked(token)
}

func (m *MockTokenStore) insertLocked(token *domain.AuthToken) error {
	if _, taken := m.mem.tokens[token.Key]; taken {
		return store.ErrTokenExists
	}
	for _, existing := range m.mem.tokens {
		if existing.UserID == token.UserID {
			return store.ErrTokenExists
		}
	}
	if _, ok := m.mem.users[token.UserID]; !ok {
		return store.ErrInvalidEntity
	}
	c := *token
	m.mem.tokens[token.Key] = &c
	return nil
}

// GetOrCreate implements the TokenStore interface
func (m *MockTokenStore) GetOrCreate(
	ctx context.Context,
	candidate *domain.AuthToken,
) (*domain.AuthToken, bool, error) {
	if m.GetOrCreateFn != nil {
		return m.GetOrCreateFn(ctx, candidate)
	}

	m.mem.mu.Lock()
	defer m.mem.mu.Unlock()

	for _, existing := range m.mem.tokens {
		if existing.UserID == candidate.UserID {
			c := *existing
			return &c, false, nil
		}
	}
	if err := m.insertLocked(candidate); err != nil {
		return nil, false, err
	}
	return candidate, true, nil
}

// GetUserByKey implements the TokenStore interface
func (m *MockTokenStore) GetUserByKey(ctx context.Context, key string) (*domain.User, error) {
	if m.GetUserByKeyFn != nil {
		return m.GetUserByKeyFn(ctx, key)
	}

	m.mem.mu.Lock()
	defer m.mem.mu.Unlock()

	token, ok := m.mem.tokens[key]
	if !ok {
		return nil, store.ErrTokenNotFound
	}
	user, ok := m.mem.users[token.UserID]
	if !ok {
		return nil, store.ErrTokenNotFound
	}
	return copyUser(user), nil
}

// Delete implements the TokenStore interface
func (m *MockTokenStore) Delete(ctx context.Context, key string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, key)
	}

	m.mem.mu.Lock()
	defer m.mem.mu.Unlock()

	if _, ok := m.mem.tokens[key]; !ok {
		return store.ErrTokenNotFound
	}
	delete(m.mem.tokens, key)
	return nil
}
