package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/phrazzld/tasks-api/internal/platform/session"
)

// MockSessionStore implements session.Store in memory.
type MockSessionStore struct {
	SaveFn   func(ctx context.Context, key string, s *session.Session) error
	TouchFn  func(ctx context.Context, key string, at time.Time) error
	DeleteFn func(ctx context.Context, key string) error

	mu       sync.Mutex
	sessions map[string]session.Session
}

// NewMockSessionStore creates an empty session mock.
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{sessions: make(map[string]session.Session)}
}

var _ session.Store = (*MockSessionStore)(nil)

// Save implements session.Store.
func (m *MockSessionStore) Save(ctx context.Context, key string, s *session.Session) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, key, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key] = *s
	return nil
}

// Get implements session.Store.
func (m *MockSessionStore) Get(ctx context.Context, key string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	if !ok {
		return nil, session.ErrNotFound
	}
	return &s, nil
}

// Touch implements session.Store.
func (m *MockSessionStore) Touch(ctx context.Context, key string, at time.Time) error {
	if m.TouchFn != nil {
		return m.TouchFn(ctx, key, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		s.LastSeen = at
		m.sessions[key] = s
	}
	return nil
}

// Delete implements session.Store.
func (m *MockSessionStore) Delete(ctx context.Context, key string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	return nil
}

// Len returns the number of stored sessions.
func (m *MockSessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
