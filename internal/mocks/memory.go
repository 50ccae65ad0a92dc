package mocks

import (
	"sync"

	"github.com/phrazzld/tasks-api/internal/domain"
)

// Memory is the shared in-memory backend of the store mocks.
type Memory struct {
	mu sync.Mutex

	users  map[int64]*domain.User
	tokens map[string]*domain.AuthToken
	tasks  map[int64]*domain.Task

	nextUserID int64
	nextTaskID int64
}

// NewMemory creates an empty backend.
func NewMemory() *Memory {
	return &Memory{
		users:  make(map[int64]*domain.User),
		tokens: make(map[string]*domain.AuthToken),
		tasks:  make(map[int64]*domain.Task),
	}
}

// UserCount returns how many users are stored.
func (m *Memory) UserCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// TokenCount returns how many tokens are stored.
func (m *Memory) TokenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}

// TokenForUser returns the key of userID's token, or "".
func (m *Memory) TokenForUser(userID int64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, t := range m.tokens {
		if t.UserID == userID {
			return key
		}
	}
	return ""
}

// SetUserActive flips a stored user's active flag.
func (m *Memory) SetUserActive(userID int64, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.IsActive = active
	}
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}

func copyTask(t *domain.Task) *domain.Task {
	c := *t
	return &c
}
