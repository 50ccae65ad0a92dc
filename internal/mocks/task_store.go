package mocks

import (
	"context"
	"sort"
	"strings"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing
type MockTaskStore struct {
	CreateFn func(ctx context.Context, task *domain.Task) error
	GetFn    func(ctx context.Context, userID, id int64) (*domain.Task, error)
	ListFn   func(ctx context.Context, userID int64, filter store.TaskFilter) ([]*domain.Task, error)
	UpdateFn func(ctx context.Context, task *domain.Task) error
	DeleteFn func(ctx context.Context, userID, id int64) error

	mem *Memory
}

// NewMockTaskStore creates a mock backed by mem.
func NewMockTaskStore(mem *Memory) *MockTaskStore {
	return &MockTaskStore{mem: mem}
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	m.mem.mu.Lock()
	defer m.mem.mu.Unlock()

	if _, ok := m.mem.users[task.UserID]; !ok {
		return store.ErrInvalidEntity
	}
	m.mem.nextTaskID++
	task.ID = m.mem.nextTaskID
	m.mem.tasks[task.ID] = copyTask(task)
	return nil
}

// Get implements the TaskStore interface
func (m *MockTaskStore) Get(ctx context.Context, userID, id int64) (*domain.Task, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID, id)
	}

	m.mem.mu.Lock()
	defer m.mem.mu.Unlock()

	t, ok := m.mem.tasks[id]
	if !ok || t.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	return copyTask(t), nil
}

// List implements the TaskStore interface
func (m *MockTaskStore) List(ctx context.Context, userID int64, filter store.TaskFilter) ([]*domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, filter)
	}

	m.mem.mu.Lock()
	defer m.mem.mu.Unlock()

	query := strings.ToLower(filter.Query)
	tasks := make([]*domain.Task, 0)
	for _, t := range m.mem.tasks {
		if t.UserID != userID {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(t.Title), query) {
			continue
		}
		tasks = append(tasks, copyTask(t))
	}

	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID > tasks[j].ID
	})
	return tasks, nil
}

// Update implements the TaskStore interface
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}

	m.mem.mu.Lock()
	defer m.mem.mu.Unlock()

	existing, ok := m.mem.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return store.ErrTaskNotFound
	}
	existing.Title = task.Title
	existing.Description = task.Description
	existing.Completed = task.Completed
	existing.UpdatedAt = task.UpdatedAt
	return nil
}

// Delete implements the TaskStore interface
func (m *MockTaskStore) Delete(ctx context.Context, userID, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, id)
	}

	m.mem.mu.Lock()
	defer m.mem.mu.Unlock()

	t, ok := m.mem.tasks[id]
	if !ok || t.UserID != userID {
		return store.ErrTaskNotFound
	}
	delete(m.mem.tasks, id)
	return nil
}
