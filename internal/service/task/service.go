// Package task implements the per-user task list use cases. Every operation
// is scoped to the calling user; another user's task behaves as missing.
package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

// ListFilter narrows List.
type ListFilter struct {
	// Query keeps tasks whose title contains it, ignoring case.
	Query string
}

// Service provides task operations for an authenticated user.
type Service interface {
	List(ctx context.Context, userID int64, filter ListFilter) ([]*domain.Task, error)
	Create(ctx context.Context, userID int64, in domain.TaskChanges) (*domain.Task, error)
	Get(ctx context.Context, userID, id int64) (*domain.Task, error)

	// Update replaces the task's writable fields; title is required.
	Update(ctx context.Context, userID, id int64, in domain.TaskChanges) (*domain.Task, error)

	// Patch changes only the fields present in in.
	Patch(ctx context.Context, userID, id int64, in domain.TaskChanges) (*domain.Task, error)

	Delete(ctx context.Context, userID, id int64) error
}

type serviceImpl struct {
	tasks  store.TaskStore
	logger *slog.Logger
}

// NewService creates a task Service.
func NewService(tasks store.TaskStore, logger *slog.Logger) (Service, error) {
	if tasks == nil {
		return nil, errors.New("task: store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &serviceImpl{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_service")),
	}, nil
}

// List implements Service. The query is matched as given; only an empty
// query disables the title filter.
func (s *serviceImpl) List(ctx context.Context, userID int64, filter ListFilter) ([]*domain.Task, error) {
	tasks, err := s.tasks.List(ctx, userID, store.TaskFilter{Query: filter.Query})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Create implements Service.
func (s *serviceImpl) Create(ctx context.Context, userID int64, in domain.TaskChanges) (*domain.Task, error) {
	task, err := domain.NewTask(userID, in)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("user_id", userID))
	return task, nil
}

// Get implements Service.
func (s *serviceImpl) Get(ctx context.Context, userID, id int64) (*domain.Task, error) {
	return s.tasks.Get(ctx, userID, id)
}

// Update implements Service.
func (s *serviceImpl) Update(ctx context.Context, userID, id int64, in domain.TaskChanges) (*domain.Task, error) {
	if in.Title == nil {
		// A missing task wins over a missing title.
		if _, err := s.tasks.Get(ctx, userID, id); err != nil {
			return nil, err
		}
		return nil, domain.NewFieldError("title", domain.MsgRequired)
	}
	return s.Patch(ctx, userID, id, in)
}

// Patch implements Service.
func (s *serviceImpl) Patch(ctx context.Context, userID, id int64, in domain.TaskChanges) (*domain.Task, error) {
	task, err := s.tasks.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	task.Apply(in)
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task updated",
		slog.Int64("task_id", task.ID),
		slog.Int64("user_id", userID))
	return task, nil
}

// Delete implements Service.
func (s *serviceImpl) Delete(ctx context.Context, userID, id int64) error {
	if err := s.tasks.Delete(ctx, userID, id); err != nil {
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("task deleted",
		slog.Int64("task_id", id),
		slog.Int64("user_id", userID))
	return nil
}
