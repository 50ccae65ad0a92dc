package store

import (
	"context"

	"github.com/phrazzld/tasks-api/internal/domain"
)

// TaskFilter narrows a task listing.
type TaskFilter struct {
	// Query, when non-empty, keeps tasks whose title contains it (case-insensitive).
	Query string
}

// TaskStore defines the interface for task persistence.
// Every read and write is scoped to an owning user; a task owned by someone
// else is indistinguishable from a missing one.
type TaskStore interface {
	// Create saves a new task and sets its ID and timestamps.
	Create(ctx context.Context, task *domain.Task) error

	// Get returns the task with id owned by userID.
	// Returns ErrTaskNotFound if it does not exist or belongs to another user.
	Get(ctx context.Context, userID, id int64) (*domain.Task, error)

	// List returns userID's tasks, newest first.
	List(ctx context.Context, userID int64, filter TaskFilter) ([]*domain.Task, error)

	// Update writes title, description, completed and updated_at of task.
	// Returns ErrTaskNotFound if no row matches (task.ID, task.UserID).
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes the task with id owned by userID.
	// Returns ErrTaskNotFound if nothing was deleted.
	Delete(ctx context.Context, userID, id int64) error
}
