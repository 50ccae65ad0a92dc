package domain

import (
	"strings"
	"time"
)

// MaxTaskTitleLength is the longest title a task may carry.
const MaxTaskTitleLength = 200

// Task is a to-do item owned by a single user.
type Task struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskChanges carries the writable task fields. A nil field is left unchanged.
type TaskChanges struct {
	Title       *string
	Description *string
	Completed   *bool
}

// NewTask creates a task for userID from changes. Title is required.
func NewTask(userID int64, changes TaskChanges) (*Task, error) {
	if changes.Title == nil {
		return nil, NewFieldError("title", MsgRequired)
	}

	now := time.Now().UTC()
	task := &Task{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	task.Apply(changes)

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Apply copies the non-nil fields of changes onto the task and bumps UpdatedAt.
// ID, UserID and CreatedAt are never touched.
func (t *Task) Apply(changes TaskChanges) {
	if changes.Title != nil {
		t.Title = strings.TrimSpace(*changes.Title)
	}
	if changes.Description != nil {
		t.Description = *changes.Description
	}
	if changes.Completed != nil {
		t.Completed = *changes.Completed
	}
	t.UpdatedAt = time.Now().UTC()
}

// Validate checks the task's writable fields.
func (t *Task) Validate() error {
	errs := NewValidationErrors()

	switch {
	case t.Title == "":
		errs.Add("title", MsgBlank)
	case len([]rune(t.Title)) > MaxTaskTitleLength:
		errs.Add("title", "Ensure this field has no more than 200 characters.")
	}

	return errs.Err()
}
