package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestNewTask(t *testing.T) {
	task, err := NewTask(7, TaskChanges{Title: strPtr("  buy milk "), Description: strPtr("2 litres")})
	require.NoError(t, err)

	assert.Equal(t, int64(7), task.UserID)
	assert.Equal(t, "buy milk", task.Title)
	assert.Equal(t, "2 litres", task.Description)
	assert.False(t, task.Completed)
	assert.False(t, task.CreatedAt.IsZero())
	assert.Zero(t, task.ID, "ids are assigned by the store")
}

func TestNewTask_Validation(t *testing.T) {
	tests := []struct {
		name    string
		changes TaskChanges
		wantMsg string
	}{
		{name: "missing title", changes: TaskChanges{}, wantMsg: MsgRequired},
		{name: "blank title", changes: TaskChanges{Title: strPtr("   ")}, wantMsg: MsgBlank},
		{
			name:    "title too long",
			changes: TaskChanges{Title: strPtr(strings.Repeat("x", MaxTaskTitleLength+1))},
			wantMsg: "Ensure this field has no more than 200 characters.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTask(1, tt.changes)
			verrs, ok := AsValidationErrors(err)
			require.True(t, ok)
			assert.Equal(t, []string{tt.wantMsg}, verrs["title"])
		})
	}
}

func TestTaskApply(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	task := &Task{
		ID:          3,
		UserID:      9,
		Title:       "old",
		Description: "keep",
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	task.Apply(TaskChanges{Completed: boolPtr(true)})

	assert.Equal(t, "old", task.Title)
	assert.Equal(t, "keep", task.Description)
	assert.True(t, task.Completed)
	assert.Equal(t, int64(3), task.ID)
	assert.Equal(t, int64(9), task.UserID)
	assert.Equal(t, created, task.CreatedAt)
	assert.True(t, task.UpdatedAt.After(created))
}
