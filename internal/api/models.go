package api

import (
	"time"

	"github.com/phrazzld/tasks-api/internal/domain"
)

// RegisterRequest is the payload of POST /api/auth/register/.
type RegisterRequest struct {
	Username        string `json:"username"         validate:"required,max=150"`
	Email           string `json:"email"            validate:"required,email"`
	Password        string `json:"password"         validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

// LoginRequest is the payload of POST /api/auth/login/.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisteredUser is the user projection returned by registration.
type RegisteredUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoggedInUser is the user projection returned by login.
type LoggedInUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// RegisterResponse is the successful registration body.
type RegisterResponse struct {
	User  RegisteredUser `json:"user"`
	Token string         `json:"token"`
}

// LoginResponse is the successful login body.
type LoginResponse struct {
	User  LoggedInUser `json:"user"`
	Token string       `json:"token"`
}

// RegisterErrorResponse wraps registration field errors.
type RegisterErrorResponse struct {
	Errors domain.ValidationErrors `json:"errors"`
}

// NonFieldErrorResponse carries errors not tied to one field.
type NonFieldErrorResponse struct {
	NonFieldErrors []string `json:"non_field_errors"`
}

// LogoutResponse is the successful logout body.
type LogoutResponse struct {
	Detail string `json:"detail"`
}

// LogoutErrorResponse is the failed logout body.
type LogoutErrorResponse struct {
	Error string `json:"error"`
}

// CreateTaskRequest is the payload of POST /api/tasks/. A "user" field in
// the body is ignored.
type CreateTaskRequest struct {
	Title       *string `json:"title"       validate:"required,max=200"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func (r CreateTaskRequest) changes() domain.TaskChanges {
	return TaskRequest(r).changes()
}

// TaskRequest is the payload of task update requests. Absent fields are nil.
// Title rules are checked once the task is known to exist.
type TaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func (r TaskRequest) changes() domain.TaskChanges {
	return domain.TaskChanges{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
	}
}

// TaskResponse is the JSON representation of a task.
type TaskResponse struct {
	ID          int64     `json:"id"`
	User        int64     `json:"user"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		User:        t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToResponse(t))
	}
	return out
}
