package api

import (
	"net/http"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service/task"
)

// SearchParam is the query parameter filtering task titles.
const SearchParam = "q"

// TaskHandler handles the /api/tasks endpoints. Every route requires an
// authenticated user and only ever touches that user's tasks.
type TaskHandler struct {
	tasks task.Service
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(tasks task.Service) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// List handles GET /api/tasks/ and GET /api/tasks/search/.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized)
		return
	}

	tasks, err := h.tasks.List(r.Context(), user.ID, task.ListFilter{
		Query: r.URL.Query().Get(SearchParam),
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// Create handles POST /api/tasks/.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized)
		return
	}

	var req CreateTaskRequest
	if !decodeTaskRequest(w, r, &req) {
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	created, err := h.tasks.Create(r.Context(), user.ID, req.changes())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(created))
}

// Get handles GET /api/tasks/{id}/.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, id, ok := handleUserAndPathID(w, r)
	if !ok {
		return
	}

	t, err := h.tasks.Get(r.Context(), user.ID, id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(t))
}

// Update handles PUT /api/tasks/{id}/.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, id, ok := handleUserAndPathID(w, r)
	if !ok {
		return
	}

	var req TaskRequest
	if !decodeTaskRequest(w, r, &req) {
		return
	}

	t, err := h.tasks.Update(r.Context(), user.ID, id, req.changes())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(t))
}

// Patch handles PATCH /api/tasks/{id}/.
func (h *TaskHandler) Patch(w http.ResponseWriter, r *http.Request) {
	user, id, ok := handleUserAndPathID(w, r)
	if !ok {
		return
	}

	var req TaskRequest
	if !decodeTaskRequest(w, r, &req) {
		return
	}

	t, err := h.tasks.Patch(r.Context(), user.ID, id, req.changes())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(t))
}

// Delete handles DELETE /api/tasks/{id}/.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, id, ok := handleUserAndPathID(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), user.ID, id); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondNoContent(w)
}

func decodeTaskRequest(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest,
			shared.DetailResponse{Detail: MsgMalformedBody}, err)
		return false
	}
	return true
}
