package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/tasks-api/internal/api/middleware"
	"github.com/phrazzld/tasks-api/internal/mocks"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/service/task"
	"github.com/stretchr/testify/require"
)

// testAPI wires the handlers to real services over in-memory stores.
type testAPI struct {
	mem     *mocks.Memory
	tasks   *mocks.MockTaskStore
	auth    auth.Service
	handler http.Handler
	logBuf  *logger.TestLogBuffer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	log, logBuf := logger.GetTestLogger(t)
	mem := mocks.NewMemory()
	taskStore := mocks.NewMockTaskStore(mem)

	authSvc, err := auth.NewService(auth.Dependencies{
		Users:      mocks.NewMockUserStore(mem),
		Tokens:     mocks.NewMockTokenStore(mem),
		Transactor: &mocks.MockTransactor{},
		Sessions:   mocks.NewMockSessionStore(),
		Hasher:     &mocks.MockPasswordHasher{},
		Policy:     auth.PasswordPolicy{MinLength: 6, MaxLength: 72},
		Logger:     log,
	})
	require.NoError(t, err)

	taskSvc, err := task.NewService(taskStore, log)
	require.NoError(t, err)

	authHandler := NewAuthHandler(authSvc)
	taskHandler := NewTaskHandler(taskSvc)
	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(logger.WithLogger(r.Context(), log)))
		})
	})
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/tasks", taskHandler.List)
		r.Post("/tasks", taskHandler.Create)
		r.Get("/tasks/{id}", taskHandler.Get)
		r.Put("/tasks/{id}", taskHandler.Update)
		r.Patch("/tasks/{id}", taskHandler.Patch)
		r.Delete("/tasks/{id}", taskHandler.Delete)
	})

	return &testAPI{mem: mem, tasks: taskStore, auth: authSvc, handler: r, logBuf: logBuf}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

// register creates a user through the API and returns its token.
func (a *testAPI) register(t *testing.T, username string) string {
	t.Helper()

	rr := a.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username":         username,
		"email":            username + "@example.com",
		"password":         "S3cure-pass",
		"password_confirm": "S3cure-pass",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp RegisterResponse
	decode(t, rr, &resp)
	return resp.Token
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}
