package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
)

// getPathID parses a positive integer path parameter. A malformed ID can
// never name a task, so it is reported as not found.
func getPathID(r *http.Request, paramName string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, paramName), 10, 64)
	if err != nil || id <= 0 {
		return 0, store.ErrTaskNotFound
	}
	return id, nil
}

// clientInfo describes the caller for session bookkeeping.
func clientInfo(r *http.Request) auth.ClientInfo {
	return auth.ClientInfo{
		RemoteAddr: r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	}
}

// handleUserAndPathID extracts the authenticated user and the "id" path
// parameter, writing the error response when either is missing.
func handleUserAndPathID(w http.ResponseWriter, r *http.Request) (*domain.User, int64, bool) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized)
		return nil, 0, false
	}

	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return nil, 0, false
	}
	return user, id, true
}
