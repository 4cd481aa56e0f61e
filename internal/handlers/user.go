package handlers

import (
	"fmt"
	"net/http"

	"github.com/taskdeck/apiserver/internal/activity"
	"github.com/taskdeck/apiserver/internal/services"
)

// UserHandler provides the unauthenticated user listing endpoint.
type UserHandler struct {
	userService *services.UserService
	activity    *activity.Logger
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(userService *services.UserService, activityLog *activity.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		activity:    activityLog,
	}
}

// ListUsers dumps every registered user, password hashes included.
// The endpoint is unauthenticated. Both facts mirror the deployed API
// and are flagged as defects; do not expose this publicly.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		h.activity.Record(r.Context(), "User query failed", fmt.Sprintf("Error: %v", err))
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	h.activity.Record(r.Context(), "User query successful", fmt.Sprintf("Count: %d", len(users)))
	writeJSON(w, http.StatusOK, users)
}
