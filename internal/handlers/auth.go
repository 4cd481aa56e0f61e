package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/taskdeck/apiserver/internal/activity"
	"github.com/taskdeck/apiserver/internal/auth"
	"github.com/taskdeck/apiserver/internal/services"
	"github.com/taskdeck/apiserver/internal/store"
	"github.com/taskdeck/apiserver/types"
)

// AuthHandler provides the registration and login endpoints.
type AuthHandler struct {
	userService *services.UserService
	hasher      *auth.PasswordHasher
	tokens      *auth.TokenService
	activity    *activity.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(
	userService *services.UserService,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenService,
	activityLog *activity.Logger,
) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		hasher:      hasher,
		tokens:      tokens,
		activity:    activityLog,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(
	r chi.Router,
	userService *services.UserService,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenService,
	activityLog *activity.Logger,
) {
	handler := NewAuthHandler(userService, hasher, tokens, activityLog)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
}

// Register creates a new user account.
//
// The created user is echoed back including its password hash, matching
// the deployed behavior. Duplicate usernames or emails surface as a
// generic 500, not a 409.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.activity.Record(r.Context(), "Registration failed", "Invalid request body")
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		h.activity.Record(r.Context(), "Registration failed", "Missing data")
		writeError(w, http.StatusBadRequest, "missing data to register the user")
		return
	}

	hashed, err := h.hasher.Hash(req.Password)
	if err != nil {
		h.activity.Record(r.Context(), "Registration failed", fmt.Sprintf("Error: %v", err))
		writeError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	user, err := h.userService.Create(r.Context(), types.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
	})
	if err != nil {
		h.activity.Record(r.Context(), "Registration failed", fmt.Sprintf("Error: %v", err))
		writeError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	h.activity.Record(r.Context(), "Registration successful", fmt.Sprintf("User: %s", user.Username))
	writeJSON(w, http.StatusCreated, RegisterResponse{
		Message: "user registered successfully",
		User:    user,
	})
}

// Login verifies credentials and returns a session token. An unknown
// username and a wrong password produce byte-identical 401 responses so
// valid usernames cannot be enumerated.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.activity.Record(r.Context(), "Login failed", "Invalid request body")
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		h.activity.Record(r.Context(), "Login failed", "Missing credentials")
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	user, err := h.userService.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.activity.Record(r.Context(), "Login failed", fmt.Sprintf("User: %s", req.Username))
			writeError(w, http.StatusUnauthorized, "incorrect username or password")
			return
		}
		h.activity.Record(r.Context(), "Login failed", fmt.Sprintf("Error: %v", err))
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	if !h.hasher.Verify(req.Password, user.PasswordHash) {
		h.activity.Record(r.Context(), "Login failed", fmt.Sprintf("User: %s", req.Username))
		writeError(w, http.StatusUnauthorized, "incorrect username or password")
		return
	}

	token, err := h.tokens.Issue(user.Username)
	if err != nil {
		h.activity.Record(r.Context(), "Login failed", fmt.Sprintf("Error: %v", err))
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	h.activity.Record(r.Context(), "Login successful", fmt.Sprintf("User: %s", user.Username))
	writeJSON(w, http.StatusOK, LoginResponse{
		Message: "user accepted",
		Token:   token,
	})
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Message string     `json:"message"`
	User    types.User `json:"user"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}
