package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/taskdeck/apiserver/internal/activity"
	"github.com/taskdeck/apiserver/internal/palindrome"
)

// MiscHandler provides the welcome, protected-echo, and palindrome
// endpoints.
type MiscHandler struct {
	activity *activity.Logger
}

// NewMiscHandler constructs a MiscHandler.
func NewMiscHandler(activityLog *activity.Logger) *MiscHandler {
	return &MiscHandler{activity: activityLog}
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Welcome serves the plaintext landing page.
func (h *MiscHandler) Welcome(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Welcome to the home page!"))
}

// Protected echoes the authenticated identity back to the caller.
func (h *MiscHandler) Protected(w http.ResponseWriter, r *http.Request) {
	username, err := usernameFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "no token provided")
		return
	}

	h.activity.Record(r.Context(), "Protected route access", fmt.Sprintf("User: %s", username))
	writeJSON(w, http.StatusOK, ProtectedResponse{
		Message: "access to protected route granted",
		User:    Identity{Username: username},
	})
}

// Palindrome returns the longest palindromic substring of the supplied
// text. Empty input is an endpoint-level validation error; the search
// itself accepts any string.
func (h *MiscHandler) Palindrome(w http.ResponseWriter, r *http.Request) {
	var req PalindromeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.activity.Record(r.Context(), "Palindrome search failed", "Invalid request body")
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		h.activity.Record(r.Context(), "Palindrome search failed", "Text not provided")
		writeError(w, http.StatusBadRequest, "missing text to search for the palindrome")
		return
	}

	largest := palindrome.Longest(req.Text)
	h.activity.Record(r.Context(), "Palindrome search successful", fmt.Sprintf("Text: %s, Palindrome: %s", req.Text, largest))
	writeJSON(w, http.StatusOK, PalindromeResponse{LargestPalindrome: largest})
}

type PalindromeRequest struct {
	Text string `json:"text"`
}

type PalindromeResponse struct {
	LargestPalindrome string `json:"largestPalindrome"`
}

// Identity is the authenticated principal echoed by Protected.
type Identity struct {
	Username string `json:"username"`
}

type ProtectedResponse struct {
	Message string   `json:"message"`
	User    Identity `json:"user"`
}
