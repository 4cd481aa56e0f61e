package handlers

import (
	"context"
	"net/http"

	"github.com/taskdeck/apiserver/internal/activity"
	"github.com/taskdeck/apiserver/internal/auth"
)

// RequireAuth enforces bearer-token authentication and injects the
// token's username into the request context. A missing or malformed
// Authorization header is rejected with 401; a token that fails
// verification with 403. The asymmetry is deliberate and mirrors the
// deployed API. Every rejection is recorded to the activity log.
func RequireAuth(tokens *auth.TokenService, log *activity.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				log.Record(r.Context(), "Authentication failed", "Token not provided")
				writeError(w, http.StatusUnauthorized, "no token provided")
				return
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				log.Record(r.Context(), "Authentication failed", "Invalid or expired token")
				writeError(w, http.StatusForbidden, "you must be logged in to access this section")
				return
			}

			ctx := context.WithValue(r.Context(), contextUsernameKey, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
