package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"listkeep/internal/auth"
)

// RequireAuth validates the bearer token and populates the auth context.
// Missing, malformed, invalid, and expired tokens all yield the same 401
// body so callers cannot distinguish token states.
func RequireAuth(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				unauthorized(w)
				return
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				unauthorized(w)
				return
			}

			ac := auth.AuthContext{
				AccountID: claims.AccountID,
				Email:     claims.Email,
			}
			next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), ac)))
		})
	}
}

// websocketPath is the one route allowed to pass the token as a query
// parameter, since browser WebSocket clients cannot set headers. Everywhere
// else query tokens are refused so they cannot end up in request logs.
const websocketPath = "/auth/ws"

// bearerToken extracts the token from the Authorization header, falling back
// to a token query parameter for the WebSocket upgrade only.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return ""
		}
		return parts[1]
	}
	if r.URL.Path == websocketPath {
		return r.URL.Query().Get("token")
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": "unauthorized"})
}
