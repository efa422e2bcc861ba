package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/konnekonnekonne/Little-Helpers/internal/auth"
)

// RequireAuth validates the Bearer token on every request except the ones
// listed in exempt (login, health, metrics). With a nil JWT manager the
// middleware is a no-op: the API runs unprotected.
func RequireAuth(jwtManager *auth.JWTManager, exempt ...string) func(http.Handler) http.Handler {
	exemptSet := make(map[string]bool, len(exempt))
	for _, path := range exempt {
		exemptSet[path] = true
	}

	return func(next http.Handler) http.Handler {
		if jwtManager == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exemptSet[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, auth.ErrMissingToken.Error())
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, auth.ErrInvalidToken.Error())
				return
			}

			if err := jwtManager.Validate(parts[1]); err != nil {
				unauthorized(w, auth.ErrInvalidToken.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
