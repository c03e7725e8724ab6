package kit

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MetricsAuth guards a handler with a bearer token. tokenHash is the bcrypt
// hash of the token, so the plaintext never has to live in configuration.
// An empty hash denies everything.
func MetricsAuth(tokenHash string) func(http.Handler) http.Handler {
	hash := []byte(tokenHash)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(hash) == 0 {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			token := strings.TrimPrefix(authz, "Bearer ")
			if bcrypt.CompareHashAndPassword(hash, []byte(token)) != nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
