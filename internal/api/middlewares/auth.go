package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// APIKeyMiddleware checks the X-API-Key header. When a bcrypt hash is
// configured it takes precedence over the plain key so the secret never has
// to live in the environment verbatim. With neither configured the check is
// disabled.
func APIKeyMiddleware(plainKey, hashedKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if plainKey == "" && hashedKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			got := r.Header.Get("X-API-Key")
			if got == "" {
				http.Error(w, "missing api key", http.StatusUnauthorized)
				return
			}

			if hashedKey != "" {
				if err := bcrypt.CompareHashAndPassword([]byte(hashedKey), []byte(got)); err != nil {
					http.Error(w, "invalid api key", http.StatusUnauthorized)
					return
				}
			} else if subtle.ConstantTimeCompare([]byte(plainKey), []byte(got)) != 1 {
				http.Error(w, "invalid api key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// JWTMiddleware validates the Authorization bearer token. It is only mounted
// when a secret is configured.
func JWTMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing or invalid token", http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimPrefix(auth, "Bearer ")
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
