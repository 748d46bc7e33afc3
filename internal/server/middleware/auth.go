// Package middleware provides HTTP middleware for authentication.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonathan/sng-admin/internal/apperr"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const usernameKey ContextKey = "username"

// MissingTokenMessage is returned when no bearer token is sent.
const MissingTokenMessage = "Требуется авторизация"

// TokenValidator validates access tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (Principal, error)
}

// Principal is the authenticated subject of a token.
type Principal interface {
	Username() string
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the username in the request context.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parts := strings.Fields(r.Header.Get("Authorization"))
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w, MissingTokenMessage)
				return
			}

			principal, err := validator.ValidateToken(parts[1])
			if err != nil {
				message := "Недействительный токен доступа"
				var appErr *apperr.Error
				if errors.As(err, &appErr) && appErr.Message != "" {
					message = appErr.Message
				}
				unauthorized(w, message)
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, principal.Username())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// GetUsername extracts the authenticated username from the request context.
func GetUsername(r *http.Request) (string, error) {
	username, ok := r.Context().Value(usernameKey).(string)
	if !ok || username == "" {
		return "", fmt.Errorf("username not found in request context")
	}
	return username, nil
}

// WithUsername returns a copy of ctx carrying username.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}
