// Package auth guards HTTP handlers with HTTP Basic authentication.
package auth

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
)

// User represents an authenticated user
type User struct {
	Username string
	Roles    []string
}

// BasicAuthUser is a user allowed through the Basic middleware
type BasicAuthUser struct {
	Username string
	Password string
	User     User
}

// NewBasicAuthUser creates a BasicAuthUser with the provided details
func NewBasicAuthUser(username, password string, roles ...string) BasicAuthUser {
	return BasicAuthUser{
		Username: username,
		Password: password,
		User: User{
			Username: username,
			Roles:    roles,
		},
	}
}

// Authenticator checks a username and password pair
type Authenticator struct {
	users map[string]BasicAuthUser
}

// NewAuthenticator creates an authenticator over the given users
func NewAuthenticator(users ...BasicAuthUser) *Authenticator {
	a := &Authenticator{users: make(map[string]BasicAuthUser, len(users))}
	for _, u := range users {
		a.users[u.Username] = u
	}
	return a
}

// Authenticate returns the user matching the credentials
func (a *Authenticator) Authenticate(username, password string) (*User, error) {
	user, exists := a.users[username]
	if !exists {
		return nil, fmt.Errorf("user %q not found", username)
	}

	// Use constant time comparison to prevent timing attacks
	if subtle.ConstantTimeCompare([]byte(password), []byte(user.Password)) != 1 {
		return nil, fmt.Errorf("invalid password for user %q", username)
	}
	return &user.User, nil
}

// Basic returns middleware that rejects requests without valid credentials
// with 401 and stores the authenticated user in the request context.
// A nil authenticator disables the check.
func Basic(a *Authenticator, realm string, logger *slog.Logger) func(http.Handler) http.Handler {
	if a == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w, realm)
				return
			}

			user, err := a.Authenticate(username, password)
			if err != nil {
				logger.WarnContext(r.Context(), "authentication failed",
					slog.String("path", r.URL.Path),
					slog.Any("error", err))
				unauthorized(w, realm)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func unauthorized(w http.ResponseWriter, realm string) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q, charset=\"UTF-8\"", realm))
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
