package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAuthenticate(t *testing.T) {
	a := NewAuthenticator(
		NewBasicAuthUser("admin", "password123", "admin"),
		NewBasicAuthUser("user", "userpass"),
	)

	user, err := a.Authenticate("admin", "password123")
	if err != nil {
		t.Fatalf("Expected successful authentication, got error: %v", err)
	}
	if user.Username != "admin" {
		t.Errorf("Expected username 'admin', got '%s'", user.Username)
	}
	if len(user.Roles) != 1 || user.Roles[0] != "admin" {
		t.Errorf("Expected roles [admin], got %v", user.Roles)
	}

	if _, err := a.Authenticate("nonexistent", "password123"); err == nil {
		t.Error("Expected authentication to fail for non-existent user")
	}
	if _, err := a.Authenticate("admin", "wrongpassword"); err == nil {
		t.Error("Expected authentication to fail for wrong password")
	}
}

func TestBasicMiddleware(t *testing.T) {
	a := NewAuthenticator(NewBasicAuthUser("admin", "secret"))
	handler := Basic(a, "tables", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok {
			t.Error("Expected user in context")
			return
		}
		w.Write([]byte(user.Username))
	}))

	tests := []struct {
		name       string
		user, pass string
		setAuth    bool
		wantStatus int
	}{
		{"no credentials", "", "", false, http.StatusUnauthorized},
		{"wrong password", "admin", "nope", true, http.StatusUnauthorized},
		{"valid", "admin", "secret", true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tables/", nil)
			if tt.setAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if !strings.HasPrefix(w.Header().Get("WWW-Authenticate"), "Basic realm=\"tables\"") {
					t.Errorf("Expected Basic challenge, got %q", w.Header().Get("WWW-Authenticate"))
				}
				return
			}
			if w.Body.String() != "admin" {
				t.Errorf("Expected body admin, got %q", w.Body.String())
			}
		})
	}
}

func TestBasicMiddlewareDisabled(t *testing.T) {
	called := false
	handler := Basic(nil, "tables", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if IsAuthenticated(r.Context()) {
			t.Error("Expected no user without authenticator")
		}
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("Expected request to pass through")
	}
}
