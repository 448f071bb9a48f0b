package auth_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xenai/xenai-server/internal/auth"
)

const (
	testJWTSecret     = "unit-test-jwt-secret"
	testInternalToken = "unit-test-internal-token"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerateValidateToken(t *testing.T) {
	token, err := auth.GenerateToken(42, "user@example.com", testJWTSecret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := auth.ValidateToken(token, testJWTSecret)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := auth.GenerateToken(42, "", testJWTSecret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := auth.ValidateToken(token, "other-secret"); err == nil {
		t.Error("ValidateToken() with wrong secret succeeded")
	}
}

func TestRequireAuth(t *testing.T) {
	m := auth.NewMiddleware(testJWTSecret, testInternalToken, discardLogger())

	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok || claims.UserID != 42 {
			t.Errorf("ClaimsFromContext() = %v, %v", claims, ok)
		}
		w.WriteHeader(http.StatusOK)
	})

	token, err := auth.GenerateToken(42, "", testJWTSecret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/config/ai-models", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireInternalToken(t *testing.T) {
	m := auth.NewMiddleware(testJWTSecret, testInternalToken, discardLogger())

	handler := m.RequireInternalToken(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"valid token", testInternalToken, http.StatusOK},
		{"missing token", "", http.StatusForbidden},
		{"wrong token", "wrong", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/config/internal/ai-model/default", nil)
			if tt.token != "" {
				r.Header.Set(auth.InternalTokenHeader, tt.token)
			}
			w := httptest.NewRecorder()

			handler(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
