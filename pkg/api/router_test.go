package api

import (
	"net/http/httptest"
	"testing"

	"github.com/Gaganb-30/cloud-store/internal/auth"
)

func newTestJWTService(t *testing.T) *auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(auth.JWTConfig{
		Secret: "test-secret-at-least-32-characters-long",
	})
	if err != nil {
		t.Fatalf("failed to build JWT service: %v", err)
	}
	return svc
}

func TestNewRouter_HealthIsUnauthenticated(t *testing.T) {
	router := NewRouter(Dependencies{JWTService: newTestJWTService(t)})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Errorf("expected /health to be reachable without auth, got %d", w.Code)
	}
}

func TestNewRouter_ProtectedRouteRequiresAuth(t *testing.T) {
	router := NewRouter(Dependencies{JWTService: newTestJWTService(t)})

	req := httptest.NewRequest("GET", "/api/v1/files", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != 401 {
		t.Errorf("expected 401 for an unauthenticated protected route, got %d", w.Code)
	}
}

func TestNewRouter_RootRedirectsToHealth(t *testing.T) {
	router := NewRouter(Dependencies{JWTService: newTestJWTService(t)})

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != 307 {
		t.Errorf("expected 307 redirect, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/health" {
		t.Errorf("expected redirect to /health, got %q", loc)
	}
}
