package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gaganb-30/cloud-store/internal/auth"
	"github.com/Gaganb-30/cloud-store/pkg/model"
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

func tokenFor(t *testing.T, svc *auth.JWTService, role model.Role) string {
	t.Helper()
	pair, err := svc.GenerateTokenPair(&model.User{
		ID:     "usr_1",
		Role:   role,
		Status: model.StatusActive,
	})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return pair.AccessToken
}

func TestJWTAuth_MissingHeader_Returns401(t *testing.T) {
	svc := newTestJWTService(t)
	var called bool
	handler := JWTAuth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("GET", "/files", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if called {
		t.Error("next handler should not run without a token")
	}
}

func TestJWTAuth_ValidToken_SetsPrincipalAndCallsNext(t *testing.T) {
	svc := newTestJWTService(t)
	token := tokenFor(t, svc, model.RoleFree)

	var principal *model.Principal
	handler := JWTAuth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal = GetPrincipal(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/files", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if principal == nil {
		t.Fatal("expected a principal in the request context")
	}
	if principal.UserID != "usr_1" || principal.Role != model.RoleFree {
		t.Errorf("unexpected principal: %+v", principal)
	}
}

func TestJWTAuth_InvalidToken_Returns401(t *testing.T) {
	svc := newTestJWTService(t)

	handler := JWTAuth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/files", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestOptionalJWTAuth_MissingToken_CallsNextWithoutPrincipal(t *testing.T) {
	svc := newTestJWTService(t)

	var principal *model.Principal
	handler := OptionalJWTAuth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal = GetPrincipal(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/shares/abc", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if principal != nil {
		t.Error("expected no principal for an anonymous request")
	}
}

func TestRequireAdmin_NonAdminPrincipal_Returns403(t *testing.T) {
	svc := newTestJWTService(t)
	token := tokenFor(t, svc, model.RoleFree)

	handler := JWTAuth(svc)(RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest("POST", "/admin/promote", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestRequireAdmin_AdminPrincipal_CallsNext(t *testing.T) {
	svc := newTestJWTService(t)
	token := tokenFor(t, svc, model.RoleAdmin)

	handler := JWTAuth(svc)(RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest("POST", "/admin/promote", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestRateLimit_NilLimiter_AlwaysAllows(t *testing.T) {
	handler := RateLimit(nil, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/upload", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
