package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Gaganb-30/cloud-store/pkg/metadatastore"
)

func newTestStore(t *testing.T) *metadatastore.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "health_test.db")

	store, err := metadatastore.New(context.Background(), metadatastore.Config{
		Driver: metadatastore.DriverSQLite,
		Path:   dbPath,
	})
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLiveness_AlwaysReturnsOK(t *testing.T) {
	handler := NewHealthHandler(nil)
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	handler.Liveness(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp envelope
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("expected Data to be a map, got %T", resp.Data)
	}
	if data["status"] != "alive" {
		t.Errorf("expected status 'alive', got %q", data["status"])
	}
}

func TestReadiness_HealthyStore_ReturnsOK(t *testing.T) {
	store := newTestStore(t)
	handler := NewHealthHandler(store)
	req := httptest.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestReadiness_ClosedStore_ReturnsServiceUnavailable(t *testing.T) {
	store := newTestStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	handler := NewHealthHandler(store)
	req := httptest.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
}
