package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Gaganb-30/cloud-store/pkg/metadatastore"
)

const healthCheckTimeout = 5 * time.Second

// HealthHandler serves the unauthenticated liveness/readiness probes.
type HealthHandler struct {
	store *metadatastore.Store
}

func NewHealthHandler(store *metadatastore.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Liveness always reports the process is running.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive", "service": "filevault"})
}

// Readiness reports whether the metadata store is reachable.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.store.Healthcheck(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
