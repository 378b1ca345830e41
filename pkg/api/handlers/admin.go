package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Gaganb-30/cloud-store/pkg/admin"
	"github.com/Gaganb-30/cloud-store/pkg/storage"
)

// AdminHandler exposes the privileged account and file operations of
// pkg/admin.Service. Every route is mounted behind RequireAdmin.
type AdminHandler struct {
	admin *admin.Service
}

func NewAdminHandler(service *admin.Service) *AdminHandler {
	return &AdminHandler{admin: service}
}

type promoteRequest struct {
	DurationMonths *int `json:"durationMonths,omitempty"`
}

// Promote handles POST /api/v1/admin/users/{userID}/promote.
func (h *AdminHandler) Promote(w http.ResponseWriter, r *http.Request) {
	var req promoteRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	userID := chi.URLParam(r, "userID")
	if err := h.admin.Promote(r.Context(), userID, req.DurationMonths); err != nil {
		writeError(w, err)
		return
	}
	writeNoContent(w)
}

// Demote handles POST /api/v1/admin/users/{userID}/demote.
func (h *AdminHandler) Demote(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := h.admin.Demote(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	writeNoContent(w)
}

// Block handles POST /api/v1/admin/users/{userID}/block.
func (h *AdminHandler) Block(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := h.admin.Block(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	writeNoContent(w)
}

// Restrict handles POST /api/v1/admin/users/{userID}/restrict.
func (h *AdminHandler) Restrict(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := h.admin.Restrict(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	writeNoContent(w)
}

// Unblock handles POST /api/v1/admin/users/{userID}/unblock.
func (h *AdminHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := h.admin.Unblock(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	writeNoContent(w)
}

type bulkDeleteRequest struct {
	FileIDs []string `json:"fileIds"`
}

// BulkDelete handles POST /api/v1/admin/files/bulk-delete.
func (h *AdminHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	result, err := h.admin.BulkDelete(r.Context(), req.FileIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, result)
}

type migrateRequest struct {
	Tier storage.Tier `json:"tier"`
}

// ForceMigrate handles POST /api/v1/admin/files/{fileID}/migrate.
func (h *AdminHandler) ForceMigrate(w http.ResponseWriter, r *http.Request) {
	var req migrateRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	fileID := chi.URLParam(r, "fileID")
	if err := h.admin.ForceMigrate(r.Context(), fileID, req.Tier); err != nil {
		writeError(w, err)
		return
	}
	writeNoContent(w)
}

type setExpiryRequest struct {
	ExpiresAt *time.Time `json:"expiresAt"`
}

// SetExpiry handles POST /api/v1/admin/files/{fileID}/expiry.
func (h *AdminHandler) SetExpiry(w http.ResponseWriter, r *http.Request) {
	var req setExpiryRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	fileID := chi.URLParam(r, "fileID")
	if err := h.admin.SetExpiry(r.Context(), fileID, req.ExpiresAt); err != nil {
		writeError(w, err)
		return
	}
	writeNoContent(w)
}
