package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apiMiddleware "github.com/Gaganb-30/cloud-store/pkg/api/middleware"
	"github.com/Gaganb-30/cloud-store/pkg/model"
	"github.com/Gaganb-30/cloud-store/pkg/storage"
	"github.com/Gaganb-30/cloud-store/pkg/upload"
)

// UploadHandler exposes the proxied and direct upload session lifecycle.
type UploadHandler struct {
	manager *upload.Manager
}

func NewUploadHandler(manager *upload.Manager) *UploadHandler {
	return &UploadHandler{manager: manager}
}

type initUploadRequest struct {
	Filename string  `json:"filename"`
	Size     int64   `json:"size"`
	MimeType string  `json:"mimeType"`
	FolderID *string `json:"folderId,omitempty"`
}

func principalOrUnauthorized(w http.ResponseWriter, r *http.Request) (model.Principal, bool) {
	p := apiMiddleware.GetPrincipal(r.Context())
	if p == nil {
		writeAuthRequired(w)
		return model.Principal{}, false
	}
	return *p, true
}

// Init handles POST /api/v1/upload/init.
func (h *UploadHandler) Init(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req initUploadRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	result, err := h.manager.Init(r.Context(), principal, req.Filename, req.Size, req.MimeType, req.FolderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCreated(w, result)
}

// PutChunk handles PUT /api/v1/upload/{uploadID}/chunk/{index}.
func (h *UploadHandler) PutChunk(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOrUnauthorized(w, r)
	if !ok {
		return
	}

	sessionID := chi.URLParam(r, "uploadID")
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, nil)
		return
	}

	chunkHash := r.Header.Get("X-Chunk-Hash")

	if err := h.manager.PutChunk(r.Context(), principal.UserID, sessionID, index, r.Body, r.ContentLength, chunkHash); err != nil {
		writeError(w, err)
		return
	}
	writeNoContent(w)
}

// Status handles GET /api/v1/upload/{uploadID}/status.
func (h *UploadHandler) Status(w http.ResponseWriter, r *http.Request) {
	if _, ok := principalOrUnauthorized(w, r); !ok {
		return
	}

	sessionID := chi.URLParam(r, "uploadID")
	status, err := h.manager.Status(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, status)
}

// Complete handles POST /api/v1/upload/{uploadID}/complete.
func (h *UploadHandler) Complete(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOrUnauthorized(w, r)
	if !ok {
		return
	}

	sessionID := chi.URLParam(r, "uploadID")
	result, err := h.manager.Complete(r.Context(), principal.UserID, sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, result)
}

// Abort handles DELETE /api/v1/upload/{uploadID}.
func (h *UploadHandler) Abort(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOrUnauthorized(w, r)
	if !ok {
		return
	}

	sessionID := chi.URLParam(r, "uploadID")
	if err := h.manager.Abort(r.Context(), principal.UserID, sessionID); err != nil {
		writeError(w, err)
		return
	}
	writeNoContent(w)
}

// InitDirect handles POST /api/v1/upload/direct/init.
func (h *UploadHandler) InitDirect(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req initUploadRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	result, err := h.manager.InitDirect(r.Context(), principal, req.Filename, req.Size, req.MimeType, req.FolderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCreated(w, result)
}

type completeDirectRequest struct {
	Parts []storage.CompletedPart `json:"parts"`
}

// CompleteDirect handles POST /api/v1/upload/direct/{uploadID}/complete.
func (h *UploadHandler) CompleteDirect(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req completeDirectRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	sessionID := chi.URLParam(r, "uploadID")
	result, err := h.manager.CompleteDirect(r.Context(), principal.UserID, sessionID, req.Parts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, result)
}

// AbortDirect handles DELETE /api/v1/upload/direct/{uploadID}.
func (h *UploadHandler) AbortDirect(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOrUnauthorized(w, r)
	if !ok {
		return
	}

	sessionID := chi.URLParam(r, "uploadID")
	if err := h.manager.AbortDirect(r.Context(), principal.UserID, sessionID); err != nil {
		writeError(w, err)
		return
	}
	writeNoContent(w)
}
