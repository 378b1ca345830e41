package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apiMiddleware "github.com/Gaganb-30/cloud-store/pkg/api/middleware"
	"github.com/Gaganb-30/cloud-store/pkg/files"
)

// FilesHandler exposes the owner-facing file and folder management
// surface backed by pkg/files.Service.
type FilesHandler struct {
	files *files.Service
}

func NewFilesHandler(service *files.Service) *FilesHandler {
	return &FilesHandler{files: service}
}

func queryFolderID(r *http.Request) *string {
	v := r.URL.Query().Get("folderId")
	if v == "" {
		return nil
	}
	return &v
}

// ListFiles handles GET /api/v1/files.
func (h *FilesHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	principal := apiMiddleware.GetPrincipal(r.Context())
	list, err := h.files.ListFiles(r.Context(), principal, queryFolderID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, list)
}

type renameRequest struct {
	Name string `json:"name"`
}

// RenameFile handles PATCH /api/v1/files/{fileID}.
func (h *FilesHandler) RenameFile(w http.ResponseWriter, r *http.Request) {
	principal := apiMiddleware.GetPrincipal(r.Context())
	var req renameRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	fileID := chi.URLParam(r, "fileID")
	if err := h.files.RenameFile(r.Context(), principal, fileID, req.Name); err != nil {
		writeError(w, err)
		return
	}
	writeNoContent(w)
}

type moveRequest struct {
	FolderID *string `json:"folderId"`
}

// MoveFile handles POST /api/v1/files/{fileID}/move.
func (h *FilesHandler) MoveFile(w http.ResponseWriter, r *http.Request) {
	principal := apiMiddleware.GetPrincipal(r.Context())
	var req moveRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	fileID := chi.URLParam(r, "fileID")
	if err := h.files.MoveFile(r.Context(), principal, fileID, req.FolderID); err != nil {
		writeError(w, err)
		return
	}
	writeNoContent(w)
}

// DeleteFile handles DELETE /api/v1/files/{fileID}.
func (h *FilesHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	principal := apiMiddleware.GetPrincipal(r.Context())
	fileID := chi.URLParam(r, "fileID")
	if err := h.files.DeleteFile(r.Context(), principal, fileID); err != nil {
		writeError(w, err)
		return
	}
	writeNoContent(w)
}

type createFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
}

// CreateFolder handles POST /api/v1/folders.
func (h *FilesHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	principal := apiMiddleware.GetPrincipal(r.Context())
	var req createFolderRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	folder, err := h.files.CreateFolder(r.Context(), principal, req.Name, req.ParentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCreated(w, folder)
}

// ListChildren handles GET /api/v1/folders.
func (h *FilesHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	principal := apiMiddleware.GetPrincipal(r.Context())
	children, err := h.files.ListChildren(r.Context(), principal, queryFolderID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, children)
}

// Tree handles GET /api/v1/folders/tree.
func (h *FilesHandler) Tree(w http.ResponseWriter, r *http.Request) {
	principal := apiMiddleware.GetPrincipal(r.Context())
	tree, err := h.files.Tree(r.Context(), principal)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, tree)
}

// RenameFolder handles PATCH /api/v1/folders/{folderID}.
func (h *FilesHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	principal := apiMiddleware.GetPrincipal(r.Context())
	var req renameRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	folderID := chi.URLParam(r, "folderID")
	if err := h.files.RenameFolder(r.Context(), principal, folderID, req.Name); err != nil {
		writeError(w, err)
		return
	}
	writeNoContent(w)
}

// MoveFolder handles POST /api/v1/folders/{folderID}/move.
func (h *FilesHandler) MoveFolder(w http.ResponseWriter, r *http.Request) {
	principal := apiMiddleware.GetPrincipal(r.Context())
	var req moveRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	folderID := chi.URLParam(r, "folderID")
	if err := h.files.MoveFolder(r.Context(), principal, folderID, req.FolderID); err != nil {
		writeError(w, err)
		return
	}
	writeNoContent(w)
}

// DeleteFolder handles DELETE /api/v1/folders/{folderID}.
func (h *FilesHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	principal := apiMiddleware.GetPrincipal(r.Context())
	folderID := chi.URLParam(r, "folderID")
	if err := h.files.DeleteFolder(r.Context(), principal, folderID); err != nil {
		writeError(w, err)
		return
	}
	writeNoContent(w)
}
