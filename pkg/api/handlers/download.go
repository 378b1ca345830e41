package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apiMiddleware "github.com/Gaganb-30/cloud-store/pkg/api/middleware"
	"github.com/Gaganb-30/cloud-store/pkg/download"
	"github.com/Gaganb-30/cloud-store/pkg/metadatastore"
	"github.com/Gaganb-30/cloud-store/pkg/storage"
)

// DownloadHandler exposes file metadata and byte streaming by share
// token, the surface anonymous and third-party recipients use.
type DownloadHandler struct {
	store    *metadatastore.Store
	download *download.Service
}

func NewDownloadHandler(store *metadatastore.Store, downloadService *download.Service) *DownloadHandler {
	return &DownloadHandler{store: store, download: downloadService}
}

func (h *DownloadHandler) resolveFileID(r *http.Request) (string, error) {
	token := chi.URLParam(r, "token")
	f, err := h.store.GetFileByShareToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, metadatastore.ErrNotFound) {
			return "", download.ErrNotFound
		}
		return "", err
	}
	return f.ID, nil
}

// Info handles GET /api/v1/share/{token}.
func (h *DownloadHandler) Info(w http.ResponseWriter, r *http.Request) {
	fileID, err := h.resolveFileID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	principal := apiMiddleware.GetPrincipal(r.Context())
	view, err := h.download.Info(r.Context(), fileID, principal)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, view)
}

// Download handles GET /api/v1/share/{token}/download, honoring an
// HTTP Range header for partial/resumable downloads.
func (h *DownloadHandler) Download(w http.ResponseWriter, r *http.Request) {
	fileID, err := h.resolveFileID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	principal := apiMiddleware.GetPrincipal(r.Context())
	clientIP := clientIPFromRequest(r)

	rng, err := parseRangeHeader(r.Header.Get("Range"))
	if err != nil {
		writeJSON(w, http.StatusRequestedRangeNotSatisfiable, nil)
		return
	}

	rc, size, err := h.download.Download(r.Context(), fileID, principal, clientIP, rng)
	if err != nil {
		writeError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Accept-Ranges", "bytes")
	if rng != nil {
		w.Header().Set("Content-Range", "bytes "+strconv.FormatInt(rng.Offset, 10)+"-"+
			strconv.FormatInt(rng.Offset+rng.Length-1, 10)+"/"+strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusPartialContent)
	} else {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}

	_, _ = io.Copy(w, rc)
}

func clientIPFromRequest(r *http.Request) string {
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host
}

// parseRangeHeader parses a single-range "bytes=start-end" header into
// a storage.Range. A missing header returns (nil, nil).
func parseRangeHeader(header string) (*storage.Range, error) {
	if header == "" {
		return nil, nil
	}
	if !strings.HasPrefix(header, "bytes=") {
		return nil, errInvalidRange
	}
	spec := strings.TrimPrefix(header, "bytes=")
	if strings.Contains(spec, ",") {
		return nil, errInvalidRange
	}

	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return nil, errInvalidRange
	}

	start, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, errInvalidRange
	}
	if parts[1] == "" {
		return &storage.Range{Offset: start, Length: -1}, nil
	}

	end, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || end < start {
		return nil, errInvalidRange
	}
	return &storage.Range{Offset: start, Length: end - start + 1}, nil
}

var errInvalidRange = errors.New("handlers: invalid range header")
