package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Gaganb-30/cloud-store/internal/auth"
	"github.com/Gaganb-30/cloud-store/internal/logger"
	"github.com/Gaganb-30/cloud-store/pkg/admin"
	"github.com/Gaganb-30/cloud-store/pkg/api/handlers"
	apiMiddleware "github.com/Gaganb-30/cloud-store/pkg/api/middleware"
	"github.com/Gaganb-30/cloud-store/pkg/download"
	"github.com/Gaganb-30/cloud-store/pkg/files"
	"github.com/Gaganb-30/cloud-store/pkg/metadatastore"
	"github.com/Gaganb-30/cloud-store/pkg/ratelimit"
	"github.com/Gaganb-30/cloud-store/pkg/upload"
)

// Dependencies bundles the service layer NewRouter wires into handlers.
type Dependencies struct {
	Store      *metadatastore.Store
	JWTService *auth.JWTService
	Upload     *upload.Manager
	Download   *download.Service
	Files      *files.Service
	Admin      *admin.Service
	Limiter    *ratelimit.Limiter
}

// NewRouter builds the chi router: request tracking, structured
// logging, panic recovery and request timeout, followed by the health
// routes and the authenticated API surface.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	healthHandler := handlers.NewHealthHandler(deps.Store)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	uploadHandler := handlers.NewUploadHandler(deps.Upload)
	downloadHandler := handlers.NewDownloadHandler(deps.Store, deps.Download)
	filesHandler := handlers.NewFilesHandler(deps.Files)
	adminHandler := handlers.NewAdminHandler(deps.Admin)

	r.Route("/api/v1", func(r chi.Router) {
		// Downloads and share metadata are reachable by anonymous share
		// links, so auth here is optional rather than required.
		r.Group(func(r chi.Router) {
			r.Use(apiMiddleware.OptionalJWTAuth(deps.JWTService))
			r.Use(apiMiddleware.RateLimit(deps.Limiter, ratelimit.ActionDownload))
			r.Get("/share/{token}", downloadHandler.Info)
			r.Get("/share/{token}/download", downloadHandler.Download)
		})

		r.Group(func(r chi.Router) {
			r.Use(apiMiddleware.JWTAuth(deps.JWTService))

			r.Route("/upload", func(r chi.Router) {
				r.Use(apiMiddleware.RateLimit(deps.Limiter, ratelimit.ActionUpload))
				r.Post("/init", uploadHandler.Init)
				r.Put("/{uploadID}/chunk/{index}", uploadHandler.PutChunk)
				r.Get("/{uploadID}/status", uploadHandler.Status)
				r.Post("/{uploadID}/complete", uploadHandler.Complete)
				r.Delete("/{uploadID}", uploadHandler.Abort)

				r.Post("/direct/init", uploadHandler.InitDirect)
				r.Post("/direct/{uploadID}/complete", uploadHandler.CompleteDirect)
				r.Delete("/direct/{uploadID}", uploadHandler.AbortDirect)
			})

			r.Route("/files", func(r chi.Router) {
				r.Get("/", filesHandler.ListFiles)
				r.Patch("/{fileID}", filesHandler.RenameFile)
				r.Post("/{fileID}/move", filesHandler.MoveFile)
				r.Delete("/{fileID}", filesHandler.DeleteFile)
			})

			r.Route("/folders", func(r chi.Router) {
				r.Post("/", filesHandler.CreateFolder)
				r.Get("/", filesHandler.ListChildren)
				r.Get("/tree", filesHandler.Tree)
				r.Patch("/{folderID}", filesHandler.RenameFolder)
				r.Post("/{folderID}/move", filesHandler.MoveFolder)
				r.Delete("/{folderID}", filesHandler.DeleteFolder)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(apiMiddleware.RequireAdmin())
				r.Post("/users/{userID}/promote", adminHandler.Promote)
				r.Post("/users/{userID}/demote", adminHandler.Demote)
				r.Post("/users/{userID}/block", adminHandler.Block)
				r.Post("/users/{userID}/restrict", adminHandler.Restrict)
				r.Post("/users/{userID}/unblock", adminHandler.Unblock)
				r.Post("/files/bulk-delete", adminHandler.BulkDelete)
				r.Post("/files/{fileID}/migrate", adminHandler.ForceMigrate)
				r.Post("/files/{fileID}/expiry", adminHandler.SetExpiry)
			})
		})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Info("API request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		)
	})
}
