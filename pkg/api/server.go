package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Gaganb-30/cloud-store/internal/logger"
	"github.com/Gaganb-30/cloud-store/pkg/config"
)

// Server runs FileVault's HTTP API. It is created stopped; call Start
// to begin serving requests.
type Server struct {
	server          *http.Server
	shutdownTimeout time.Duration
	shutdownOnce    sync.Once
}

// NewServer builds the router from deps and wraps it in an
// *http.Server configured from cfg.
func NewServer(cfg config.ServerConfig, deps Dependencies) *Server {
	router := NewRouter(deps)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
		IdleTimeout:  cfg.RequestTimeout * 2,
	}

	return &Server{
		server:          httpServer,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Start serves requests until ctx is cancelled, then shuts down
// gracefully within the server's configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("API server shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("API server failed: %w", err)
	}
}

// Stop shuts the server down gracefully. Safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("API server shutdown initiated")
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("API server shutdown error: %w", err)
			logger.Error("API server shutdown error", "error", err)
		} else {
			logger.Info("API server stopped gracefully")
		}
	})
	return shutdownErr
}
