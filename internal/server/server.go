// Package server owns the gateway's HTTP listener and routing table.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/partnerdash/gateway/internal/proxy"
)

// Config contains server configuration
type Config struct {
	// HTTPPort is the port to listen on
	HTTPPort int

	// ProxyHandler serves /api/proxy/{...path}
	ProxyHandler *proxy.Handler

	// SyncHandler serves POST /api/auth/sync-user
	SyncHandler http.Handler

	// Logger is optional; defaults to the standard logger
	Logger *logrus.Logger
}

// Server manages the gateway's HTTP server
type Server struct {
	httpServer *http.Server
	httpPort   int
	logger     *logrus.Logger
}

// New creates a server with its routes mounted
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	router := NewRouter(cfg.ProxyHandler, cfg.SyncHandler, logger)

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler: router,
		},
		httpPort: cfg.HTTPPort,
		logger:   logger,
	}
}

// NewRouter builds the gateway's routing table.
// Proxy paths are deliberately NOT cleaned before validation: a traversal
// sequence must reach the validator and be rejected, not be normalized away.
func NewRouter(proxyHandler *proxy.Handler, syncHandler http.Handler, logger *logrus.Logger) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(logger))

	proxyHandler.Register(router)

	if syncHandler != nil {
		router.Method(http.MethodPost, "/api/auth/sync-user", syncHandler)
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	go func() {
		s.logger.WithField("port", s.httpPort).Info("HTTP server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("HTTP server error")
		}
	}()
	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// requestLogger logs one line per completed request
func requestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"duration": time.Since(start).String(),
			}).Info("request completed")
		})
	}
}
