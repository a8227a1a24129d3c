// Package server exposes the signing operations over a small HTTP API so
// browser-facing application servers can request grants without linking the
// signing code themselves.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/maxiofs/signer/internal/audit"
	"github.com/maxiofs/signer/internal/config"
	"github.com/maxiofs/signer/internal/metrics"
	"github.com/maxiofs/signer/internal/middleware"
	"github.com/maxiofs/signer/internal/store"
	"github.com/sirupsen/logrus"
)

// Server hosts the signing API
type Server struct {
	config     *config.Config
	httpServer *http.Server
	client     *store.Client
	metrics    *metrics.Manager
	auditStore *audit.Store
}

// New creates a signing API server
func New(cfg *config.Config) (*Server, error) {
	s := &Server{
		config:  cfg,
		client:  store.New(cfg.Store),
		metrics: metrics.NewManager(),
	}

	if cfg.Audit.Path != "" {
		auditStore, err := audit.NewStore(cfg.Audit.Path, logrus.StandardLogger())
		if err != nil {
			return nil, err
		}
		s.auditStore = auditStore
	}

	// Browsers fetch grants directly when app servers hand them the API URL,
	// so CORS stays permissive for the read-only surface.
	cors := handlers.CORS(
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	s.httpServer = &http.Server{
		Addr:         cfg.Listen,
		Handler:      handlers.RecoveryHandler()(cors(s.router())),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s, nil
}

func (s *Server) router() *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Tracing)
	router.Use(middleware.Logging())

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.config.Metrics.Enable {
		router.Handle(s.config.Metrics.Path, s.metrics.Handler()).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTAuth(s.config.Auth.JWTSecret))
	api.HandleFunc("/presign", s.handlePresign).Methods(http.MethodPost)
	api.HandleFunc("/post-policy", s.handlePostPolicy).Methods(http.MethodPost)
	api.HandleFunc("/object", s.handleDelete).Methods(http.MethodDelete)
	api.HandleFunc("/resolve", s.handleResolve).Methods(http.MethodPost)
	api.HandleFunc("/audit", s.handleAudit).Methods(http.MethodGet)

	return router
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	logrus.WithFields(logrus.Fields{
		"address": s.config.Listen,
		"bucket":  s.config.Store.Bucket,
		"region":  s.config.Store.Region,
	}).Info("Starting signing API")

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("Forced shutdown")
	}
	if s.auditStore != nil {
		s.auditStore.Close()
	}
	logrus.Info("Signing API stopped")
	return nil
}
