package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/maxiofs/signer/internal/audit"
	"github.com/maxiofs/signer/internal/metrics"
	"github.com/maxiofs/signer/internal/middleware"
	"github.com/maxiofs/signer/internal/store"
	"github.com/sirupsen/logrus"
)

// APIResponse is the envelope for every API reply
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type presignRequest struct {
	Path           string `json:"path"`
	ExpiresSeconds int64  `json:"expires_seconds"`
}

type presignResponse struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expires_in"`
}

type postPolicyRequest struct {
	Prefix string `json:"prefix"`
}

type resolveRequest struct {
	URL string `json:"url"`
}

type resolveResponse struct {
	Matched bool   `json:"matched"`
	Path    string `json:"path,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handlePresign(w http.ResponseWriter, r *http.Request) {
	var req presignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ExpiresSeconds <= 0 {
		req.ExpiresSeconds = 3600
	}

	start := time.Now()
	expires := time.Duration(req.ExpiresSeconds) * time.Second
	signed, err := s.client.Presign(req.Path, expires)
	s.metrics.RecordOperation(metrics.OpPresign, err)
	s.metrics.ObserveDuration(time.Since(start).Seconds())
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, store.ErrNoCredentials) {
			status = http.StatusServiceUnavailable
		}
		s.writeError(w, err.Error(), status)
		return
	}

	s.recordAudit(r, audit.Event{
		EventType: audit.EventPresignIssued,
		ObjectKey: req.Path,
		ExpiresAt: time.Now().Add(expires),
	})
	s.writeJSON(w, presignResponse{URL: signed, ExpiresIn: req.ExpiresSeconds})
}

func (s *Server) handlePostPolicy(w http.ResponseWriter, r *http.Request) {
	var req postPolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	start := time.Now()
	grant, ok := s.client.PostPolicy(req.Prefix)
	if !ok {
		// Disabled feature, not an error: no secret key is configured.
		s.metrics.RecordOperation(metrics.OpPostPolicy, store.ErrNoCredentials)
		s.writeError(w, "browser uploads are disabled: no signing credentials configured", http.StatusServiceUnavailable)
		return
	}
	s.metrics.RecordOperation(metrics.OpPostPolicy, nil)
	s.metrics.ObserveDuration(time.Since(start).Seconds())

	s.recordAudit(r, audit.Event{
		EventType: audit.EventPostPolicyIssued,
		ObjectKey: req.Prefix,
		ExpiresAt: time.Now().Add(5 * time.Minute),
	})
	s.writeJSON(w, grant)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		s.writeError(w, "path query parameter is required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	err := s.client.Delete(r.Context(), path)
	s.metrics.RecordOperation(metrics.OpDelete, err)
	s.metrics.ObserveDuration(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, store.ErrNoCredentials) {
			s.writeError(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		s.writeError(w, err.Error(), http.StatusBadGateway)
		return
	}

	s.recordAudit(r, audit.Event{
		EventType: audit.EventObjectDeleted,
		ObjectKey: path,
	})
	s.writeJSON(w, map[string]string{"deleted": path})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	path, ok := store.ObjectPath(req.URL)
	s.metrics.RecordOperation(metrics.OpResolve, nil)
	s.writeJSON(w, resolveResponse{Matched: ok, Path: path})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if s.auditStore == nil {
		s.writeError(w, "audit trail is not configured", http.StatusNotFound)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	events, err := s.auditStore.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, events)
}

func (s *Server) recordAudit(r *http.Request, event audit.Event) {
	if s.auditStore == nil {
		return
	}
	event.TraceID = middleware.TraceIDFromContext(r.Context())
	s.auditStore.Record(r.Context(), event)
}

// Helper methods
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data})
}

func (s *Server) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(APIResponse{Success: false, Error: message})
	logrus.WithField("error", message).WithField("status", statusCode).Warn("API error")
}
