// Package http exposes sessions over a JSON HTTP API and provides an Executor that
// forwards directives to a remote kernel gateway.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/sparkbridge"
	"github.com/aretw0/sparkbridge/internal/logging"
	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/aretw0/sparkbridge/pkg/magic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Sessions is the session registry served by the API (see session.Manager).
type Sessions interface {
	Create(ctx context.Context, sessionID string) (*sparkbridge.Kernel, error)
	Execute(ctx context.Context, sessionID, code string, silent bool) (domain.DispatchResult, error)
	Shutdown(ctx context.Context, sessionID string, restart bool) error
	Inspect(ctx context.Context, sessionID string) (*domain.Snapshot, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
}

// Server holds the HTTP handlers.
type Server struct {
	Sessions Sessions
	logger   *slog.Logger
	metrics  http.Handler
}

// HandlerOption configures the handler.
type HandlerOption func(*Server)

// WithLogger sets the logger for request errors.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h (typically promhttp.Handler) at /metrics.
func WithMetrics(h http.Handler) HandlerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// ExecuteRequest is the body of POST /sessions/{id}/execute.
type ExecuteRequest struct {
	Code   string `json:"code"`
	Silent bool   `json:"silent"`
}

// ExecuteResponse is returned by POST /sessions/{id}/execute.
type ExecuteResponse struct {
	Result domain.DispatchResult `json:"result"`
}

// CreateRequest is the optional body of POST /sessions.
type CreateRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

// ShutdownRequest is the optional body of POST /sessions/{id}/shutdown.
type ShutdownRequest struct {
	Restart bool `json:"restart"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error  string                 `json:"error"`
	Code   string                 `json:"code"`
	Result *domain.DispatchResult `json:"result,omitempty"`
}

// NewHandler creates a new HTTP handler for the session registry.
func NewHandler(sessions Sessions, opts ...HandlerOption) http.Handler {
	s := &Server{
		Sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.Health)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/execute", s.Execute)
			r.Post("/shutdown", s.Shutdown)
		})
	})
	return r
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": sparkbridge.Version,
	})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body CreateRequest
	if !decodeOptional(w, r, &body) {
		return
	}

	kernel, err := s.Sessions.Create(r.Context(), body.SessionID)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, kernel.Snapshot())
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Sessions.Inspect(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Execute handles POST /sessions/{id}/execute.
func (s *Server) Execute(w http.ResponseWriter, r *http.Request) {
	var body ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: "bad_request"})
		return
	}

	code, err := magic.SanitizeCode(body.Code)
	if err != nil {
		s.logger.Warn("Execute: code rejected", "err", err, "size", len(body.Code))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "invalid_code"})
		return
	}

	result, err := s.Sessions.Execute(r.Context(), chi.URLParam(r, "id"), code, body.Silent)
	if err != nil {
		s.fail(w, r, err, &result)
		return
	}
	writeJSON(w, http.StatusOK, ExecuteResponse{Result: result})
}

// Shutdown handles POST /sessions/{id}/shutdown.
func (s *Server) Shutdown(w http.ResponseWriter, r *http.Request) {
	var body ShutdownRequest
	if !decodeOptional(w, r, &body) {
		return
	}

	if err := s.Sessions.Shutdown(r.Context(), chi.URLParam(r, "id"), body.Restart); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, result *domain.DispatchResult) {
	resp := ErrorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		status, resp.Code = http.StatusNotFound, "session_not_found"
	case errors.Is(err, domain.ErrSessionExists):
		status, resp.Code = http.StatusConflict, "session_exists"
	case errors.Is(err, domain.ErrSessionFaulted):
		status, resp.Code = http.StatusConflict, "session_faulted"
	case errors.Is(err, domain.ErrMissingConfiguration):
		status, resp.Code = http.StatusPreconditionFailed, "missing_configuration"
	case errors.Is(err, domain.ErrDirectiveFailed):
		status, resp.Code = http.StatusUnprocessableEntity, "directive_failed"
		resp.Result = result
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, resp.Code = http.StatusServiceUnavailable, "interrupted"
	default:
		resp.Code = "internal"
		s.logger.Error("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"err", err,
		)
	}
	writeJSON(w, status, resp)
}

// decodeOptional decodes a JSON body if one was sent. It writes the error reply
// and returns false on malformed input.
func decodeOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: "bad_request"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
