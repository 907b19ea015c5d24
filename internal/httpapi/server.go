// Package httpapi implements the HTTP surface of spec §6, grounded on
// the teacher's internal/infrastructure/api/rest/server.go (Go 1.22
// http.ServeMux method-pattern routing), generalized from slog-based
// access logging to zerolog.
package httpapi

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/flowforge/dagflow/internal/manager"
)

type Server struct {
	mgr    *manager.Manager
	logger zerolog.Logger
	mux    *http.ServeMux
}

func NewServer(mgr *manager.Manager, logger zerolog.Logger) *Server {
	s := &Server{mgr: mgr, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/v1/execute", s.handleSubmit)
	s.mux.HandleFunc("GET /api/v1/execute/{id}/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/v1/execute/{id}/logs", s.handleLogs)
	s.mux.HandleFunc("POST /api/v1/execute/{id}/stop", s.handleStop)
	s.mux.HandleFunc("POST /api/v1/execute/{id}/pause", s.handlePause)
	s.mux.HandleFunc("POST /api/v1/execute/{id}/resume", s.handleResume)
	s.mux.HandleFunc("GET /api/v1/execute/{id}/stream", s.handleStream)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /", s.handleBanner)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Info().Str("method", r.Method).Str("path", r.URL.Path).Msg("http request")
	s.mux.ServeHTTP(w, r)
}
