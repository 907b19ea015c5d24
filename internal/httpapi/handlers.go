package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/flowforge/dagflow/internal/domain"
)

type submitRequest struct {
	ExecutionID string                `json:"execution_id"`
	WorkflowID  string                `json:"workflow_id"`
	Definition  domain.WireDefinition `json:"definition"`
	InputData   map[string]any        `json:"input_data"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	// Callers may omit execution_id and let the server mint one (spec
	// §6 doesn't require the caller to generate it).
	if req.ExecutionID == "" {
		req.ExecutionID = uuid.NewString()
	}

	view, err := s.mgr.Submit(req.ExecutionID, req.WorkflowID, req.Definition.ToDefinition(), req.InputData)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, view)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	view, ok := s.mgr.GetStatus(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown execution")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	level := domain.LogLevel(r.URL.Query().Get("level"))
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	logs, ok := s.mgr.GetLogs(id, level, limit)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown execution")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"execution_id": id,
		"logs":         logs,
		"count":        len(logs),
	})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.mgr.Stop(id) {
		writeError(w, http.StatusNotFound, "unknown execution or not stoppable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"execution_id": id, "status": "stopped"})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.mgr.Pause(id) {
		writeError(w, http.StatusBadRequest, "execution is not running")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"execution_id": id, "status": "paused"})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.mgr.Resume(id) {
		writeError(w, http.StatusBadRequest, "execution is not paused")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"execution_id": id, "status": "running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleBanner(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"service": "dagflow", "docs": "/api/v1"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {detail: message} with the status the caller
// passes in.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}
