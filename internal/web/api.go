package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/nlemesios/smenos/internal/task"
)

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"version": s.version,
		"uptime":  time.Since(s.startedAt).Round(time.Second).String(),
		"agents":  s.registry.Len(),
	}
	if s.store != nil {
		if n, err := s.store.CountEvents(); err == nil {
			status["events"] = n
		}
	}
	jsonResponse(w, status)
}

func (s *Server) listAgents(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]any{
		"types":   s.registry.Types(),
		"metrics": s.registry.Snapshot(),
	})
}

func (s *Server) getMetrics(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, s.coord.Metrics())
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			jsonError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	jsonResponse(w, s.coord.History(limit))
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, "event store disabled", http.StatusNotFound)
		return
	}

	if swarmID := r.URL.Query().Get("swarm_id"); swarmID != "" {
		events, err := s.store.ListEvents(swarmID)
		if err != nil {
			jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		jsonResponse(w, events)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			jsonError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	events, err := s.store.RecentEvents(limit)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, events)
}

type swarmRequest struct {
	Task       task.Payload `json:"task"`
	AgentTypes []string     `json:"agent_types"`
}

func (s *Server) executeSwarm(w http.ResponseWriter, r *http.Request) {
	var req swarmRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.AgentTypes) == 0 {
		jsonError(w, "agent_types is required", http.StatusBadRequest)
		return
	}

	result, err := s.coord.ExecuteSwarm(r.Context(), req.Task, req.AgentTypes)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	jsonResponse(w, result)
}

func (s *Server) executeTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Task task.Payload `json:"task"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	outcome, err := s.coord.ExecuteTask(r.Context(), req.Task)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	jsonResponse(w, outcome)
}
