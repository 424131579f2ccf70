package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/logger"
)

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Query             string   `json:"query"`
	Database          string   `json:"database,omitempty"`
	K                 int      `json:"k,omitempty"`
	MinScore          *float64 `json:"min_score,omitempty"`
	RecreateIfMissing bool     `json:"recreate_if_missing,omitempty"`
}

// SearchResponse is the body returned by POST /api/search.
type SearchResponse struct {
	Results []domain.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

// PlanRequest is the body of POST /api/plan.
type PlanRequest struct {
	Query string `json:"query"`
}

// AskRequest is the body of POST /api/ask.
type AskRequest struct {
	Query   string            `json:"query"`
	History []domain.ChatTurn `json:"history,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.Database != "" && !domain.Table(req.Database).IsValid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown database %q", req.Database))
		return
	}

	results, err := s.ports.Search.Search(r.Context(), req.Query, domain.SearchOptions{
		Database:          req.Database,
		K:                 req.K,
		MinScore:          req.MinScore,
		RecreateIfMissing: req.RecreateIfMissing,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results, Count: len(results)})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	if s.ports.Planner == nil {
		writeError(w, http.StatusNotImplemented, "planner not configured")
		return
	}
	var req PlanRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	writeJSON(w, http.StatusOK, s.ports.Planner.Plan(r.Context(), req.Query))
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if s.ports.Assistant == nil {
		writeError(w, http.StatusNotImplemented, "assistant not configured")
		return
	}
	var req AskRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	answer, err := s.ports.Assistant.Ask(r.Context(), req.Query, req.History)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if answer.Results == nil {
		answer.Results = []domain.SearchResult{}
	}
	writeJSON(w, http.StatusOK, answer)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMissingCredential),
		errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrLLMUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Warn("request failed: %v", err)
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, errorResponse{Error: reason})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("writing response: %v", err)
	}
}
