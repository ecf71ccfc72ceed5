package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/juralis/juralis-core/internal/core/domain"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse represents a simple status response
type StatusResponse struct {
	Status string `json:"status"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports whether the backends behind the API answer.
// Degraded capabilities are not failures; only a dead task queue makes
// the service unready, everything else falls back gracefully.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.taskQueue != nil {
		if err := s.taskQueue.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "task queue unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Query endpoints

// handleQuery answers a natural-language legal question. The query
// service never errors on backend unavailability, so any error here is
// an input problem or a genuine internal failure.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req domain.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	answer, err := s.queryService.Answer(r.Context(), req)
	if err != nil {
		s.logger.Error("answer failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compose answer")
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

// handleSearch runs a semantic search with optional filters.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req domain.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	results, err := s.queryService.SearchRelevant(r.Context(), req.Query, req.Options())
	if err != nil {
		s.logger.Error("search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	hits := make([]domain.SearchHit, 0, len(results))
	for i := range results {
		hits = append(hits, results[i].Hit())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   req.Query,
		"count":   len(hits),
		"results": hits,
	})
}

// Source and ingestion endpoints

type sourceInfo struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Methods []string `json:"methods"`
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	connectors := s.registry.List()
	sources := make([]sourceInfo, 0, len(connectors))
	for _, c := range connectors {
		sources = append(sources, sourceInfo{
			ID:      c.ID(),
			Name:    c.Name(),
			Methods: c.Methods(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": sources})
}

type ingestResponse struct {
	TaskID string               `json:"task_id,omitempty"`
	Status string               `json:"status"`
	Run    *domain.IngestionRun `json:"run,omitempty"`
}

// handleIngestAll triggers ingestion of every registered source.
// With a task queue configured the work is enqueued for a worker;
// otherwise it runs inline and the response carries the run report.
func (s *Server) handleIngestAll(w http.ResponseWriter, r *http.Request) {
	if s.taskQueue != nil {
		task := domain.NewIngestAllTask()
		if err := s.taskQueue.Enqueue(r.Context(), task); err != nil {
			s.logger.Error("failed to enqueue ingestion", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to enqueue ingestion")
			return
		}
		writeJSON(w, http.StatusAccepted, ingestResponse{TaskID: task.ID, Status: "queued"})
		return
	}

	run, err := s.ingestion.Run(r.Context(), nil)
	if err != nil {
		s.logger.Error("ingestion failed", "error", err)
		writeError(w, http.StatusInternalServerError, "ingestion failed")
		return
	}
	writeJSON(w, http.StatusOK, ingestResponse{Status: "completed", Run: run})
}

type ingestSourceRequest struct {
	Method string            `json:"method,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

func (s *Server) handleIngestSource(w http.ResponseWriter, r *http.Request) {
	sourceID := r.PathValue("id")

	var req ingestSourceRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if _, err := s.registry.Get(sourceID); err != nil {
		writeError(w, http.StatusNotFound, "unknown source")
		return
	}

	if s.taskQueue != nil {
		task := domain.NewIngestSourceTask(sourceID, req.Method)
		for k, v := range req.Params {
			task.Payload[k] = v
		}
		if err := s.taskQueue.Enqueue(r.Context(), task); err != nil {
			s.logger.Error("failed to enqueue ingestion", "source", sourceID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to enqueue ingestion")
			return
		}
		writeJSON(w, http.StatusAccepted, ingestResponse{TaskID: task.ID, Status: "queued"})
		return
	}

	run, err := s.ingestion.RunSource(r.Context(), sourceID, req.Method, req.Params)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownSource):
			writeError(w, http.StatusNotFound, "unknown source")
		case errors.Is(err, domain.ErrUnknownMethod):
			writeError(w, http.StatusBadRequest, "unknown extraction method")
		default:
			s.logger.Error("ingestion failed", "source", sourceID, "error", err)
			writeError(w, http.StatusInternalServerError, "ingestion failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, ingestResponse{Status: "completed", Run: run})
}

// Capability status

type statusResponse struct {
	VectorBackend  string `json:"vector_backend"`
	SemanticSearch bool   `json:"semantic_search"`
	Embedding      bool   `json:"embedding"`
	LLM            bool   `json:"llm"`
	Index          bool   `json:"index"`
}

// handleStatus exposes the runtime capability flags so operators can
// tell a degraded deployment from a broken one.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cfg := s.services.Config()
	writeJSON(w, http.StatusOK, statusResponse{
		VectorBackend:  cfg.VectorBackend,
		SemanticSearch: cfg.CanDoSemanticSearch(),
		Embedding:      cfg.EmbeddingAvailable(),
		LLM:            cfg.LLMAvailable(),
		Index:          cfg.IndexAvailable(),
	})
}

// Helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
