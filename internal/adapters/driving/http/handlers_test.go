package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/juralis/juralis-core/internal/adapters/driven/connectors"
	"github.com/juralis/juralis-core/internal/core/domain"
	"github.com/juralis/juralis-core/internal/core/ports/driven"
	"github.com/juralis/juralis-core/internal/core/ports/driven/mocks"
	"github.com/juralis/juralis-core/internal/runtime"
)

// stubQueryService implements driving.QueryService for handler tests
type stubQueryService struct {
	searchFn func(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
	answerFn func(ctx context.Context, req domain.QueryRequest) (*domain.LegalAnswer, error)
}

func (s *stubQueryService) SearchRelevant(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	if s.searchFn != nil {
		return s.searchFn(ctx, query, opts)
	}
	return []domain.SearchResult{}, nil
}

func (s *stubQueryService) Answer(ctx context.Context, req domain.QueryRequest) (*domain.LegalAnswer, error) {
	if s.answerFn != nil {
		return s.answerFn(ctx, req)
	}
	return domain.DegradedAnswer(), nil
}

// stubIngestionService implements driving.IngestionService for handler tests
type stubIngestionService struct {
	runFn       func(ctx context.Context, params map[string]string) (*domain.IngestionRun, error)
	runSourceFn func(ctx context.Context, sourceID, method string, params map[string]string) (*domain.IngestionRun, error)
}

func (s *stubIngestionService) Run(ctx context.Context, params map[string]string) (*domain.IngestionRun, error) {
	if s.runFn != nil {
		return s.runFn(ctx, params)
	}
	run := domain.NewIngestionRun("run-1")
	run.Finalize()
	return run, nil
}

func (s *stubIngestionService) RunSource(ctx context.Context, sourceID, method string, params map[string]string) (*domain.IngestionRun, error) {
	if s.runSourceFn != nil {
		return s.runSourceFn(ctx, sourceID, method, params)
	}
	run := domain.NewIngestionRun("run-" + sourceID)
	run.Finalize()
	return run, nil
}

// stubTaskQueue records enqueued tasks
type stubTaskQueue struct {
	mu      sync.Mutex
	tasks   []*domain.Task
	pingErr error
}

func (s *stubTaskQueue) Enqueue(ctx context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
	return nil
}

func (s *stubTaskQueue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error) {
	return nil, nil
}
func (s *stubTaskQueue) Ack(ctx context.Context, taskID string) error            { return nil }
func (s *stubTaskQueue) Nack(ctx context.Context, taskID string, r string) error { return nil }
func (s *stubTaskQueue) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	return nil, nil
}
func (s *stubTaskQueue) Ping(ctx context.Context) error { return s.pingErr }
func (s *stubTaskQueue) Close() error                   { return nil }

var _ driven.TaskQueue = (*stubTaskQueue)(nil)

type serverOptions struct {
	query     *stubQueryService
	ingestion *stubIngestionService
	queue     driven.TaskQueue
	services  *runtime.Services
}

func newTestServer(t *testing.T, opts serverOptions) *Server {
	t.Helper()

	if opts.query == nil {
		opts.query = &stubQueryService{}
	}
	if opts.ingestion == nil {
		opts.ingestion = &stubIngestionService{}
	}
	if opts.services == nil {
		opts.services = runtime.NewServices(domain.NewRuntimeConfig("qdrant"))
	}

	registry := connectors.NewRegistry()
	registry.Register(&mocks.MockConnector{
		IDValue:      "legifrance",
		NameValue:    "Légifrance",
		MethodsValue: []string{"fetch_recent_laws", "fetch_code_articles"},
	})
	registry.Register(&mocks.MockConnector{IDValue: "eurlex", NameValue: "EUR-Lex"})

	return NewServer(Config{
		Version:      "test",
		QueryService: opts.query,
		Ingestion:    opts.ingestion,
		Registry:     registry,
		Services:     opts.services,
		TaskQueue:    opts.queue,
	})
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec := doRequest(t, s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestReadyWithUnhealthyQueue(t *testing.T) {
	s := newTestServer(t, serverOptions{
		queue: &stubTaskQueue{pingErr: errors.New("connection refused")},
	})

	rec := doRequest(t, s, http.MethodGet, "/ready", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestQueryRequiresQuery(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/query", `{"domain":"travail"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/v1/query", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestQueryReturnsAnswer(t *testing.T) {
	query := &stubQueryService{
		answerFn: func(ctx context.Context, req domain.QueryRequest) (*domain.LegalAnswer, error) {
			if req.Query != "puis-je être licencié pendant un arrêt maladie ?" {
				t.Errorf("query = %q", req.Query)
			}
			return &domain.LegalAnswer{
				Introduction:   "Le licenciement pendant un arrêt maladie est encadré.",
				LegalFramework: "Article L1132-1 du Code du travail.",
				Application:    "En principe non, sauf exceptions.",
				Sources:        []string{"Code du travail"},
				Disclaimer:     domain.DefaultDisclaimer,
			}, nil
		},
	}
	s := newTestServer(t, serverOptions{query: query})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/query",
		`{"query":"puis-je être licencié pendant un arrêt maladie ?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var answer domain.LegalAnswer
	if err := json.NewDecoder(rec.Body).Decode(&answer); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if answer.LegalFramework != "Article L1132-1 du Code du travail." {
		t.Errorf("legal_framework = %q", answer.LegalFramework)
	}
	if answer.Disclaimer == "" {
		t.Error("expected disclaimer")
	}
}

func TestSearchReturnsHits(t *testing.T) {
	query := &stubQueryService{
		searchFn: func(ctx context.Context, q string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
			if opts.Limit != 2 {
				t.Errorf("limit = %d, want 2", opts.Limit)
			}
			if opts.Type != "loi" {
				t.Errorf("type filter = %q, want loi", opts.Type)
			}
			return []domain.SearchResult{
				{Document: &domain.Document{ID: "A", Title: "Loi A", Content: "...", Type: "loi"}, Score: 0.9},
			}, nil
		},
	}
	s := newTestServer(t, serverOptions{query: query})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/search",
		`{"query":"contrat de travail","limit":2,"doc_type":"loi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Count   int                `json:"count"`
		Results []domain.SearchHit `json:"results"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || len(resp.Results) != 1 {
		t.Fatalf("count = %d, results = %d", resp.Count, len(resp.Results))
	}
	if resp.Results[0].ID != "A" {
		t.Errorf("hit ID = %q", resp.Results[0].ID)
	}
}

func TestSearchEmptyIndexReturnsEmptyList(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/search", `{"query":"anything"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Results []domain.SearchHit `json:"results"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Results == nil {
		t.Error("results must be an empty list, not null")
	}
}

func TestListSources(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/sources", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Sources []sourceInfo `json:"sources"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(resp.Sources))
	}
	if resp.Sources[0].ID != "legifrance" {
		t.Errorf("first source = %q, want registration order", resp.Sources[0].ID)
	}
}

func TestIngestAllEnqueuesTask(t *testing.T) {
	queue := &stubTaskQueue{}
	s := newTestServer(t, serverOptions{queue: queue})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/ingest", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}

	if len(queue.tasks) != 1 {
		t.Fatalf("enqueued %d tasks, want 1", len(queue.tasks))
	}
	if queue.tasks[0].Type != domain.TaskTypeIngestAll {
		t.Errorf("task type = %q", queue.tasks[0].Type)
	}

	var resp ingestResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TaskID == "" || resp.Status != "queued" {
		t.Errorf("response = %+v", resp)
	}
}

func TestIngestAllInlineWithoutQueue(t *testing.T) {
	ingestion := &stubIngestionService{
		runFn: func(ctx context.Context, params map[string]string) (*domain.IngestionRun, error) {
			run := domain.NewIngestionRun("run-inline")
			run.TotalImported = 4
			run.Finalize()
			return run, nil
		},
	}
	s := newTestServer(t, serverOptions{ingestion: ingestion})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/ingest", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp ingestResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "completed" || resp.Run == nil || resp.Run.TotalImported != 4 {
		t.Errorf("response = %+v", resp)
	}
}

func TestIngestSourceUnknown(t *testing.T) {
	s := newTestServer(t, serverOptions{queue: &stubTaskQueue{}})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/sources/nope/ingest", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestIngestSourceEnqueuesWithMethod(t *testing.T) {
	queue := &stubTaskQueue{}
	s := newTestServer(t, serverOptions{queue: queue})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/sources/legifrance/ingest",
		`{"method":"fetch_recent_laws","params":{"code_id":"LEGITEXT000006072050"}}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}

	if len(queue.tasks) != 1 {
		t.Fatalf("enqueued %d tasks, want 1", len(queue.tasks))
	}
	task := queue.tasks[0]
	if task.SourceID() != "legifrance" || task.Method() != "fetch_recent_laws" {
		t.Errorf("payload = %v", task.Payload)
	}
	if task.Payload["code_id"] != "LEGITEXT000006072050" {
		t.Errorf("params not carried: %v", task.Payload)
	}
}

func TestStatusReflectsCapabilities(t *testing.T) {
	services := runtime.NewServices(domain.NewRuntimeConfig("pgvector"))
	services.SetEmbeddingService(mocks.NewMockEmbeddingService())
	services.SetVectorIndex(mocks.NewMockVectorIndex())

	s := newTestServer(t, serverOptions{services: services})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.VectorBackend != "pgvector" {
		t.Errorf("vector_backend = %q", resp.VectorBackend)
	}
	if !resp.SemanticSearch || !resp.Embedding || !resp.Index {
		t.Errorf("capabilities = %+v", resp)
	}
	if resp.LLM {
		t.Error("llm should be unavailable")
	}
}
