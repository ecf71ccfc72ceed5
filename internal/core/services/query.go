package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/juralis/juralis-core/internal/core/domain"
	"github.com/juralis/juralis-core/internal/core/ports/driven"
	"github.com/juralis/juralis-core/internal/core/ports/driving"
	"github.com/juralis/juralis-core/internal/enrich"
	"github.com/juralis/juralis-core/internal/normalise"
	"github.com/juralis/juralis-core/internal/runtime"
)

const (
	// FallbackThreshold is the minimum number of index hits below which
	// live connector search kicks in.
	FallbackThreshold = 3

	// MaxFallbackConnectors bounds how many providers are queried live
	// during one fallback pass.
	MaxFallbackConnectors = 2
)

const analysisSystemPrompt = `Tu es un assistant juridique français. Analyse la question et réponds uniquement en JSON avec les clés: domain, key_concepts, possible_laws, query_rephrased.`

const answerSystemPrompt = `Tu es un assistant juridique français. À partir des sources fournies, réponds uniquement en JSON avec les clés: introduction, legal_framework, application, exceptions, recommendations. Cite les sources fournies, n'invente aucune référence.`

// Ensure queryService implements QueryService
var _ driving.QueryService = (*queryService)(nil)

// queryService answers questions from the vector index. Every degraded
// path returns a usable value: empty results when semantic search is
// impossible, a canned degraded answer when composition fails.
type queryService struct {
	registry driven.ConnectorRegistry
	mappings *normalise.Registry
	enricher *enrich.Enricher
	services *runtime.Services // Dynamic AI services
	logger   *slog.Logger
}

// QueryConfig holds the query service's collaborators.
type QueryConfig struct {
	Registry driven.ConnectorRegistry
	Mappings *normalise.Registry
	Enricher *enrich.Enricher
	Services *runtime.Services
	Logger   *slog.Logger
}

// NewQueryService creates a new QueryService.
// AI services are accessed dynamically via runtime.Services.
func NewQueryService(cfg QueryConfig) driving.QueryService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &queryService{
		registry: cfg.Registry,
		mappings: cfg.Mappings,
		enricher: cfg.Enricher,
		services: cfg.Services,
		logger:   logger,
	}
}

// SearchRelevant performs semantic search over the index. When the hit
// count falls below FallbackThreshold the service queries live providers,
// imports what they return and merges fresh index hits into the response.
func (s *queryService) SearchRelevant(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	opts = opts.Normalize()

	if !s.services.Config().CanDoSemanticSearch() {
		s.logger.Warn("semantic search unavailable, returning empty results")
		return []domain.SearchResult{}, nil
	}

	results, err := s.indexSearch(ctx, query, opts)
	if err != nil {
		s.logger.Error("index search failed", "error", err)
		return []domain.SearchResult{}, nil
	}

	if len(results) >= FallbackThreshold {
		return results, nil
	}

	s.logger.Info("sparse index results, querying providers live",
		"hits", len(results), "threshold", FallbackThreshold)

	imported := s.fallbackImport(ctx, query, opts.Limit)
	if imported == 0 {
		return results, nil
	}

	fresh, err := s.indexSearch(ctx, query, opts)
	if err != nil {
		s.logger.Error("post-fallback search failed", "error", err)
		return results, nil
	}
	return mergeResults(results, fresh, opts.Limit), nil
}

// Answer composes a structured legal answer for a question. With an LLM
// available the question is analyzed and the answer drafted from the
// retrieved sources; without one, retrieval still runs and a degraded
// answer carries the sources found.
func (s *queryService) Answer(ctx context.Context, req domain.QueryRequest) (*domain.LegalAnswer, error) {
	analysis := s.analyzeQuery(ctx, req)

	searchQuery := req.Query
	if analysis.QueryRephrased != "" {
		searchQuery = analysis.QueryRephrased
	}

	// Only an explicit caller domain becomes a hard filter; the inferred
	// domain steers the prompt but must not shrink recall.
	opts := domain.SearchOptions{Limit: req.Limit}
	if req.Domain != "" {
		opts.Domains = []string{req.Domain}
	}

	results, err := s.SearchRelevant(ctx, searchQuery, opts)
	if err != nil {
		s.logger.Error("retrieval failed during answer composition", "error", err)
		return domain.DegradedAnswer(), nil
	}
	sources := sourceCitations(results)

	if !s.services.Config().CanDoLLMAssisted() {
		answer := domain.DegradedAnswer()
		answer.Introduction = "Le service de génération de réponses est indisponible. Voici les sources pertinentes trouvées pour votre question."
		if len(sources) > 0 {
			answer.Sources = sources
		}
		return answer, nil
	}

	answer, err := s.composeAnswer(ctx, req, analysis, results)
	if err != nil {
		s.logger.Error("answer composition failed", "error", err)
		answer = domain.DegradedAnswer()
		if len(sources) > 0 {
			answer.Sources = sources
		}
		return answer, nil
	}

	answer.Sources = sources
	if len(answer.Sources) == 0 {
		answer.Sources = []string{"Aucune source disponible"}
	}
	answer.DateUpdated = time.Now().Format("2006-01-02")
	answer.Disclaimer = domain.DefaultDisclaimer
	return answer, nil
}

func (s *queryService) indexSearch(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	embedder := s.services.EmbeddingService()
	index := s.services.VectorIndex()
	if embedder == nil || index == nil {
		return nil, domain.ErrServiceUnavailable
	}

	vector, err := embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return index.Search(ctx, vector, opts)
}

// fallbackImport queries up to MaxFallbackConnectors live providers and
// pushes whatever they return through the normal import pipeline.
// Returns how many documents entered the index.
func (s *queryService) fallbackImport(ctx context.Context, query string, limit int) int {
	searchers := s.registry.Searchers()
	if len(searchers) > MaxFallbackConnectors {
		searchers = searchers[:MaxFallbackConnectors]
	}

	// Services can be swapped out between the capability gate and here;
	// re-check the handles like indexSearch does.
	embedder := s.services.EmbeddingService()
	index := s.services.VectorIndex()
	if embedder == nil || index == nil {
		return 0
	}
	now := time.Now()

	imported := 0
	for _, connector := range searchers {
		searcher, ok := connector.(driven.Searcher)
		if !ok {
			continue
		}
		records, err := searcher.Search(ctx, query, limit)
		if err != nil {
			s.logger.Warn("live provider search failed", "source", connector.ID(), "error", err)
			continue
		}

		mapping, err := s.mappings.Get(connector.ID())
		if err != nil {
			s.logger.Error("no mapping registered for source", "source", connector.ID(), "error", err)
			continue
		}

		for _, raw := range records {
			doc, err := mapping.Normalise(raw, now)
			if err != nil {
				continue
			}
			doc = s.enricher.EnrichDocument(ctx, doc)

			vector, err := embedder.EmbedQuery(ctx, embeddingText(doc))
			if err != nil {
				s.logger.Warn("fallback embedding failed", "id", doc.ID, "error", err)
				continue
			}
			if err := index.Upsert(ctx, &domain.IndexedPoint{Document: doc, Vector: vector}); err != nil {
				s.logger.Warn("fallback upsert failed", "id", doc.ID, "error", err)
				continue
			}
			imported++
		}
	}
	return imported
}

func (s *queryService) analyzeQuery(ctx context.Context, req domain.QueryRequest) domain.QueryAnalysis {
	if s.services.Config().CanDoLLMAssisted() {
		if analysis, err := s.llmAnalyzeQuery(ctx, req.Query); err == nil {
			return analysis
		} else {
			s.logger.Warn("LLM query analysis failed, using keyword analysis", "error", err)
		}
	}
	return heuristicAnalyzeQuery(req.Query)
}

func (s *queryService) llmAnalyzeQuery(ctx context.Context, query string) (domain.QueryAnalysis, error) {
	llm := s.services.LLMService()
	if llm == nil {
		return domain.QueryAnalysis{}, domain.ErrServiceUnavailable
	}

	raw, err := llm.Complete(ctx, analysisSystemPrompt, query)
	if err != nil {
		return domain.QueryAnalysis{}, err
	}

	var analysis domain.QueryAnalysis
	if err := json.Unmarshal([]byte(extractJSON(raw)), &analysis); err != nil {
		return domain.QueryAnalysis{}, fmt.Errorf("parse analysis: %w", err)
	}
	return analysis, nil
}

// heuristicAnalyzeQuery routes a question with the enrichment keyword
// table instead of an LLM. The query text itself is the search query.
func heuristicAnalyzeQuery(query string) domain.QueryAnalysis {
	domains := enrich.ClassifyDomains("", query)
	return domain.QueryAnalysis{
		Domain:         domains[0],
		QueryRephrased: query,
	}
}

func (s *queryService) composeAnswer(ctx context.Context, req domain.QueryRequest, analysis domain.QueryAnalysis, results []domain.SearchResult) (*domain.LegalAnswer, error) {
	llm := s.services.LLMService()
	if llm == nil {
		return nil, domain.ErrServiceUnavailable
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", req.Query)
	if req.Context != "" {
		fmt.Fprintf(&b, "Contexte: %s\n", req.Context)
	}
	if analysis.Domain != "" {
		fmt.Fprintf(&b, "Domaine: %s\n", analysis.Domain)
	}
	b.WriteString("\nSources:\n")
	for i, r := range results {
		d := r.Document
		fmt.Fprintf(&b, "[%d] %s (%s, %s)\n%s\n\n", i+1, d.Title, d.Type, d.Date, excerpt(d.Content, 800))
	}

	raw, err := llm.Complete(ctx, answerSystemPrompt, b.String())
	if err != nil {
		return nil, err
	}

	var answer domain.LegalAnswer
	if err := json.Unmarshal([]byte(extractJSON(raw)), &answer); err != nil {
		// Non-JSON completions still carry usable prose.
		s.logger.Warn("answer was not valid JSON, using raw text", "error", err)
		answer = domain.LegalAnswer{Introduction: strings.TrimSpace(raw)}
	}
	return &answer, nil
}

// mergeResults combines two result lists, deduplicating by document ID.
// The later list wins on conflict since it reflects the fresher index
// state. Output is sorted by descending score then ascending ID and
// truncated to limit.
func mergeResults(before, after []domain.SearchResult, limit int) []domain.SearchResult {
	byID := make(map[string]domain.SearchResult, len(before)+len(after))
	for _, r := range before {
		byID[r.Document.ID] = r
	}
	for _, r := range after {
		byID[r.Document.ID] = r
	}

	merged := make([]domain.SearchResult, 0, len(byID))
	for _, r := range byID {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].Document.ID < merged[j].Document.ID
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func sourceCitations(results []domain.SearchResult) []string {
	citations := make([]string, 0, len(results))
	for _, r := range results {
		d := r.Document
		c := d.Title
		if d.URL != "" {
			c = fmt.Sprintf("%s (%s)", d.Title, d.URL)
		}
		citations = append(citations, c)
	}
	return citations
}

// extractJSON trims anything around the outermost JSON object, since
// models habitually wrap JSON in prose or code fences.
func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}

func excerpt(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut] + "…"
}
