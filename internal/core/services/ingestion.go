package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/juralis/juralis-core/internal/core/domain"
	"github.com/juralis/juralis-core/internal/core/ports/driven"
	"github.com/juralis/juralis-core/internal/core/ports/driving"
	"github.com/juralis/juralis-core/internal/enrich"
	"github.com/juralis/juralis-core/internal/normalise"
	"github.com/juralis/juralis-core/internal/runtime"
)

// DefaultBatchSize is how many raw records move through the
// normalise-enrich-index pipeline at once.
const DefaultBatchSize = 100

// Ensure ingestionService implements IngestionService
var _ driving.IngestionService = (*ingestionService)(nil)

// ingestionService orchestrates the import pipeline. Sources run
// sequentially; failures are contained at the narrowest scope (record,
// then method, then source) so one bad element never aborts the rest of
// the run.
type ingestionService struct {
	registry  driven.ConnectorRegistry
	mappings  *normalise.Registry
	enricher  *enrich.Enricher
	services  *runtime.Services // Dynamic AI services
	runStore  driven.RunStore
	batchSize int
	logger    *slog.Logger
}

// IngestionConfig holds the orchestrator's collaborators and settings.
type IngestionConfig struct {
	Registry  driven.ConnectorRegistry
	Mappings  *normalise.Registry
	Enricher  *enrich.Enricher
	Services  *runtime.Services
	RunStore  driven.RunStore
	BatchSize int
	Logger    *slog.Logger
}

// NewIngestionService creates a new IngestionService.
// AI services (embedding, index) are accessed dynamically via runtime.Services.
func NewIngestionService(cfg IngestionConfig) driving.IngestionService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ingestionService{
		registry:  cfg.Registry,
		mappings:  cfg.Mappings,
		enricher:  cfg.Enricher,
		services:  cfg.Services,
		runStore:  cfg.RunStore,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run ingests all registered sources sequentially.
func (s *ingestionService) Run(ctx context.Context, params map[string]string) (*domain.IngestionRun, error) {
	run := domain.NewIngestionRun(uuid.NewString())
	run.Status = domain.RunStatusRunning
	s.logger.Info("ingestion run started", "run_id", run.ID)

	for _, connector := range s.registry.List() {
		if err := ctx.Err(); err != nil {
			run.FailSource(run.StartSource(connector.ID(), connector.Name()), err)
			break
		}
		s.ingestSource(ctx, run, connector, "", params)
	}

	return s.finalize(ctx, run), nil
}

// RunSource ingests a single source, optionally restricted to one method.
func (s *ingestionService) RunSource(ctx context.Context, sourceID, method string, params map[string]string) (*domain.IngestionRun, error) {
	connector, err := s.registry.Get(sourceID)
	if err != nil {
		return nil, err
	}
	if method != "" && !declaresMethod(connector, method) {
		return nil, fmt.Errorf("source %q: method %q: %w", sourceID, method, domain.ErrUnknownMethod)
	}

	run := domain.NewIngestionRun(uuid.NewString())
	run.Status = domain.RunStatusRunning
	s.logger.Info("ingestion run started", "run_id", run.ID, "source", sourceID, "method", method)

	s.ingestSource(ctx, run, connector, method, params)
	return s.finalize(ctx, run), nil
}

// ingestSource runs one connector's methods and folds their results into
// the run. A source whose mapping is missing fails as a whole; a method
// error is recorded on the method and the remaining methods still run.
func (s *ingestionService) ingestSource(ctx context.Context, run *domain.IngestionRun, connector driven.Connector, onlyMethod string, params map[string]string) {
	stats := run.StartSource(connector.ID(), connector.Name())

	mapping, err := s.mappings.Get(connector.ID())
	if err != nil {
		s.logger.Error("no mapping registered for source", "source", connector.ID(), "error", err)
		run.FailSource(stats, err)
		return
	}

	methods := connector.Methods()
	if onlyMethod != "" {
		methods = []string{onlyMethod}
	}

	for _, method := range methods {
		methodStats := stats.StartMethod(method)

		records, err := connector.Fetch(ctx, method, params)
		if err != nil {
			s.logger.Error("fetch failed", "source", connector.ID(), "method", method, "error", err)
			run.FinishMethod(stats, methodStats, domain.BatchResult{}, err)
			continue
		}

		result := domain.BatchResult{}
		for start := 0; start < len(records); start += s.batchSize {
			end := start + s.batchSize
			if end > len(records) {
				end = len(records)
			}
			result = result.Add(s.processBatch(ctx, mapping, records[start:end]))
		}

		s.logger.Info("method finished",
			"source", connector.ID(),
			"method", method,
			"imported", result.Imported,
			"errors", result.Errors)
		run.FinishMethod(stats, methodStats, result, nil)
	}
}

// processBatch normalises, enriches and indexes one batch of raw
// records, returning its immutable outcome. A record that fails any
// stage counts one error; the rest of the batch is unaffected.
func (s *ingestionService) processBatch(ctx context.Context, mapping normalise.Mapping, records []driven.RawRecord) domain.BatchResult {
	now := time.Now()

	docs := make([]*domain.Document, 0, len(records))
	result := domain.BatchResult{}
	for _, raw := range records {
		doc, err := mapping.Normalise(raw, now)
		if err != nil {
			s.logger.Warn("record skipped", "source", mapping.Source, "error", err)
			result.Errors++
			continue
		}
		docs = append(docs, doc)
	}

	docs = s.enricher.EnrichBatch(ctx, docs)

	if !s.services.Config().CanIndex() {
		// Degraded: documents are normalised and enriched but cannot be
		// persisted. Count them as errors so the run record shows the gap.
		s.logger.Warn("index unavailable, batch not persisted", "source", mapping.Source, "documents", len(docs))
		result.Errors += len(docs)
		return result
	}

	embedder := s.services.EmbeddingService()
	index := s.services.VectorIndex()

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = embeddingText(d)
	}
	vectors, err := embedder.Embed(ctx, texts)
	if err != nil || len(vectors) != len(docs) {
		s.logger.Error("batch embedding failed", "source", mapping.Source, "error", err)
		result.Errors += len(docs)
		return result
	}

	for i, doc := range docs {
		if err := index.Upsert(ctx, &domain.IndexedPoint{Document: doc, Vector: vectors[i]}); err != nil {
			s.logger.Error("upsert failed", "id", doc.ID, "error", err)
			result.Errors++
			continue
		}
		result.Imported++
	}
	return result
}

func (s *ingestionService) finalize(ctx context.Context, run *domain.IngestionRun) *domain.IngestionRun {
	run.Finalize()
	s.logger.Info("ingestion run finalized",
		"run_id", run.ID,
		"total_imported", run.TotalImported,
		"error_count", run.ErrorCount,
		"duration_seconds", run.DurationSeconds)

	if s.runStore != nil {
		if err := s.runStore.Save(ctx, run); err != nil {
			s.logger.Error("failed to persist run statistics", "run_id", run.ID, "error", err)
		}
	}
	return run
}

// embeddingText is the text embedded for a document: title and content,
// title first so short statutes still carry their subject.
func embeddingText(d *domain.Document) string {
	return d.Title + "\n" + d.Content
}

func declaresMethod(c driven.Connector, method string) bool {
	for _, m := range c.Methods() {
		if m == method {
			return true
		}
	}
	return false
}
