// Package enrich augments canonical documents with derived metadata:
// linguistic features, legal-domain labels, summaries, legal-reference
// citations and readability metrics. Every sub-step is individually
// fault-tolerant; a failed analyzer leaves its metadata key absent and
// enrichment never propagates an error past the stage boundary.
package enrich

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/juralis/juralis-core/internal/core/domain"
	"github.com/juralis/juralis-core/internal/core/ports/driven"
)

// DefaultMaxParallel bounds concurrent enrichment within a batch so the
// ML runtime is not oversubscribed.
const DefaultMaxParallel = 4

// classifierInputLimit bounds the content prefix handed to the domain
// classifier, alongside the title.
const classifierInputLimit = 1000

// Enricher runs the enrichment stage. All analyzers are optional; a nil
// analyzer selects the heuristic fallback for that sub-step.
type Enricher struct {
	linguistic  driven.LinguisticAnalyzer
	classifier  driven.DomainClassifier
	summarizer  driven.Summarizer
	maxParallel int
	logger      *slog.Logger
}

// Config holds the enricher's injectable analyzers and settings.
type Config struct {
	Linguistic  driven.LinguisticAnalyzer
	Classifier  driven.DomainClassifier
	Summarizer  driven.Summarizer
	MaxParallel int
	Logger      *slog.Logger
}

// New creates an enricher.
func New(cfg Config) *Enricher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxParallel := cfg.MaxParallel
	if maxParallel <= 0 {
		maxParallel = DefaultMaxParallel
	}
	return &Enricher{
		linguistic:  cfg.Linguistic,
		classifier:  cfg.Classifier,
		summarizer:  cfg.Summarizer,
		maxParallel: maxParallel,
		logger:      logger,
	}
}

// EnrichDocument returns an enriched copy of the document; the input is
// never mutated. A document without content is returned as an unchanged
// copy.
func (e *Enricher) EnrichDocument(ctx context.Context, doc *domain.Document) *domain.Document {
	enriched := doc.Clone()
	if enriched.Content == "" {
		e.logger.Warn("document has no content, skipping enrichment", "id", doc.ID)
		return enriched
	}

	e.addLinguisticFeatures(ctx, enriched)
	e.classifyLegalDomains(ctx, enriched)
	e.generateSummary(ctx, enriched)
	e.extractReferences(enriched)
	e.addReadability(enriched)

	enriched.Metadata["enrichment_date"] = time.Now().Format(time.RFC3339)
	return enriched
}

// EnrichBatch enriches documents concurrently on a bounded worker pool.
// Input order is preserved in the output slice.
func (e *Enricher) EnrichBatch(ctx context.Context, docs []*domain.Document) []*domain.Document {
	out := make([]*domain.Document, len(docs))

	sem := make(chan struct{}, e.maxParallel)
	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, doc *domain.Document) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i] = e.EnrichDocument(ctx, doc)
		}(i, doc)
	}
	wg.Wait()
	return out
}

func (e *Enricher) addLinguisticFeatures(ctx context.Context, doc *domain.Document) {
	if e.linguistic == nil {
		doc.Metadata["word_count"] = heuristicWordCount(doc.Content)
		doc.Metadata["sentence_count"] = countSentences(doc.Content)
		if kw := heuristicKeywords(doc.Content); len(kw) > 0 {
			doc.Metadata["keywords"] = kw
		}
		return
	}

	features, err := e.linguistic.Analyze(ctx, doc.Content)
	if err != nil {
		e.logger.Error("linguistic analysis failed", "id", doc.ID, "error", err)
		doc.Metadata["word_count"] = heuristicWordCount(doc.Content)
		return
	}
	doc.Metadata["word_count"] = features.WordCount
	doc.Metadata["sentence_count"] = features.SentenceCount
	if len(features.Entities) > 0 {
		doc.Metadata["entities"] = features.Entities
	}
	if len(features.Keywords) > 0 {
		doc.Metadata["keywords"] = features.Keywords
	}
}

func (e *Enricher) classifyLegalDomains(ctx context.Context, doc *domain.Document) {
	if e.classifier == nil {
		doc.Metadata["domains"] = classifyByKeywords(doc.Title, doc.Content)
		return
	}

	text := doc.Title + ". " + truncateAt(doc.Content, classifierInputLimit)
	scores, err := e.classifier.Classify(ctx, text, 3)
	if err != nil || len(scores) == 0 {
		if err != nil {
			e.logger.Error("domain classification failed", "id", doc.ID, "error", err)
		}
		doc.Metadata["domains"] = classifyByKeywords(doc.Title, doc.Content)
		return
	}

	domains := make([]string, 0, len(scores))
	domainScores := make(map[string]float64, len(scores))
	for _, s := range scores {
		domains = append(domains, s.Label)
		domainScores[s.Label] = s.Score
	}
	doc.Metadata["domains"] = domains
	doc.Metadata["domain_scores"] = domainScores
}

func (e *Enricher) generateSummary(ctx context.Context, doc *domain.Document) {
	if e.summarizer == nil {
		doc.Metadata["summary"] = fallbackSummary(doc.Content)
		return
	}

	summary, err := e.summarizer.Summarize(ctx, truncateForSummary(doc.Content), summaryMinTokens, summaryMaxTokens)
	if err != nil || summary == "" {
		if err != nil {
			e.logger.Error("summary generation failed", "id", doc.ID, "error", err)
		}
		doc.Metadata["summary"] = fallbackSummary(doc.Content)
		return
	}
	doc.Metadata["summary"] = summary
}

func (e *Enricher) extractReferences(doc *domain.Document) {
	refs, codes := extractLegalReferences(doc.Content)
	if len(refs) > 0 {
		doc.Metadata["legal_references"] = refs
	}
	doc.Metadata["codes_mentioned"] = codes
}

func (e *Enricher) addReadability(doc *domain.Document) {
	doc.Metadata["readability"] = computeReadability(doc.Content)
}

func countSentences(content string) int {
	n := 0
	for _, r := range content {
		if r == '.' || r == '!' || r == '?' {
			n++
		}
	}
	if n == 0 {
		n = 1
	}
	return n
}

func truncateAt(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
