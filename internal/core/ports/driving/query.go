package driving

import (
	"context"

	"github.com/juralis/juralis-core/internal/core/domain"
)

// QueryService answers natural-language legal questions from the vector
// index, falling back to live connector search when the index is sparse.
// All operations return well-formed (possibly empty or degraded)
// results; backend unavailability never surfaces as an error.
type QueryService interface {
	// SearchRelevant performs semantic search with optional filters.
	SearchRelevant(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// Answer retrieves relevant sources and composes a structured legal
	// answer for the question.
	Answer(ctx context.Context, req domain.QueryRequest) (*domain.LegalAnswer, error)
}
