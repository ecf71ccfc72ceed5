package driven

import (
	"context"

	"github.com/juralis/juralis-core/internal/core/domain"
)

// VectorIndex persists documents with their embeddings and serves
// filtered nearest-neighbour search under cosine similarity.
//
// The index exclusively owns point storage: no other component mutates
// it directly. All mutating operations are keyed by document ID with
// last-write-wins semantics, so the shared client needs no additional
// locking beyond what the backend provides.
type VectorIndex interface {
	// Init verifies the backing collection exists and creates it with
	// the configured dimension and cosine distance if absent. A
	// create-after-check race ("already exists") is success: concurrent
	// startup must not crash the process.
	Init(ctx context.Context) error

	// Upsert writes one point, replacing any existing point with the
	// same document ID (vector and payload both).
	Upsert(ctx context.Context, point *domain.IndexedPoint) error

	// Search returns up to opts.Limit results ordered by descending
	// similarity score; equal scores are ordered by ascending ID so
	// results are reproducible.
	Search(ctx context.Context, vector []float32, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// Get retrieves a document payload by ID without vector computation.
	// Returns domain.ErrNotFound when the ID is absent.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Ping checks backend reachability.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close() error
}
