// Package index selects and builds the configured vector index backend.
package index

import (
	"context"
	"log/slog"
	"time"

	"github.com/juralis/juralis-core/internal/adapters/driven/index/pgvector"
	"github.com/juralis/juralis-core/internal/adapters/driven/index/qdrant"
	"github.com/juralis/juralis-core/internal/core/ports/driven"
)

// Supported backend names.
const (
	BackendQdrant   = "qdrant"
	BackendPgvector = "pgvector"
)

// Config selects and parameterizes the vector index backend.
type Config struct {
	Backend    string
	Dimensions int

	// qdrant
	QdrantURL    string
	QdrantAPIKey string
	Collection   string
	Timeout      time.Duration

	// pgvector
	PostgresURL string
}

// New builds the configured backend. An unrecognized backend name falls
// back to qdrant with a warning rather than refusing to start.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (driven.VectorIndex, error) {
	if logger == nil {
		logger = slog.Default()
	}

	backend := cfg.Backend
	switch backend {
	case BackendQdrant, BackendPgvector:
	default:
		logger.Warn("unknown vector backend, falling back to qdrant", "backend", backend)
		backend = BackendQdrant
	}

	if backend == BackendPgvector {
		return pgvector.New(ctx, pgvector.Config{
			ConnString: cfg.PostgresURL,
			Dimensions: cfg.Dimensions,
		})
	}
	return qdrant.New(qdrant.Config{
		URL:        cfg.QdrantURL,
		APIKey:     cfg.QdrantAPIKey,
		Collection: cfg.Collection,
		Dimensions: cfg.Dimensions,
		Timeout:    cfg.Timeout,
	}), nil
}
