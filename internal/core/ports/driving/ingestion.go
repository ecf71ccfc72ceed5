package driving

import (
	"context"

	"github.com/juralis/juralis-core/internal/core/domain"
)

// IngestionService runs the ingestion pipeline: connectors → normaliser
// → enrichment → vector index, with per-source statistics.
type IngestionService interface {
	// Run ingests all configured sources sequentially and returns the
	// finalized run record. One bad record, method or source never
	// aborts the rest of the run.
	Run(ctx context.Context, params map[string]string) (*domain.IngestionRun, error)

	// RunSource ingests a single source. method may be empty, meaning
	// all methods the connector declares.
	RunSource(ctx context.Context, sourceID, method string, params map[string]string) (*domain.IngestionRun, error)
}
