package driven

import (
	"context"

	"github.com/juralis/juralis-core/internal/core/domain"
)

// RunStore persists finalized ingestion-run statistics.
// A run is written exactly once, at run end, and never mutated after.
type RunStore interface {
	// Save durably writes the finalized run record.
	Save(ctx context.Context, run *domain.IngestionRun) error
}
