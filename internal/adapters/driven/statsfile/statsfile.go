// Package statsfile persists ingestion run statistics as timestamped
// JSON reports on disk.
package statsfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/juralis/juralis-core/internal/core/domain"
	"github.com/juralis/juralis-core/internal/core/ports/driven"
)

// Ensure Store implements RunStore
var _ driven.RunStore = (*Store)(nil)

// Store writes one import_stats_YYYYMMDD_HHMMSS.json per run. Files are
// never overwritten; each run leaves its own report.
type Store struct {
	dir string
}

// New creates a run store writing into dir, creating it if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("statsfile: create dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the finalized run as an indented JSON report.
func (s *Store) Save(ctx context.Context, run *domain.IngestionRun) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("statsfile: marshal run %s: %w", run.ID, err)
	}

	name := fmt.Sprintf("import_stats_%s.json", run.StartTime.Format("20060102_150405"))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("statsfile: write %s: %w", path, err)
	}
	return nil
}
