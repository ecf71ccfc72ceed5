package domain

import "time"

// RunStatus represents the current state of an ingestion run or of one
// of its sources.
type RunStatus string

const (
	RunStatusStarted   RunStatus = "started"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusFinalized RunStatus = "finalized"
)

// MethodStats holds import counters for one extraction method of a source.
type MethodStats struct {
	DocumentsImported int        `json:"documents_imported"`
	StartTime         time.Time  `json:"start_time"`
	EndTime           *time.Time `json:"end_time,omitempty"`
	DurationSeconds   float64    `json:"duration_seconds"`
	Error             string     `json:"error,omitempty"`
}

// SourceStats holds import counters for one source across its methods.
type SourceStats struct {
	Name              string                  `json:"name"`
	Status            RunStatus               `json:"-"`
	DocumentsImported int                     `json:"documents_imported"`
	Methods           map[string]*MethodStats `json:"methods"`
	Error             string                  `json:"error,omitempty"`
}

// IngestionRun is the transient record of one orchestration pass.
// It is owned by the orchestrator for the duration of the run, finalized
// exactly once, persisted, and never mutated afterwards.
type IngestionRun struct {
	ID              string                  `json:"id"`
	Status          RunStatus               `json:"-"`
	TotalImported   int                     `json:"total_imported"`
	ErrorCount      int                     `json:"error_count"`
	StartTime       time.Time               `json:"start_time"`
	EndTime         *time.Time              `json:"end_time,omitempty"`
	DurationSeconds float64                 `json:"duration_seconds"`
	Sources         map[string]*SourceStats `json:"sources_stats"`
}

// NewIngestionRun creates a run in the started state.
func NewIngestionRun(id string) *IngestionRun {
	return &IngestionRun{
		ID:        id,
		Status:    RunStatusStarted,
		StartTime: time.Now(),
		Sources:   make(map[string]*SourceStats),
	}
}

// BatchResult is the immutable outcome of processing one batch of raw
// records. Batch results are produced by pipeline stages and reduced
// into the run by the orchestrator; no shared counters are mutated
// across goroutines.
type BatchResult struct {
	Imported int
	Errors   int
}

// Add folds another batch result into this one.
func (b BatchResult) Add(other BatchResult) BatchResult {
	return BatchResult{
		Imported: b.Imported + other.Imported,
		Errors:   b.Errors + other.Errors,
	}
}

// StartSource records the beginning of one source's import.
func (r *IngestionRun) StartSource(sourceID, name string) *SourceStats {
	s := &SourceStats{
		Name:    name,
		Status:  RunStatusRunning,
		Methods: make(map[string]*MethodStats),
	}
	r.Sources[sourceID] = s
	return s
}

// StartMethod records the beginning of one extraction method.
func (s *SourceStats) StartMethod(method string) *MethodStats {
	m := &MethodStats{StartTime: time.Now()}
	s.Methods[method] = m
	return m
}

// FinishMethod folds the method's reduced batch results into the source
// and run counters and stamps the method duration.
func (r *IngestionRun) FinishMethod(s *SourceStats, m *MethodStats, result BatchResult, err error) {
	now := time.Now()
	m.EndTime = &now
	m.DurationSeconds = now.Sub(m.StartTime).Seconds()
	m.DocumentsImported = result.Imported
	if err != nil {
		m.Error = err.Error()
		r.ErrorCount++
	}
	s.DocumentsImported += result.Imported
	r.TotalImported += result.Imported
	r.ErrorCount += result.Errors
}

// FailSource marks a source as failed without aborting the run.
func (r *IngestionRun) FailSource(s *SourceStats, err error) {
	s.Status = RunStatusFailed
	s.Error = err.Error()
	r.ErrorCount++
}

// Finalize stamps the end time and duration. Safe to call once; the run
// must not be modified afterwards.
func (r *IngestionRun) Finalize() {
	now := time.Now()
	r.EndTime = &now
	r.DurationSeconds = now.Sub(r.StartTime).Seconds()
	r.Status = RunStatusFinalized
	for _, s := range r.Sources {
		if s.Status == RunStatusRunning {
			s.Status = RunStatusCompleted
		}
	}
}
