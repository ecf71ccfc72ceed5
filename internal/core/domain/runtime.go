package domain

import "sync"

// RuntimeConfig tracks which services are available at runtime.
// Availability is determined at startup and can change when AI services
// are reconfigured. Thread-safe for concurrent access.
//
// Dependents check these flags and degrade (empty results, heuristic
// enrichment) instead of erroring on every call; the assistant stays
// partially operational without ML infrastructure.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	VectorBackend string // "qdrant" or "pgvector"

	// Dynamic capability flags
	embeddingAvailable bool
	llmAvailable       bool
	indexAvailable     bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(vectorBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		VectorBackend: vectorBackend,
	}
}

// EmbeddingAvailable returns whether an embedding service is available
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// LLMAvailable returns whether an LLM service is available
func (c *RuntimeConfig) LLMAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.llmAvailable
}

// IndexAvailable returns whether the vector index backend is reachable
func (c *RuntimeConfig) IndexAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexAvailable
}

// SetEmbeddingAvailable updates the embedding availability flag
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

// SetLLMAvailable updates the LLM availability flag
func (c *RuntimeConfig) SetLLMAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.llmAvailable = available
}

// SetIndexAvailable updates the index availability flag
func (c *RuntimeConfig) SetIndexAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indexAvailable = available
}

// CanDoSemanticSearch returns true if vector search is possible: both
// the embedding service and the index backend must be functional.
func (c *RuntimeConfig) CanDoSemanticSearch() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable && c.indexAvailable
}

// CanIndex returns true if the write path can produce indexed points.
func (c *RuntimeConfig) CanIndex() bool {
	return c.CanDoSemanticSearch()
}

// CanDoLLMAssisted returns true if LLM features are available
func (c *RuntimeConfig) CanDoLLMAssisted() bool {
	return c.LLMAvailable()
}
