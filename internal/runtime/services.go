package runtime

import (
	"context"
	"sync"

	"github.com/juralis/juralis-core/internal/core/domain"
	"github.com/juralis/juralis-core/internal/core/ports/driven"
)

// Services holds references to dynamically configurable services.
// AI services (Embedding, LLM) and the vector index can be absent or
// replaced at runtime; capability flags track what is currently usable.
// Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	// Config tracks capability flags
	config *domain.RuntimeConfig

	// Dynamic services (can be nil, updated at runtime)
	embeddingService driven.EmbeddingService
	llmService       driven.LLMService
	vectorIndex      driven.VectorIndex
}

// NewServices creates a new Services registry
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config: config,
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// EmbeddingService returns the current embedding service (may be nil)
func (s *Services) EmbeddingService() driven.EmbeddingService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embeddingService
}

// LLMService returns the current LLM service (may be nil)
func (s *Services) LLMService() driven.LLMService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.llmService
}

// VectorIndex returns the current vector index (may be nil)
func (s *Services) VectorIndex() driven.VectorIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vectorIndex
}

// SetEmbeddingService updates the embedding service.
// Closes the old service if present. Updates config flags.
func (s *Services) SetEmbeddingService(svc driven.EmbeddingService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
	}

	s.embeddingService = svc
	s.config.SetEmbeddingAvailable(svc != nil)
}

// SetLLMService updates the LLM service.
// Closes the old service if present. Updates config flags.
func (s *Services) SetLLMService(svc driven.LLMService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.llmService != nil {
		_ = s.llmService.Close()
	}

	s.llmService = svc
	s.config.SetLLMAvailable(svc != nil)
}

// SetVectorIndex updates the vector index.
// Closes the old index if present. Updates config flags.
func (s *Services) SetVectorIndex(idx driven.VectorIndex) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vectorIndex != nil {
		_ = s.vectorIndex.Close()
	}

	s.vectorIndex = idx
	s.config.SetIndexAvailable(idx != nil)
}

// Close shuts down all services
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
		s.embeddingService = nil
	}
	if s.llmService != nil {
		_ = s.llmService.Close()
		s.llmService = nil
	}
	if s.vectorIndex != nil {
		_ = s.vectorIndex.Close()
		s.vectorIndex = nil
	}

	s.config.SetEmbeddingAvailable(false)
	s.config.SetLLMAvailable(false)
	s.config.SetIndexAvailable(false)

	return nil
}

// ValidateAndSetEmbedding validates connectivity before setting embedding service
func (s *Services) ValidateAndSetEmbedding(ctx context.Context, svc driven.EmbeddingService) error {
	if svc == nil {
		s.SetEmbeddingService(nil)
		return nil
	}

	if err := svc.HealthCheck(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetEmbeddingService(svc)
	return nil
}

// ValidateAndSetLLM validates connectivity before setting LLM service
func (s *Services) ValidateAndSetLLM(ctx context.Context, svc driven.LLMService) error {
	if svc == nil {
		s.SetLLMService(nil)
		return nil
	}

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetLLMService(svc)
	return nil
}

// ValidateAndSetVectorIndex pings and initializes the index before
// registering it. A backend that cannot be reached is closed and the
// flag stays down so search degrades instead of erroring.
func (s *Services) ValidateAndSetVectorIndex(ctx context.Context, idx driven.VectorIndex) error {
	if idx == nil {
		s.SetVectorIndex(nil)
		return nil
	}

	if err := idx.Ping(ctx); err != nil {
		_ = idx.Close()
		return err
	}
	if err := idx.Init(ctx); err != nil {
		_ = idx.Close()
		return err
	}

	s.SetVectorIndex(idx)
	return nil
}
