package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/juralis/juralis-core/internal/core/domain"
)

// mockEmbeddingService is a mock implementation for testing
type mockEmbeddingService struct {
	healthCheckErr error
	closed         bool
}

func (m *mockEmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}

func (m *mockEmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return nil, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return 384
}

func (m *mockEmbeddingService) Model() string {
	return "test-model"
}

func (m *mockEmbeddingService) HealthCheck(ctx context.Context) error {
	return m.healthCheckErr
}

func (m *mockEmbeddingService) Close() error {
	m.closed = true
	return nil
}

// mockLLMService is a mock implementation for testing
type mockLLMService struct {
	pingErr error
	closed  bool
}

func (m *mockLLMService) Complete(ctx context.Context, system, prompt string) (string, error) {
	return "", nil
}

func (m *mockLLMService) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *mockLLMService) Close() error {
	m.closed = true
	return nil
}

// mockVectorIndex is a mock implementation for testing
type mockVectorIndex struct {
	pingErr error
	initErr error
	closed  bool
}

func (m *mockVectorIndex) Init(ctx context.Context) error {
	return m.initErr
}

func (m *mockVectorIndex) Upsert(ctx context.Context, point *domain.IndexedPoint) error {
	return nil
}

func (m *mockVectorIndex) Search(ctx context.Context, vector []float32, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	return nil, nil
}

func (m *mockVectorIndex) Get(ctx context.Context, id string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (m *mockVectorIndex) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *mockVectorIndex) Close() error {
	m.closed = true
	return nil
}

func TestNewServices(t *testing.T) {
	config := domain.NewRuntimeConfig("qdrant")
	services := NewServices(config)

	if services == nil {
		t.Fatal("expected non-nil services")
	}
	if services.Config() != config {
		t.Error("expected config to match")
	}
}

func TestServices_EmbeddingService(t *testing.T) {
	config := domain.NewRuntimeConfig("qdrant")
	services := NewServices(config)

	// Initially nil
	if services.EmbeddingService() != nil {
		t.Error("expected nil embedding service initially")
	}

	mock := &mockEmbeddingService{}
	services.SetEmbeddingService(mock)

	if services.EmbeddingService() == nil {
		t.Error("expected non-nil embedding service after set")
	}
	if !config.EmbeddingAvailable() {
		t.Error("expected embedding to be available")
	}

	// Set to nil
	services.SetEmbeddingService(nil)
	if services.EmbeddingService() != nil {
		t.Error("expected nil embedding service after clearing")
	}
	if config.EmbeddingAvailable() {
		t.Error("expected embedding to be unavailable")
	}
	if !mock.closed {
		t.Error("expected old service to be closed")
	}
}

func TestServices_VectorIndex(t *testing.T) {
	config := domain.NewRuntimeConfig("qdrant")
	services := NewServices(config)

	if services.VectorIndex() != nil {
		t.Error("expected nil index initially")
	}

	mock := &mockVectorIndex{}
	services.SetVectorIndex(mock)

	if services.VectorIndex() == nil {
		t.Error("expected non-nil index after set")
	}
	if !config.IndexAvailable() {
		t.Error("expected index to be available")
	}

	services.SetVectorIndex(nil)
	if config.IndexAvailable() {
		t.Error("expected index to be unavailable")
	}
	if !mock.closed {
		t.Error("expected old index to be closed")
	}
}

func TestServices_ValidateAndSetEmbedding(t *testing.T) {
	config := domain.NewRuntimeConfig("qdrant")
	services := NewServices(config)
	ctx := context.Background()

	t.Run("successful validation", func(t *testing.T) {
		mock := &mockEmbeddingService{}
		err := services.ValidateAndSetEmbedding(ctx, mock)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if services.EmbeddingService() == nil {
			t.Error("expected embedding service to be set")
		}
	})

	t.Run("failed validation", func(t *testing.T) {
		mock := &mockEmbeddingService{healthCheckErr: errors.New("connection failed")}
		err := services.ValidateAndSetEmbedding(ctx, mock)
		if err == nil {
			t.Error("expected error")
		}
		if !mock.closed {
			t.Error("expected failed service to be closed")
		}
	})

	t.Run("nil service", func(t *testing.T) {
		err := services.ValidateAndSetEmbedding(ctx, nil)
		if err != nil {
			t.Errorf("unexpected error for nil service: %v", err)
		}
	})
}

func TestServices_ValidateAndSetLLM(t *testing.T) {
	config := domain.NewRuntimeConfig("qdrant")
	services := NewServices(config)
	ctx := context.Background()

	t.Run("successful validation", func(t *testing.T) {
		mock := &mockLLMService{}
		err := services.ValidateAndSetLLM(ctx, mock)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if services.LLMService() == nil {
			t.Error("expected LLM service to be set")
		}
	})

	t.Run("failed validation", func(t *testing.T) {
		mock := &mockLLMService{pingErr: errors.New("connection failed")}
		err := services.ValidateAndSetLLM(ctx, mock)
		if err == nil {
			t.Error("expected error")
		}
		if !mock.closed {
			t.Error("expected failed service to be closed")
		}
	})
}

func TestServices_ValidateAndSetVectorIndex(t *testing.T) {
	config := domain.NewRuntimeConfig("qdrant")
	services := NewServices(config)
	ctx := context.Background()

	t.Run("unreachable backend", func(t *testing.T) {
		mock := &mockVectorIndex{pingErr: errors.New("connection refused")}
		err := services.ValidateAndSetVectorIndex(ctx, mock)
		if err == nil {
			t.Error("expected error")
		}
		if !mock.closed {
			t.Error("expected failed index to be closed")
		}
		if config.IndexAvailable() {
			t.Error("expected index flag to stay down")
		}
	})

	t.Run("init failure", func(t *testing.T) {
		mock := &mockVectorIndex{initErr: errors.New("create collection failed")}
		if err := services.ValidateAndSetVectorIndex(ctx, mock); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("success", func(t *testing.T) {
		mock := &mockVectorIndex{}
		if err := services.ValidateAndSetVectorIndex(ctx, mock); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if !config.IndexAvailable() {
			t.Error("expected index to be available")
		}
	})
}

func TestServices_Close(t *testing.T) {
	config := domain.NewRuntimeConfig("qdrant")
	services := NewServices(config)

	embMock := &mockEmbeddingService{}
	llmMock := &mockLLMService{}
	idxMock := &mockVectorIndex{}

	services.SetEmbeddingService(embMock)
	services.SetLLMService(llmMock)
	services.SetVectorIndex(idxMock)

	if err := services.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if !embMock.closed || !llmMock.closed || !idxMock.closed {
		t.Error("expected all services to be closed")
	}
	if config.CanDoSemanticSearch() {
		t.Error("expected semantic search to be unavailable after close")
	}
}

func TestServices_ReplaceService_ClosesOld(t *testing.T) {
	config := domain.NewRuntimeConfig("qdrant")
	services := NewServices(config)

	old := &mockEmbeddingService{}
	replacement := &mockEmbeddingService{}

	services.SetEmbeddingService(old)
	services.SetEmbeddingService(replacement)

	if !old.closed {
		t.Error("expected old service to be closed when replaced")
	}
	if replacement.closed {
		t.Error("expected new service to remain open")
	}
}
