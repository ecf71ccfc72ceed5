package mocks

import (
	"context"

	"github.com/juralis/juralis-core/internal/core/ports/driven"
)

// Ensure MockLLMService implements LLMService
var _ driven.LLMService = (*MockLLMService)(nil)

// MockLLMService is a mock implementation of LLMService for testing
type MockLLMService struct {
	CompleteFn func(ctx context.Context, system, prompt string) (string, error)
	PingFn     func(ctx context.Context) error
}

// NewMockLLMService creates a new MockLLMService
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{}
}

func (m *MockLLMService) Complete(ctx context.Context, system, prompt string) (string, error) {
	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, system, prompt)
	}
	return "", nil
}

func (m *MockLLMService) Ping(ctx context.Context) error {
	if m.PingFn != nil {
		return m.PingFn(ctx)
	}
	return nil
}

func (m *MockLLMService) Close() error {
	return nil
}
