package mocks

import (
	"context"
	"sync"

	"github.com/juralis/juralis-core/internal/core/domain"
	"github.com/juralis/juralis-core/internal/core/ports/driven"
)

// Ensure MockRunStore implements RunStore
var _ driven.RunStore = (*MockRunStore)(nil)

// MockRunStore is an in-memory RunStore for testing
type MockRunStore struct {
	mu   sync.RWMutex
	runs []*domain.IngestionRun
	err  error
}

// NewMockRunStore creates a new MockRunStore
func NewMockRunStore() *MockRunStore {
	return &MockRunStore{}
}

func (m *MockRunStore) Save(ctx context.Context, run *domain.IngestionRun) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

// Helper methods for testing

func (m *MockRunStore) Saved() []*domain.IngestionRun {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.IngestionRun, len(m.runs))
	copy(out, m.runs)
	return out
}

func (m *MockRunStore) SetError(err error) {
	m.err = err
}
