package mocks

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/juralis/juralis-core/internal/core/domain"
	"github.com/juralis/juralis-core/internal/core/ports/driven"
)

// Ensure MockVectorIndex implements VectorIndex
var _ driven.VectorIndex = (*MockVectorIndex)(nil)

// MockVectorIndex is an in-memory VectorIndex for testing. Search ranks
// by cosine similarity, descending score then ascending ID, like the
// real backends.
type MockVectorIndex struct {
	mu         sync.RWMutex
	points     map[string]*domain.IndexedPoint
	initCalls  int
	failSearch bool
	failUpsert bool
	failPing   bool
}

// NewMockVectorIndex creates a new MockVectorIndex
func NewMockVectorIndex() *MockVectorIndex {
	return &MockVectorIndex{points: make(map[string]*domain.IndexedPoint)}
}

func (m *MockVectorIndex) Init(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initCalls++
	return nil
}

func (m *MockVectorIndex) Upsert(ctx context.Context, point *domain.IndexedPoint) error {
	if m.failUpsert {
		return domain.ErrIndexUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points[point.Document.ID] = point
	return nil
}

func (m *MockVectorIndex) Search(ctx context.Context, vector []float32, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	if m.failSearch {
		return nil, domain.ErrIndexUnavailable
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	opts = opts.Normalize()

	var results []domain.SearchResult
	for _, p := range m.points {
		if !matchesFilters(p.Document, opts) {
			continue
		}
		results = append(results, domain.SearchResult{
			Document: p.Document,
			Score:    cosine(vector, p.Vector),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.ID < results[j].Document.ID
	})
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

func (m *MockVectorIndex) Get(ctx context.Context, id string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.points[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Document, nil
}

func (m *MockVectorIndex) Ping(ctx context.Context) error {
	if m.failPing {
		return domain.ErrIndexUnavailable
	}
	return nil
}

func (m *MockVectorIndex) Close() error {
	return nil
}

// Helper methods for testing

func (m *MockVectorIndex) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.points)
}

func (m *MockVectorIndex) InitCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initCalls
}

func (m *MockVectorIndex) SetFailSearch(fail bool) { m.failSearch = fail }
func (m *MockVectorIndex) SetFailUpsert(fail bool) { m.failUpsert = fail }
func (m *MockVectorIndex) SetFailPing(fail bool)   { m.failPing = fail }

func matchesFilters(doc *domain.Document, opts domain.SearchOptions) bool {
	if opts.Type != "" && doc.Type != opts.Type {
		return false
	}
	if opts.Source != "" {
		src, _ := doc.Metadata["source"].(string)
		if !strings.EqualFold(src, opts.Source) {
			return false
		}
	}
	if opts.DateStart != "" && doc.Date < opts.DateStart {
		return false
	}
	if opts.DateEnd != "" && doc.Date > opts.DateEnd {
		return false
	}
	if len(opts.Domains) > 0 {
		docDomains := doc.Domains()
		found := false
		for _, want := range opts.Domains {
			for _, have := range docDomains {
				if have == want {
					found = true
					break
				}
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
