package mocks

import (
	"context"

	"github.com/juralis/juralis-core/internal/core/domain"
	"github.com/juralis/juralis-core/internal/core/ports/driven"
)

// Ensure MockConnector implements Connector
var _ driven.Connector = (*MockConnector)(nil)

// MockConnector is a mock implementation of Connector for testing
type MockConnector struct {
	IDValue      string
	NameValue    string
	MethodsValue []string
	FetchFn      func(ctx context.Context, method string, params map[string]string) ([]driven.RawRecord, error)
}

// NewMockConnector creates a new MockConnector
func NewMockConnector(id string) *MockConnector {
	return &MockConnector{
		IDValue:      id,
		NameValue:    id,
		MethodsValue: []string{"fetch_recent"},
	}
}

func (m *MockConnector) ID() string {
	return m.IDValue
}

func (m *MockConnector) Name() string {
	return m.NameValue
}

func (m *MockConnector) Methods() []string {
	return m.MethodsValue
}

func (m *MockConnector) Fetch(ctx context.Context, method string, params map[string]string) ([]driven.RawRecord, error) {
	if m.FetchFn != nil {
		return m.FetchFn(ctx, method, params)
	}
	return nil, nil
}

// MockSearchConnector is a MockConnector that also answers live keyword
// searches, for fallback-retrieval tests.
type MockSearchConnector struct {
	MockConnector
	SearchFn func(ctx context.Context, query string, limit int) ([]driven.RawRecord, error)
}

var _ driven.Searcher = (*MockSearchConnector)(nil)

// NewMockSearchConnector creates a new MockSearchConnector
func NewMockSearchConnector(id string) *MockSearchConnector {
	return &MockSearchConnector{MockConnector: *NewMockConnector(id)}
}

func (m *MockSearchConnector) Search(ctx context.Context, query string, limit int) ([]driven.RawRecord, error) {
	if m.SearchFn != nil {
		return m.SearchFn(ctx, query, limit)
	}
	return nil, nil
}

// RecordsForDocs builds raw records in the generic source shape, a
// convenience for connector fixtures.
func RecordsForDocs(docs ...*domain.Document) []driven.RawRecord {
	records := make([]driven.RawRecord, len(docs))
	for i, d := range docs {
		records[i] = driven.RawRecord{
			"id":      d.ID,
			"title":   d.Title,
			"content": d.Content,
			"type":    d.Type,
			"date":    d.Date,
			"url":     d.URL,
		}
	}
	return records
}
