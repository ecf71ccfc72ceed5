package driven

import (
	"context"
)

// RawRecord is a loosely-typed record produced by a source connector.
// It has no fixed schema beyond carrying enough fields for the
// normaliser's per-source mapping table to populate id, title, content.
type RawRecord = map[string]any

// Connector fetches raw legal records from one provider (statute API,
// case-law API, EU law database).
type Connector interface {
	// ID returns the source identifier used in the registry and as the
	// document ID prefix (e.g. "legifrance").
	ID() string

	// Name returns the human-readable provider name.
	Name() string

	// Methods returns the named extraction methods this connector declares.
	Methods() []string

	// Fetch runs one extraction method and returns raw records.
	// An undeclared method is domain.ErrUnknownMethod.
	Fetch(ctx context.Context, method string, params map[string]string) ([]RawRecord, error)
}

// Searcher is an optional connector capability: live full-text search
// against the provider. The query service uses it as a fallback when
// the vector index is sparse.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]RawRecord, error)
}

// ConnectorRegistry maps source identifiers to connectors.
// Dispatch is by explicit registration; an unknown source is
// domain.ErrUnknownSource, never a reflective lookup failure.
type ConnectorRegistry interface {
	// Register registers a connector under its ID.
	Register(c Connector)

	// Get returns the connector for a source ID.
	Get(sourceID string) (Connector, error)

	// List returns all registered connectors in registration order.
	List() []Connector

	// Searchers returns registered connectors that support live search,
	// in registration order.
	Searchers() []Connector
}
