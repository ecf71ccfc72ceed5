// Package normalise converts loosely-typed source records into canonical
// documents using per-source field-mapping tables.
package normalise

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/juralis/juralis-core/internal/core/domain"
	"github.com/juralis/juralis-core/internal/core/ports/driven"
)

// Mapping describes how one source's raw records map onto canonical
// Document fields. Field name lists are tried in order; the first
// non-empty value wins.
type Mapping struct {
	// Source is the registry identifier, e.g. "legifrance". Document IDs
	// are prefixed with its uppercased form to avoid cross-source
	// collisions: "LEGIFRANCE-LEGIARTI000006436298".
	Source string

	// Name is the human-readable provenance recorded in metadata.
	Name string

	// DefaultType is applied when the record carries no type tag.
	DefaultType domain.DocType

	IDFields      []string
	TitleFields   []string
	ContentFields []string
	TypeFields    []string
	DateFields    []string
	URLFields     []string
}

// DefaultMapping covers the field names the connectors in this repository
// emit, plus the French aliases found on scraped regulatory sites.
func DefaultMapping(source, name string, defaultType domain.DocType) Mapping {
	return Mapping{
		Source:        source,
		Name:          name,
		DefaultType:   defaultType,
		IDFields:      []string{"id"},
		TitleFields:   []string{"title", "titre"},
		ContentFields: []string{"content", "contenu", "text"},
		TypeFields:    []string{"type"},
		DateFields:    []string{"date"},
		URLFields:     []string{"url"},
	}
}

// Normalise converts one raw record into a canonical Document.
// Missing id, title or content is a *domain.MissingFieldError; the
// caller logs and skips the record without aborting its batch.
func (m Mapping) Normalise(raw driven.RawRecord, now time.Time) (*domain.Document, error) {
	id := firstString(raw, m.IDFields)
	if id == "" {
		return nil, &domain.MissingFieldError{Field: "id"}
	}
	title := firstString(raw, m.TitleFields)
	if title == "" {
		return nil, &domain.MissingFieldError{Field: "title"}
	}
	content := firstString(raw, m.ContentFields)
	if content == "" {
		return nil, &domain.MissingFieldError{Field: "content"}
	}

	docType := firstString(raw, m.TypeFields)
	if docType == "" {
		docType = string(m.DefaultType)
	}
	date := firstString(raw, m.DateFields)
	if date == "" {
		date = now.Format("2006-01-02")
	}

	metadata := map[string]any{"source": m.Name}
	if md, ok := raw["metadata"].(map[string]any); ok {
		for k, v := range md {
			metadata[k] = v
		}
	}

	return &domain.Document{
		ID:       fmt.Sprintf("%s-%s", strings.ToUpper(m.Source), id),
		Title:    title,
		Content:  content,
		Type:     docType,
		Date:     date,
		URL:      firstString(raw, m.URLFields),
		Metadata: metadata,
	}, nil
}

func firstString(raw driven.RawRecord, fields []string) string {
	for _, f := range fields {
		switch v := raw[f].(type) {
		case string:
			if v != "" {
				return v
			}
		case fmt.Stringer:
			if s := v.String(); s != "" {
				return s
			}
		case float64:
			// JSON decodes numeric IDs as float64
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// Registry maps source identifiers to their field mappings.
type Registry struct {
	mu       sync.RWMutex
	mappings map[string]Mapping
	order    []string
}

// NewRegistry creates an empty mapping registry.
func NewRegistry() *Registry {
	return &Registry{mappings: make(map[string]Mapping)}
}

// Register adds or replaces the mapping for a source.
func (r *Registry) Register(m Mapping) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.mappings[m.Source]; !exists {
		r.order = append(r.order, m.Source)
	}
	r.mappings[m.Source] = m
}

// Get returns the mapping for a source ID.
// An unregistered source is domain.ErrUnknownSource.
func (r *Registry) Get(sourceID string) (Mapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mappings[sourceID]
	if !ok {
		return Mapping{}, fmt.Errorf("normalise: %q: %w", sourceID, domain.ErrUnknownSource)
	}
	return m, nil
}

// Sources returns registered source IDs in registration order.
func (r *Registry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
