package domain

// DocType classifies a legal document.
type DocType string

const (
	DocTypeLoi              DocType = "loi"
	DocTypeJurisprudence    DocType = "jurisprudence"
	DocTypeReglementation   DocType = "reglementation"
	DocTypeCirculaire       DocType = "circulaire"
	DocTypeRegulationEU     DocType = "regulation_eu"
	DocTypeDirectiveEU      DocType = "directive_eu"
	DocTypeDecisionConst    DocType = "decision_constitutionnelle"
	DocTypeJurisprudenceAdm DocType = "jurisprudence_administrative"
	DocTypeFiscal           DocType = "fiscal"
	DocTypeAutre            DocType = "autre"
)

var knownDocTypes = map[DocType]struct{}{
	DocTypeLoi:              {},
	DocTypeJurisprudence:    {},
	DocTypeReglementation:   {},
	DocTypeCirculaire:       {},
	DocTypeRegulationEU:     {},
	DocTypeDirectiveEU:      {},
	DocTypeDecisionConst:    {},
	DocTypeJurisprudenceAdm: {},
	DocTypeFiscal:           {},
	DocTypeAutre:            {},
}

// ParseDocType maps a free-text type tag onto a known DocType.
// Unknown values are reported explicitly rather than silently coerced;
// callers at presentation boundaries substitute DocTypeAutre themselves.
func ParseDocType(s string) (DocType, bool) {
	t := DocType(s)
	_, ok := knownDocTypes[t]
	return t, ok
}

// DisplayDocType returns the presentation form of a stored type tag.
// The stored value is kept as-given; only the display collapses to "autre".
func DisplayDocType(s string) DocType {
	if t, ok := ParseDocType(s); ok {
		return t
	}
	return DocTypeAutre
}

// Document is the canonical, source-agnostic legal-text record.
// Immutable after creation except for metadata enrichment, which always
// operates on a copy (see Clone).
type Document struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Type     string         `json:"type"` // stored as given by the source
	Date     string         `json:"date"` // ISO 8601 date
	URL      string         `json:"url,omitempty"`
	Metadata map[string]any `json:"metadata"`
}

// Validate checks the invariant required for a Document to enter the
// vector index: id, title and content must all be present.
func (d *Document) Validate() error {
	switch {
	case d.ID == "":
		return &MissingFieldError{Field: "id"}
	case d.Title == "":
		return &MissingFieldError{Field: "title"}
	case d.Content == "":
		return &MissingFieldError{Field: "content"}
	}
	return nil
}

// Clone returns a copy of the document with its own metadata map.
func (d *Document) Clone() *Document {
	c := *d
	c.Metadata = make(map[string]any, len(d.Metadata)+8)
	for k, v := range d.Metadata {
		c.Metadata[k] = v
	}
	return &c
}

// Domains returns the enriched legal-domain tags, if any.
func (d *Document) Domains() []string {
	if d.Metadata == nil {
		return nil
	}
	switch v := d.Metadata["domains"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// IndexedPoint is the persisted unit of the vector index: the document
// payload plus the embedding of its content. One point per document ID;
// upserting the same ID replaces both vector and payload.
type IndexedPoint struct {
	Document *Document `json:"document"`
	Vector   []float32 `json:"vector"`
}

// SearchResult is a document returned by similarity search, with its
// cosine similarity score (higher = closer). Never persisted.
type SearchResult struct {
	Document *Document `json:"document"`
	Score    float64   `json:"score"`
}
