package domain

// SearchOptions configures a similarity search against the vector index.
type SearchOptions struct {
	Limit     int      `json:"limit"`
	Type      string   `json:"doc_type,omitempty"`   // equality filter on document type
	Domains   []string `json:"domains,omitempty"`    // membership filter on enriched domains
	Source    string   `json:"source,omitempty"`     // provenance filter
	DateStart string   `json:"date_start,omitempty"` // ISO 8601, inclusive
	DateEnd   string   `json:"date_end,omitempty"`   // ISO 8601, inclusive
}

// DefaultSearchLimit is applied when a request does not specify one.
const DefaultSearchLimit = 5

// Normalize applies limit defaults and bounds.
func (o SearchOptions) Normalize() SearchOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultSearchLimit
	}
	if o.Limit > 100 {
		o.Limit = 100
	}
	return o
}

// SearchRequest is the shape consumed by the query service from its
// caller (HTTP handler, CLI, tests).
type SearchRequest struct {
	Query     string   `json:"query"`
	Limit     int      `json:"limit,omitempty"`
	DocType   string   `json:"doc_type,omitempty"`
	Domains   []string `json:"domains,omitempty"`
	DateStart string   `json:"date_start,omitempty"`
	DateEnd   string   `json:"date_end,omitempty"`
}

// Options converts the request filters into index search options.
func (r SearchRequest) Options() SearchOptions {
	return SearchOptions{
		Limit:     r.Limit,
		Type:      r.DocType,
		Domains:   r.Domains,
		DateStart: r.DateStart,
		DateEnd:   r.DateEnd,
	}.Normalize()
}

// SearchHit is one entry of the search response shape exposed to callers.
type SearchHit struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Type     DocType        `json:"type"`
	Content  string         `json:"content"`
	Date     string         `json:"date"`
	URL      string         `json:"url,omitempty"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

// Hit converts a search result into the response shape, collapsing
// unknown type tags to "autre" at this presentation boundary.
func (r *SearchResult) Hit() SearchHit {
	d := r.Document
	return SearchHit{
		ID:       d.ID,
		Title:    d.Title,
		Type:     DisplayDocType(d.Type),
		Content:  d.Content,
		Date:     d.Date,
		URL:      d.URL,
		Metadata: d.Metadata,
		Score:    r.Score,
	}
}
