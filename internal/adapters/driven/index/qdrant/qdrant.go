// Package qdrant implements the vector index port over Qdrant's REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/juralis/juralis-core/internal/core/domain"
	"github.com/juralis/juralis-core/internal/core/ports/driven"
)

// Ensure Index implements VectorIndex
var _ driven.VectorIndex = (*Index)(nil)

// Qdrant point IDs must be UUIDs or unsigned integers, so document IDs
// are hashed into deterministic UUIDs. The real ID travels in the payload.
var pointNamespace = uuid.NameSpaceURL

// Index is a minimal REST client to Qdrant.
// It assumes cosine distance and creates the collection if missing.
type Index struct {
	baseURL    string
	apiKey     string
	collection string
	dimensions int
	client     *http.Client
}

// Config holds Qdrant connection settings.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Dimensions int
	Timeout    time.Duration
}

// New creates a Qdrant-backed vector index.
func New(cfg Config) *Index {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collection := cfg.Collection
	if collection == "" {
		collection = "legal_documents"
	}
	return &Index{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		collection: collection,
		dimensions: cfg.Dimensions,
		client:     &http.Client{Timeout: timeout},
	}
}

// Init creates the collection if missing. Qdrant answers 200 when the
// collection already exists with the same schema and 409 when another
// writer won the creation race; both count as success.
func (x *Index) Init(ctx context.Context) error {
	if x.dimensions <= 0 {
		return fmt.Errorf("qdrant: invalid dimensions %d", x.dimensions)
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     x.dimensions,
			"distance": "Cosine",
		},
	}
	status, err := x.do(ctx, http.MethodPut, x.collectionURL(""), body, nil)
	if err != nil {
		return err
	}
	if status >= 300 && status != http.StatusConflict {
		return fmt.Errorf("qdrant: create collection: status %d", status)
	}
	return nil
}

// Upsert writes one point keyed by the document ID. Re-upserting the
// same ID replaces vector and payload.
func (x *Index) Upsert(ctx context.Context, point *domain.IndexedPoint) error {
	if err := point.Document.Validate(); err != nil {
		return fmt.Errorf("qdrant: %w", err)
	}
	body := map[string]any{
		"points": []map[string]any{{
			"id":      pointID(point.Document.ID),
			"vector":  point.Vector,
			"payload": point.Document,
		}},
	}
	status, err := x.do(ctx, http.MethodPut, x.collectionURL("/points?wait=true"), body, nil)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("qdrant: upsert: status %d", status)
	}
	return nil
}

// overfetchFactor compensates for the date and domain filters applied
// client-side after the similarity query.
const overfetchFactor = 4

// Search runs a similarity query. Type and source are pushed down as
// Qdrant match filters; date ranges and domain membership are applied
// client-side on the overfetched result set.
func (x *Index) Search(ctx context.Context, vector []float32, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	opts = opts.Normalize()

	req := map[string]any{
		"vector":       vector,
		"limit":        opts.Limit * overfetchFactor,
		"with_payload": true,
	}
	if f := qdrantFilter(opts); f != nil {
		req["filter"] = f
	}

	var resp struct {
		Result []struct {
			Score   float64         `json:"score"`
			Payload domain.Document `json:"payload"`
		} `json:"result"`
	}
	status, err := x.do(ctx, http.MethodPost, x.collectionURL("/points/search"), req, &resp)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, fmt.Errorf("qdrant: search: status %d", status)
	}

	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		doc := r.Payload
		if !matchesLocalFilters(&doc, opts) {
			continue
		}
		results = append(results, domain.SearchResult{Document: &doc, Score: r.Score})
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

// Get retrieves one document by its ID.
func (x *Index) Get(ctx context.Context, id string) (*domain.Document, error) {
	req := map[string]any{
		"ids":          []string{pointID(id)},
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Payload domain.Document `json:"payload"`
		} `json:"result"`
	}
	status, err := x.do(ctx, http.MethodPost, x.collectionURL("/points"), req, &resp)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, fmt.Errorf("qdrant: get: status %d", status)
	}
	if len(resp.Result) == 0 {
		return nil, domain.ErrNotFound
	}
	doc := resp.Result[0].Payload
	return &doc, nil
}

// Ping checks the backend is reachable.
func (x *Index) Ping(ctx context.Context) error {
	status, err := x.do(ctx, http.MethodGet, x.baseURL+"/collections", nil, nil)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("qdrant: ping: status %d", status)
	}
	return nil
}

// Close is a no-op; the HTTP client holds no connection state worth draining.
func (x *Index) Close() error {
	return nil
}

func (x *Index) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", x.baseURL, x.collection, suffix)
}

func (x *Index) do(ctx context.Context, method, url string, body, out any) (int, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("qdrant: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("qdrant: %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("qdrant: decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func pointID(docID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(docID)).String()
}

func qdrantFilter(opts domain.SearchOptions) map[string]any {
	var must []map[string]any
	if opts.Type != "" {
		must = append(must, map[string]any{
			"key":   "type",
			"match": map[string]any{"value": opts.Type},
		})
	}
	if opts.Source != "" {
		must = append(must, map[string]any{
			"key":   "metadata.source",
			"match": map[string]any{"value": opts.Source},
		})
	}
	if must == nil {
		return nil
	}
	return map[string]any{"must": must}
}

func matchesLocalFilters(doc *domain.Document, opts domain.SearchOptions) bool {
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
