package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/juralis/juralis-core/internal/core/domain"
	"github.com/juralis/juralis-core/internal/core/ports/driven"
)

// Ensure EurLex implements Connector and Searcher
var (
	_ driven.Connector = (*EurLex)(nil)
	_ driven.Searcher  = (*EurLex)(nil)
)

const eurlexBaseURL = "https://eur-lex.europa.eu/search-api"

// EurLex fetches EU regulations and directives. Without an API key it
// serves the embedded corpus.
type EurLex struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// EurLexConfig holds EUR-Lex web service settings.
type EurLexConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewEurLex creates the EUR-Lex connector.
func NewEurLex(cfg EurLexConfig) *EurLex {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = eurlexBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &EurLex{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (e *EurLex) ID() string   { return "eurlex" }
func (e *EurLex) Name() string { return "EUR-Lex" }

func (e *EurLex) Methods() []string {
	return []string{"fetch_regulations", "fetch_directives"}
}

// Fetch runs one extraction method.
func (e *EurLex) Fetch(ctx context.Context, method string, params map[string]string) ([]driven.RawRecord, error) {
	var docType string
	switch method {
	case "fetch_regulations":
		docType = string(domain.DocTypeRegulationEU)
	case "fetch_directives":
		docType = string(domain.DocTypeDirectiveEU)
	default:
		return nil, fmt.Errorf("eurlex: method %q: %w", method, domain.ErrUnknownMethod)
	}

	if e.apiKey == "" {
		out := make([]driven.RawRecord, 0, len(eurlexCorpus))
		for _, rec := range eurlexCorpus {
			if rec["type"] == docType {
				out = append(out, rec)
			}
		}
		return out, nil
	}
	return e.search(ctx, "", docType, 50)
}

// Search performs a live full-text search.
func (e *EurLex) Search(ctx context.Context, query string, limit int) ([]driven.RawRecord, error) {
	if e.apiKey == "" {
		return sampleSearch(eurlexCorpus, query, limit), nil
	}
	return e.search(ctx, query, "", limit)
}

func (e *EurLex) search(ctx context.Context, query, docType string, limit int) ([]driven.RawRecord, error) {
	q := url.Values{
		"lang":     {"fr"},
		"type":     {docType},
		"text":     {query},
		"pageSize": {fmt.Sprint(limit)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/documents?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("eurlex: search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("eurlex: search: status %d", resp.StatusCode)
	}

	var parsed struct {
		Documents []struct {
			Celex   string `json:"celex"`
			Title   string `json:"title"`
			Content string `json:"content"`
			Date    string `json:"date"`
			Type    string `json:"type"`
		} `json:"documents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("eurlex: decode: %w", err)
	}

	records := make([]driven.RawRecord, 0, len(parsed.Documents))
	for _, d := range parsed.Documents {
		t := d.Type
		if t == "" {
			t = docType
		}
		records = append(records, driven.RawRecord{
			"id":      d.Celex,
			"title":   d.Title,
			"content": d.Content,
			"type":    t,
			"date":    d.Date,
			"url":     "https://eur-lex.europa.eu/legal-content/FR/TXT/?uri=CELEX:" + d.Celex,
		})
	}
	return records, nil
}
