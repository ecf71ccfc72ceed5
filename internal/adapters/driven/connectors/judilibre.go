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

// Ensure Judilibre implements Connector and Searcher
var (
	_ driven.Connector = (*Judilibre)(nil)
	_ driven.Searcher  = (*Judilibre)(nil)
)

const judilibreBaseURL = "https://api.piste.gouv.fr/cassation/judilibre/v1.0"

// Judilibre fetches Cour de cassation case law from the Judilibre open
// data API on the PISTE platform. Without credentials it serves the
// embedded corpus.
type Judilibre struct {
	keyID   string
	token   string
	baseURL string
	client  *http.Client
}

// JudilibreConfig holds the PISTE application credentials.
type JudilibreConfig struct {
	KeyID   string
	Token   string
	BaseURL string
	Timeout time.Duration
}

// NewJudilibre creates the Judilibre connector.
func NewJudilibre(cfg JudilibreConfig) *Judilibre {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = judilibreBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Judilibre{
		keyID:   cfg.KeyID,
		token:   cfg.Token,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (j *Judilibre) ID() string   { return "judilibre" }
func (j *Judilibre) Name() string { return "Judilibre" }

func (j *Judilibre) Methods() []string {
	return []string{"fetch_decisions"}
}

func (j *Judilibre) configured() bool {
	return j.keyID != "" && j.token != ""
}

// Fetch runs one extraction method. Params narrow the search: "query",
// "chamber", "solution", "date_start" and "date_end" map directly onto
// the API's search parameters.
func (j *Judilibre) Fetch(ctx context.Context, method string, params map[string]string) ([]driven.RawRecord, error) {
	if method != "fetch_decisions" {
		return nil, fmt.Errorf("judilibre: method %q: %w", method, domain.ErrUnknownMethod)
	}
	if !j.configured() {
		return judilibreCorpus, nil
	}

	q := url.Values{"page_size": {"50"}}
	for _, key := range []string{"query", "chamber", "solution", "date_start", "date_end"} {
		if v := params[key]; v != "" {
			q.Set(key, v)
		}
	}
	return j.search(ctx, q)
}

// Search performs a live full-text search over decisions.
func (j *Judilibre) Search(ctx context.Context, query string, limit int) ([]driven.RawRecord, error) {
	if !j.configured() {
		return sampleSearch(judilibreCorpus, query, limit), nil
	}
	q := url.Values{
		"query":     {query},
		"page_size": {fmt.Sprint(limit)},
	}
	return j.search(ctx, q)
}

func (j *Judilibre) search(ctx context.Context, q url.Values) ([]driven.RawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("KeyId", j.keyID)
	req.Header.Set("Authorization", "Bearer "+j.token)
	req.Header.Set("Accept", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("judilibre: search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("judilibre: search: status %d", resp.StatusCode)
	}

	var parsed struct {
		Decisions []struct {
			ID           string   `json:"id"`
			Jurisdiction string   `json:"jurisdiction"`
			Chamber      string   `json:"chamber"`
			Number       string   `json:"number"`
			Solution     string   `json:"solution"`
			DecisionDate string   `json:"decision_date"`
			Summary      string   `json:"summary"`
			Text         string   `json:"text"`
			Files        []string `json:"files"`
		} `json:"decisions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("judilibre: decode: %w", err)
	}

	records := make([]driven.RawRecord, 0, len(parsed.Decisions))
	for _, d := range parsed.Decisions {
		// Search responses carry the summary only; the full text comes
		// from the per-decision endpoint and is used when present.
		content := d.Text
		if content == "" {
			content = d.Summary
		}
		rec := driven.RawRecord{
			"id":      d.ID,
			"title":   decisionTitle(d.Jurisdiction, d.Chamber, d.Number, d.Solution),
			"content": content,
			"type":    string(domain.DocTypeJurisprudence),
			"date":    d.DecisionDate,
		}
		if len(d.Files) > 0 {
			rec["url"] = d.Files[0]
		}
		records = append(records, rec)
	}
	return records, nil
}

// decisionTitle builds a citation-style title, since Judilibre records
// carry no title field of their own.
func decisionTitle(jurisdiction, chamber, number, solution string) string {
	title := jurisdiction
	if chamber != "" {
		title += ", " + chamber
	}
	if number != "" {
		title += ", pourvoi n° " + number
	}
	if solution != "" {
		title += " (" + solution + ")"
	}
	return title
}
