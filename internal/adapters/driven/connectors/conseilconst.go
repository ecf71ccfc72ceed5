package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/juralis/juralis-core/internal/core/domain"
	"github.com/juralis/juralis-core/internal/core/ports/driven"
)

// Ensure ConseilConstitutionnel implements Connector
var _ driven.Connector = (*ConseilConstitutionnel)(nil)

const conseilConstBaseURL = "https://www.conseil-constitutionnel.fr/api"

// ConseilConstitutionnel fetches constitutional decisions from the
// conseil's open data feed. It is fetch-only: the site offers no usable
// live search API, so it does not participate in fallback retrieval.
type ConseilConstitutionnel struct {
	baseURL string
	offline bool
	client  *http.Client
}

// ConseilConstConfig holds the open data feed settings.
type ConseilConstConfig struct {
	BaseURL string
	Offline bool
	Timeout time.Duration
}

// NewConseilConstitutionnel creates the connector.
func NewConseilConstitutionnel(cfg ConseilConstConfig) *ConseilConstitutionnel {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = conseilConstBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ConseilConstitutionnel{
		baseURL: baseURL,
		offline: cfg.Offline,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *ConseilConstitutionnel) ID() string   { return "conseil_constitutionnel" }
func (c *ConseilConstitutionnel) Name() string { return "Conseil constitutionnel" }

func (c *ConseilConstitutionnel) Methods() []string {
	return []string{"fetch_decisions"}
}

// Fetch runs one extraction method.
func (c *ConseilConstitutionnel) Fetch(ctx context.Context, method string, params map[string]string) ([]driven.RawRecord, error) {
	if method != "fetch_decisions" {
		return nil, fmt.Errorf("conseil_constitutionnel: method %q: %w", method, domain.ErrUnknownMethod)
	}
	if c.offline {
		return conseilConstCorpus, nil
	}

	year := params["year"]
	url := c.baseURL + "/decisions"
	if year != "" {
		url += "?year=" + year
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("conseil_constitutionnel: fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("conseil_constitutionnel: fetch: status %d", resp.StatusCode)
	}

	var parsed struct {
		Decisions []struct {
			Number string `json:"numero"`
			Title  string `json:"titre"`
			Text   string `json:"texte"`
			Date   string `json:"date"`
			URL    string `json:"url"`
		} `json:"decisions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("conseil_constitutionnel: decode: %w", err)
	}

	records := make([]driven.RawRecord, 0, len(parsed.Decisions))
	for _, d := range parsed.Decisions {
		records = append(records, driven.RawRecord{
			"id":      d.Number,
			"title":   d.Title,
			"content": d.Text,
			"type":    string(domain.DocTypeDecisionConst),
			"date":    d.Date,
			"url":     d.URL,
		})
	}
	return records, nil
}
