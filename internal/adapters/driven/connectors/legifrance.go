package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/juralis/juralis-core/internal/core/domain"
	"github.com/juralis/juralis-core/internal/core/ports/driven"
)

// Ensure Legifrance implements Connector and Searcher
var (
	_ driven.Connector = (*Legifrance)(nil)
	_ driven.Searcher  = (*Legifrance)(nil)
)

const (
	legifranceTokenURL = "https://oauth.piste.gouv.fr/api/oauth/token"
	legifranceBaseURL  = "https://api.piste.gouv.fr/dila/legifrance/lf-engine-app"
)

// Legifrance fetches French statutes and case law from the PISTE API.
// Without credentials it serves a small embedded corpus so the pipeline
// stays usable in development and demos.
type Legifrance struct {
	clientID     string
	clientSecret string
	tokenURL     string
	baseURL      string
	client       *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// LegifranceConfig holds PISTE API credentials and endpoints.
type LegifranceConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	BaseURL      string
	Timeout      time.Duration
}

// NewLegifrance creates the Légifrance connector.
func NewLegifrance(cfg LegifranceConfig) *Legifrance {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = legifranceTokenURL
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = legifranceBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Legifrance{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		tokenURL:     tokenURL,
		baseURL:      baseURL,
		client:       &http.Client{Timeout: timeout},
	}
}

func (l *Legifrance) ID() string   { return "legifrance" }
func (l *Legifrance) Name() string { return "Légifrance" }

func (l *Legifrance) Methods() []string {
	return []string{"fetch_recent_laws", "fetch_code_articles"}
}

// Fetch runs one extraction method.
func (l *Legifrance) Fetch(ctx context.Context, method string, params map[string]string) ([]driven.RawRecord, error) {
	if !l.configured() {
		return legifranceSamples(method)
	}

	switch method {
	case "fetch_recent_laws":
		return l.fetchRecentLaws(ctx, params)
	case "fetch_code_articles":
		return l.fetchCodeArticles(ctx, params)
	default:
		return nil, fmt.Errorf("legifrance: method %q: %w", method, domain.ErrUnknownMethod)
	}
}

// Search performs a live full-text search against the API, used by the
// query service's fallback path.
func (l *Legifrance) Search(ctx context.Context, query string, limit int) ([]driven.RawRecord, error) {
	if !l.configured() {
		return sampleSearch(legifranceCorpus, query, limit), nil
	}

	body := map[string]any{
		"recherche": map[string]any{
			"champs": []map[string]any{{
				"typeChamp": "ALL",
				"criteres": []map[string]any{{
					"typeRecherche": "TOUS_LES_MOTS_DANS_UN_CHAMP",
					"valeur":        query,
					"operateur":     "ET",
				}},
			}},
			"pageNumber":     1,
			"pageSize":       limit,
			"typePagination": "DEFAUT",
		},
		"fond": "LODA_DATE",
	}
	var resp struct {
		Results []struct {
			Titles []struct {
				Title string `json:"title"`
				ID    string `json:"id"`
			} `json:"titles"`
			Text string `json:"text"`
			Date string `json:"date"`
		} `json:"results"`
	}
	if err := l.post(ctx, "/search", body, &resp); err != nil {
		return nil, err
	}

	records := make([]driven.RawRecord, 0, len(resp.Results))
	for _, r := range resp.Results {
		if len(r.Titles) == 0 {
			continue
		}
		records = append(records, driven.RawRecord{
			"id":      r.Titles[0].ID,
			"title":   r.Titles[0].Title,
			"content": r.Text,
			"type":    string(domain.DocTypeLoi),
			"date":    r.Date,
			"url":     legifranceDocURL(r.Titles[0].ID),
		})
	}
	return records, nil
}

func (l *Legifrance) fetchRecentLaws(ctx context.Context, params map[string]string) ([]driven.RawRecord, error) {
	days := params["days"]
	if days == "" {
		days = "30"
	}
	body := map[string]any{
		"fond":      "LODA_DATE",
		"nbElement": 50,
		"triDate":   "DATE_DESC",
		"periode":   days,
	}
	var resp struct {
		Items []struct {
			ID    string `json:"id"`
			Title string `json:"titre"`
			Text  string `json:"texte"`
			Date  string `json:"date"`
			Type  string `json:"nature"`
		} `json:"items"`
	}
	if err := l.post(ctx, "/list/loda", body, &resp); err != nil {
		return nil, err
	}

	records := make([]driven.RawRecord, 0, len(resp.Items))
	for _, it := range resp.Items {
		records = append(records, driven.RawRecord{
			"id":      it.ID,
			"title":   it.Title,
			"content": it.Text,
			"type":    normaliseNature(it.Type),
			"date":    it.Date,
			"url":     legifranceDocURL(it.ID),
		})
	}
	return records, nil
}

func (l *Legifrance) fetchCodeArticles(ctx context.Context, params map[string]string) ([]driven.RawRecord, error) {
	code := params["code"]
	if code == "" {
		code = "LEGITEXT000006072050" // code du travail
	}
	body := map[string]any{"textId": code, "abrogated": false}
	var resp struct {
		Articles []struct {
			ID      string `json:"id"`
			Num     string `json:"num"`
			Content string `json:"texte"`
			Date    string `json:"dateDebut"`
		} `json:"articles"`
		Title string `json:"title"`
	}
	if err := l.post(ctx, "/consult/legiPart", body, &resp); err != nil {
		return nil, err
	}

	records := make([]driven.RawRecord, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		records = append(records, driven.RawRecord{
			"id":      a.ID,
			"title":   fmt.Sprintf("Article %s - %s", a.Num, resp.Title),
			"content": a.Content,
			"type":    string(domain.DocTypeLoi),
			"date":    a.Date,
			"url":     legifranceDocURL(a.ID),
		})
	}
	return records, nil
}

func (l *Legifrance) configured() bool {
	return l.clientID != "" && l.clientSecret != ""
}

// token returns a cached OAuth access token, refreshing it when less
// than a minute of validity remains.
func (l *Legifrance) token(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.accessToken != "" && time.Until(l.tokenExpiry) > time.Minute {
		return l.accessToken, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {l.clientID},
		"client_secret": {l.clientSecret},
		"scope":         {"openid"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("legifrance: token request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("legifrance: token request: status %d", resp.StatusCode)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("legifrance: decode token: %w", err)
	}

	l.accessToken = tok.AccessToken
	l.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return l.accessToken, nil
}

func (l *Legifrance) post(ctx context.Context, path string, body, out any) error {
	token, err := l.token(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("legifrance: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("legifrance: POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("legifrance: POST %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func legifranceDocURL(id string) string {
	return "https://www.legifrance.gouv.fr/loda/id/" + id
}

func normaliseNature(nature string) string {
	switch strings.ToUpper(nature) {
	case "LOI", "ORDONNANCE":
		return string(domain.DocTypeLoi)
	case "DECRET", "ARRETE":
		return string(domain.DocTypeReglementation)
	case "CIRCULAIRE":
		return string(domain.DocTypeCirculaire)
	default:
		return string(domain.DocTypeAutre)
	}
}
