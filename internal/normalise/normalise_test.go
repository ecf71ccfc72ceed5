package normalise

import (
	"errors"
	"testing"
	"time"

	"github.com/juralis/juralis-core/internal/core/domain"
	"github.com/juralis/juralis-core/internal/core/ports/driven"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestNormaliseFieldResolution(t *testing.T) {
	mapping := DefaultMapping("legifrance", "Légifrance", domain.DocTypeLoi)

	tests := []struct {
		name string
		raw  driven.RawRecord
		want domain.Document
	}{
		{
			name: "canonical field names",
			raw: driven.RawRecord{
				"id":      "LEGIARTI000006436298",
				"title":   "Article 544",
				"content": "La propriété est le droit de jouir des choses.",
				"type":    "loi",
				"date":    "1804-01-27",
				"url":     "https://www.legifrance.gouv.fr/article/544",
			},
			want: domain.Document{
				ID:      "LEGIFRANCE-LEGIARTI000006436298",
				Title:   "Article 544",
				Content: "La propriété est le droit de jouir des choses.",
				Type:    "loi",
				Date:    "1804-01-27",
				URL:     "https://www.legifrance.gouv.fr/article/544",
			},
		},
		{
			name: "french aliases titre and contenu",
			raw: driven.RawRecord{
				"id":      "X1",
				"titre":   "Titre français",
				"contenu": "Contenu français.",
			},
			want: domain.Document{
				ID:      "LEGIFRANCE-X1",
				Title:   "Titre français",
				Content: "Contenu français.",
				Type:    "loi",
				Date:    "2025-03-10",
			},
		},
		{
			name: "text alias for content",
			raw: driven.RawRecord{
				"id":    "X2",
				"title": "Titre",
				"text":  "Corps du texte.",
			},
			want: domain.Document{
				ID:      "LEGIFRANCE-X2",
				Title:   "Titre",
				Content: "Corps du texte.",
				Type:    "loi",
				Date:    "2025-03-10",
			},
		},
		{
			name: "earlier alias wins over later",
			raw: driven.RawRecord{
				"id":      "X3",
				"title":   "Anglais",
				"titre":   "Français",
				"content": "Corps.",
			},
			want: domain.Document{
				ID:      "LEGIFRANCE-X3",
				Title:   "Anglais",
				Content: "Corps.",
				Type:    "loi",
				Date:    "2025-03-10",
			},
		},
		{
			name: "numeric id formatted without exponent",
			raw: driven.RawRecord{
				"id":      float64(2024001),
				"title":   "Décision",
				"content": "Corps.",
			},
			want: domain.Document{
				ID:      "LEGIFRANCE-2024001",
				Title:   "Décision",
				Content: "Corps.",
				Type:    "loi",
				Date:    "2025-03-10",
			},
		},
		{
			name: "explicit type kept over default",
			raw: driven.RawRecord{
				"id":      "X4",
				"title":   "Arrêt",
				"content": "Corps.",
				"type":    "jurisprudence",
			},
			want: domain.Document{
				ID:      "LEGIFRANCE-X4",
				Title:   "Arrêt",
				Content: "Corps.",
				Type:    "jurisprudence",
				Date:    "2025-03-10",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := mapping.Normalise(tt.raw, testNow)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if doc.ID != tt.want.ID {
				t.Errorf("ID = %q, want %q", doc.ID, tt.want.ID)
			}
			if doc.Title != tt.want.Title {
				t.Errorf("Title = %q, want %q", doc.Title, tt.want.Title)
			}
			if doc.Content != tt.want.Content {
				t.Errorf("Content = %q, want %q", doc.Content, tt.want.Content)
			}
			if doc.Type != tt.want.Type {
				t.Errorf("Type = %q, want %q", doc.Type, tt.want.Type)
			}
			if doc.Date != tt.want.Date {
				t.Errorf("Date = %q, want %q", doc.Date, tt.want.Date)
			}
			if doc.URL != tt.want.URL {
				t.Errorf("URL = %q, want %q", doc.URL, tt.want.URL)
			}
			if got := doc.Metadata["source"]; got != "Légifrance" {
				t.Errorf("metadata source = %v", got)
			}
		})
	}
}

func TestNormaliseRejectsMissingFields(t *testing.T) {
	mapping := DefaultMapping("eurlex", "EUR-Lex", domain.DocTypeRegulationEU)

	tests := []struct {
		name  string
		raw   driven.RawRecord
		field string
	}{
		{"missing id", driven.RawRecord{"title": "T", "content": "C"}, "id"},
		{"missing title", driven.RawRecord{"id": "1", "content": "C"}, "title"},
		{"missing content", driven.RawRecord{"id": "1", "title": "T"}, "content"},
		{"empty strings count as missing", driven.RawRecord{"id": "", "title": "T", "content": "C"}, "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mapping.Normalise(tt.raw, testNow)
			var missing *domain.MissingFieldError
			if !errors.As(err, &missing) {
				t.Fatalf("err = %v, want MissingFieldError", err)
			}
			if missing.Field != tt.field {
				t.Errorf("field = %q, want %q", missing.Field, tt.field)
			}
		})
	}
}

func TestNormaliseMergesRecordMetadata(t *testing.T) {
	mapping := DefaultMapping("eurlex", "EUR-Lex", domain.DocTypeRegulationEU)
	doc, err := mapping.Normalise(driven.RawRecord{
		"id":      "32016R0679",
		"title":   "RGPD",
		"content": "Règlement général sur la protection des données.",
		"metadata": map[string]any{
			"celex":  "32016R0679",
			"source": "écrasé",
		},
	}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Metadata["celex"] != "32016R0679" {
		t.Errorf("celex = %v", doc.Metadata["celex"])
	}
	// Record metadata wins over the provenance default.
	if doc.Metadata["source"] != "écrasé" {
		t.Errorf("source = %v", doc.Metadata["source"])
	}
}

func TestRegistryUnknownSource(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("inconnu"); !errors.Is(err, domain.ErrUnknownSource) {
		t.Errorf("err = %v, want ErrUnknownSource", err)
	}
}

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(DefaultMapping("b", "B", domain.DocTypeLoi))
	r.Register(DefaultMapping("a", "A", domain.DocTypeLoi))
	r.Register(DefaultMapping("b", "B2", domain.DocTypeLoi)) // replace, no reorder

	got := r.Sources()
	if len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Errorf("Sources = %v", got)
	}
	m, err := r.Get("b")
	if err != nil || m.Name != "B2" {
		t.Errorf("Get(b) = (%+v, %v)", m, err)
	}
}
