package domain

import "time"

// LegalDomain enumerates the legal domains a question can be tagged with.
type LegalDomain string

const (
	DomainFiscal       LegalDomain = "fiscal"
	DomainTravail      LegalDomain = "travail"
	DomainAffaires     LegalDomain = "affaires"
	DomainFamille      LegalDomain = "famille"
	DomainImmobilier   LegalDomain = "immobilier"
	DomainConsommation LegalDomain = "consommation"
	DomainPenal        LegalDomain = "penal"
	DomainAutre        LegalDomain = "autre"
)

// QueryRequest is a natural-language legal question with optional scoping.
type QueryRequest struct {
	Query   string `json:"query"`
	Domain  string `json:"domain,omitempty"`
	Context string `json:"context,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// QueryAnalysis is the pre-retrieval breakdown of a question: the legal
// domain it belongs to and the key concepts to search for.
type QueryAnalysis struct {
	Domain         string   `json:"domain"`
	KeyConcepts    []string `json:"key_concepts"`
	PossibleLaws   []string `json:"possible_laws"`
	QueryRephrased string   `json:"query_rephrased"`
}

// DefaultDisclaimer accompanies every generated answer.
const DefaultDisclaimer = "Cette réponse est fournie à titre informatif uniquement et ne constitue pas un avis juridique. Consultez un professionnel du droit pour un avis personnalisé."

// LegalAnswer is the structured response composed from retrieved sources.
// The query service always returns a well-formed answer, possibly a
// degraded one, never an error to the caller.
type LegalAnswer struct {
	Introduction    string   `json:"introduction"`
	LegalFramework  string   `json:"legal_framework"`
	Application     string   `json:"application"`
	Exceptions      string   `json:"exceptions,omitempty"`
	Recommendations []string `json:"recommendations"`
	Sources         []string `json:"sources"`
	DateUpdated     string   `json:"date_updated"`
	Disclaimer      string   `json:"disclaimer"`
}

// DegradedAnswer is returned when answer composition itself failed.
func DegradedAnswer() *LegalAnswer {
	return &LegalAnswer{
		Introduction:   "Nous avons rencontré une difficulté lors du traitement de votre question.",
		LegalFramework: "Nous ne pouvons pas fournir le cadre légal pour le moment.",
		Application:    "Veuillez nous excuser pour ce désagrément.",
		Recommendations: []string{
			"Réessayez ultérieurement",
			"Contactez notre support si le problème persiste",
		},
		Sources:     []string{"Aucune source disponible"},
		DateUpdated: time.Now().Format("2006-01-02"),
		Disclaimer:  DefaultDisclaimer,
	}
}
