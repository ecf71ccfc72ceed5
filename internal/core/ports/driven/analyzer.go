package driven

import "context"

// The analyzer ports wrap NLP capabilities used by the enrichment stage.
// All of them are injectable and optional: when an analyzer is nil or
// fails, the enricher falls back to its heuristic version and never lets
// the failure escape the enrichment boundary.

// LinguisticFeatures is the output of linguistic analysis over a text.
type LinguisticFeatures struct {
	WordCount     int
	SentenceCount int
	// Entities groups named-entity surface forms by entity type.
	Entities map[string][]string
	// Keywords are the top noun/adjective lemmas by frequency.
	Keywords []string
}

// LinguisticAnalyzer tokenizes and tags document content.
type LinguisticAnalyzer interface {
	Analyze(ctx context.Context, text string) (*LinguisticFeatures, error)
}

// DomainScore is a classifier label with its confidence.
type DomainScore struct {
	Label string
	Score float64
}

// DomainClassifier assigns legal-domain labels to a text.
type DomainClassifier interface {
	// Classify returns up to topK labels ordered by descending score.
	Classify(ctx context.Context, text string, topK int) ([]DomainScore, error)
}

// Summarizer produces an abstractive summary of a text.
type Summarizer interface {
	// Summarize condenses text to roughly minTokens..maxTokens tokens.
	Summarize(ctx context.Context, text string, minTokens, maxTokens int) (string, error)
}
