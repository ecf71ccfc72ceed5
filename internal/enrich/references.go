package enrich

import (
	"regexp"
	"sort"
	"strings"
)

// LegalReference is one article or case-law citation found in a text.
type LegalReference struct {
	Text string `json:"text"`
	Code string `json:"code,omitempty"`
	Type string `json:"type,omitempty"`
}

var (
	// "article L.1234-5 du code du travail", "articles 544 du code civil",
	// "L. 311-1 du code de la consommation"
	articlePattern = regexp.MustCompile(
		`(?i)(?:articles?\s+(?:[LRD]\.?\s*)?|[LRD]\.\s*)(\d+(?:[-.]\d+)*)` +
			`(?:\s+(?:du|de\s+la|de|des)\s+(code\s+[a-zéèêàâôùûçë'\s-]+?))?(?:[\s,.;)]|$)`)

	// "arrêt n° 20-23.428 du 25 mai 2022", "décision numéro 453080"
	decisionPattern = regexp.MustCompile(
		`(?i)(?:arrêt|décision)(?:\s+(?:n°|numéro))?\s+(\d+(?:[-_.]\d+)*)` +
			`(?:\s+(?:du|de\s+la)\s+[a-zéèêàâôùûçë'\s\d]+)?`)

	knownCodeMarkers = []string{"civil", "pénal", "commerce", "travail", "consommation"}
)

// extractLegalReferences scans content for article citations and
// jurisprudence citations. It also returns the distinct set of code
// names mentioned, sorted for stable output.
func extractLegalReferences(content string) ([]LegalReference, []string) {
	var refs []LegalReference
	codes := make(map[string]struct{})

	for _, m := range articlePattern.FindAllStringSubmatch(content, -1) {
		ref := LegalReference{Text: strings.TrimRight(strings.TrimSpace(m[0]), ",.;)")}
		if code := strings.TrimSpace(m[2]); code != "" && isKnownCode(code) {
			ref.Code = code
			codes[code] = struct{}{}
		}
		refs = append(refs, ref)
	}

	for _, m := range decisionPattern.FindAllStringSubmatch(content, -1) {
		refs = append(refs, LegalReference{
			Text: strings.TrimSpace(m[0]),
			Type: "jurisprudence",
		})
	}

	mentioned := make([]string, 0, len(codes))
	for c := range codes {
		mentioned = append(mentioned, c)
	}
	sort.Strings(mentioned)
	return refs, mentioned
}

func isKnownCode(code string) bool {
	lower := strings.ToLower(code)
	for _, marker := range knownCodeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
