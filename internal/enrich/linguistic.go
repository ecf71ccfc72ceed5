package enrich

import (
	"sort"
	"strings"
	"unicode"
)

const keywordLimit = 20

// frenchStopwords filters function words out of heuristic keyword
// extraction. Deliberately small: legal vocabulary dominates anyway.
var frenchStopwords = map[string]struct{}{
	"alors": {}, "aussi": {}, "autre": {}, "avant": {}, "avec": {},
	"cela": {}, "cette": {}, "ceux": {}, "comme": {}, "dans": {},
	"donc": {}, "elle": {}, "elles": {}, "entre": {}, "être": {},
	"fait": {}, "leur": {}, "leurs": {}, "lors": {}, "mais": {},
	"même": {}, "notamment": {}, "nous": {}, "par": {}, "pas": {},
	"peut": {}, "plus": {}, "pour": {}, "sans": {}, "selon": {},
	"sont": {}, "sous": {}, "tout": {}, "toute": {}, "toutes": {},
	"tous": {}, "vous": {}, "ainsi": {}, "dont": {}, "lorsque": {},
	"celui": {}, "celle": {}, "ont": {}, "aux": {}, "les": {},
	"des": {}, "une": {}, "est": {}, "qui": {}, "que": {}, "son": {},
	"ses": {}, "lui": {},
}

// heuristicWordCount is the degraded linguistic enrichment: when no NLP
// analyzer is configured, only the word count is produced.
func heuristicWordCount(content string) int {
	return len(strings.Fields(content))
}

// heuristicKeywords extracts the top-N words (length > 3, stopwords
// removed) by frequency. Ties are broken alphabetically so extraction
// is deterministic.
func heuristicKeywords(content string) []string {
	freq := make(map[string]int)
	for _, field := range strings.FieldsFunc(content, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\'' && r != '-'
	}) {
		word := strings.ToLower(strings.Trim(field, "'-"))
		if len([]rune(word)) <= 3 {
			continue
		}
		if _, stop := frenchStopwords[word]; stop {
			continue
		}
		freq[word]++
	}

	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > keywordLimit {
		words = words[:keywordLimit]
	}
	return words
}
