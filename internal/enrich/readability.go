package enrich

import (
	"strings"
	"unicode"
)

// Readability holds the Flesch-style metrics attached to a document.
type Readability struct {
	FleschScore float64 `json:"flesch_score"`
	Complexity  string  `json:"complexity"`
	GradeLevel  string  `json:"grade_level"`
}

// computeReadability scores content with the Kandel-Moles adaptation of
// the Flesch reading-ease formula for French, buckets it into a
// three-level complexity label and approximates the education level
// required to read it comfortably.
func computeReadability(content string) Readability {
	words, sentences, syllables := countTextUnits(content)
	if words == 0 || sentences == 0 {
		return Readability{Complexity: "simple", GradeLevel: "inconnu"}
	}

	wordsPerSentence := float64(words) / float64(sentences)
	syllablesPerWord := float64(syllables) / float64(words)

	// Kandel & Moles coefficients for French text.
	score := 209.0 - 1.15*wordsPerSentence - 68.0*syllablesPerWord
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	r := Readability{FleschScore: score}
	switch {
	case score >= 80:
		r.Complexity = "simple"
	case score >= 60:
		r.Complexity = "moyen"
	default:
		r.Complexity = "complexe"
	}

	switch {
	case score >= 80:
		r.GradeLevel = "primaire"
	case score >= 70:
		r.GradeLevel = "collège"
	case score >= 50:
		r.GradeLevel = "lycée"
	case score >= 30:
		r.GradeLevel = "études supérieures"
	default:
		r.GradeLevel = "expert juridique"
	}
	return r
}

func countTextUnits(content string) (words, sentences, syllables int) {
	for _, field := range strings.FieldsFunc(content, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\'' && r != '-'
	}) {
		words++
		syllables += countSyllables(field)
	}
	for _, r := range content {
		if r == '.' || r == '!' || r == '?' {
			sentences++
		}
	}
	if words > 0 && sentences == 0 {
		sentences = 1
	}
	return
}

// countSyllables approximates French syllable count as vowel groups.
func countSyllables(word string) int {
	count := 0
	prevVowel := false
	for _, r := range strings.ToLower(word) {
		v := isFrenchVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}
	if count == 0 {
		count = 1
	}
	return count
}

func isFrenchVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y',
		'à', 'â', 'é', 'è', 'ê', 'ë', 'î', 'ï', 'ô', 'ù', 'û', 'ü':
		return true
	}
	return false
}
