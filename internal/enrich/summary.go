package enrich

import "strings"

const (
	// summarizerInputLimit bounds the text handed to the abstractive
	// summarizer; most models truncate input anyway.
	summarizerInputLimit = 1024

	summaryMinTokens = 30
	summaryMaxTokens = 100

	fallbackSummarySentences = 3
)

// truncateForSummary cuts content at the summarizer input limit without
// splitting a multi-byte rune.
func truncateForSummary(content string) string {
	if len(content) <= summarizerInputLimit {
		return content
	}
	cut := summarizerInputLimit
	for cut > 0 && !isRuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// fallbackSummary joins the first three '.'-separated sentences.
// Used whenever no summarizer is configured or the summarizer failed.
func fallbackSummary(content string) string {
	sentences := strings.Split(content, ".")
	if len(sentences) > fallbackSummarySentences {
		sentences = sentences[:fallbackSummarySentences]
	}
	return strings.Join(sentences, ".") + "."
}
