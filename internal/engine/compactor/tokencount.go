package compactor

import (
	"strings"
	"unicode/utf8"
)

// runesPerToken is the average subword length assumed for long words.
const runesPerToken = 4

// EstimateTokens approximates how many model tokens s would cost. Each
// whitespace-separated word counts as one token plus one more for every
// runesPerToken runes beyond the first runesPerToken, so identifiers and
// base64 blobs weigh more than prose.
func EstimateTokens(s string) int {
	n := 0
	for _, w := range strings.Fields(s) {
		n += 1 + (utf8.RuneCountInString(w)-1)/runesPerToken
	}
	return n
}

// Savings is the estimated token count of an artifact before and after
// extraction.
type Savings struct {
	Original  int
	Processed int
}

// EstimateSavings estimates the tokens of original and processed.
func EstimateSavings(original, processed string) Savings {
	return Savings{Original: EstimateTokens(original), Processed: EstimateTokens(processed)}
}

// Ratio is Processed / Original, or 0 when the original has no tokens.
func (s Savings) Ratio() float64 {
	if s.Original == 0 {
		return 0
	}
	return float64(s.Processed) / float64(s.Original)
}
