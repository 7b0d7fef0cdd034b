package chunker

import (
	"strings"
	"unicode/utf8"
)

// CharsPerToken is the average characters per model token in English prose.
const CharsPerToken = 4

// EstimateTokens gives a rough token count for model length budgeting: one
// token per CharsPerToken runes, and never fewer than one per word.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	runes := utf8.RuneCountInString(text)
	tokens := (runes + CharsPerToken - 1) / CharsPerToken
	if words := len(strings.Fields(text)); words > tokens {
		tokens = words
	}
	return tokens
}
