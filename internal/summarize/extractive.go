package summarize

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxSentences is how many sentences an extractive summary keeps.
	MaxSentences = 5
	// MinWords is the exclusive lower bound on words per kept sentence.
	MinWords = 8
)

// Summary is an ordered selection of sentences.
type Summary struct {
	Sentences []string
}

// Text joins the sentences with a blank line between them.
func (s Summary) Text() string {
	return strings.Join(s.Sentences, "\n\n")
}

// Paragraphs returns the blocks that make up the rendered summary.
func (s Summary) Paragraphs() []string {
	return s.Sentences
}

// Extractive builds the length-ranked summary of text.
func Extractive(text string) Summary {
	return Rank(Filter(Split(text)), MaxSentences)
}

// Split cuts text after every '.', '!' or '?' that is followed by whitespace.
// The punctuation stays with the sentence and the whitespace run is dropped.
// The final segment is kept as-is, even when empty.
func Split(text string) []string {
	if text == "" {
		return nil
	}

	var out []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		end := i
		j := skipSpace(text, end)
		if j == end {
			continue
		}
		out = append(out, text[start:end])
		start = j
		i = j
	}
	return append(out, text[start:])
}

func skipSpace(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}

// Filter trims each candidate and keeps those with more than MinWords words.
func Filter(candidates []string) []string {
	var out []string
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if len(strings.Fields(c)) > MinWords {
			out = append(out, c)
		}
	}
	return out
}

// Rank orders sentences by descending length and keeps the first limit.
// Equal lengths keep their input order.
func Rank(sentences []string, limit int) Summary {
	if limit <= 0 {
		limit = MaxSentences
	}
	ranked := make([]string, len(sentences))
	copy(ranked, sentences)
	sort.SliceStable(ranked, func(i, j int) bool {
		return utf8.RuneCountInString(ranked[i]) > utf8.RuneCountInString(ranked[j])
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return Summary{Sentences: ranked}
}
