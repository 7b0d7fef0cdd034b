package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars bounds the text handed to the summarization model per call.
const DefaultMaxChars = 2000

// Split breaks text into chunks of at most maxChars characters. It packs whole
// paragraphs where it can, falls back to sentences for long paragraphs, then
// to words, and hard-cuts only a single word that is longer than maxChars.
func Split(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var p packer
	p.max = maxChars
	for _, para := range splitByParagraphs(text) {
		if runeLen(para) <= maxChars {
			p.add(para, "\n\n")
			continue
		}
		// Split the large paragraph by sentences.
		for _, sent := range splitSentences(para) {
			if runeLen(sent) <= maxChars {
				p.add(sent, " ")
				continue
			}
			for _, word := range strings.Fields(sent) {
				for _, piece := range hardCut(word, maxChars) {
					p.add(piece, " ")
				}
			}
		}
	}
	return p.done()
}

// packer accumulates pieces into chunks no longer than max.
type packer struct {
	max     int
	result  []string
	current strings.Builder
	size    int
}

func (p *packer) add(piece, sep string) {
	n := runeLen(piece)
	if p.size > 0 && p.size+runeLen(sep)+n > p.max {
		p.flush()
	}
	if p.size > 0 {
		p.current.WriteString(sep)
		p.size += runeLen(sep)
	}
	p.current.WriteString(piece)
	p.size += n
}

func (p *packer) flush() {
	if p.size > 0 {
		p.result = append(p.result, p.current.String())
	}
	p.current.Reset()
	p.size = 0
}

func (p *packer) done() []string {
	p.flush()
	return p.result
}

// splitByParagraphs splits on double-newlines.
func splitByParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && isSpace(text[i+1]) {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}

// hardCut slices s into rune-safe pieces of at most n characters.
func hardCut(s string, n int) []string {
	if runeLen(s) <= n {
		return []string{s}
	}
	var out []string
	runes := []rune(s)
	for len(runes) > n {
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
