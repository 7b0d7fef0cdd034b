package document

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Document is the extracted text of one uploaded PDF.
type Document struct {
	Title       string // Document title (from filename)
	Pages       []Page // Pages with extractable text, in physical order
	ContentHash string // SHA-256 of the uploaded bytes
}

// Page is the text layer of a single PDF page.
type Page struct {
	Number int    // 1-based physical page number
	Text   string // Extracted text (never empty once stored in a Document)
}

// Text concatenates every page, each followed by a newline.
func (d *Document) Text() string {
	var sb strings.Builder
	for _, p := range d.Pages {
		if p.Text == "" {
			continue
		}
		sb.WriteString(p.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

// PageTexts returns the page texts in order, for use as a retrieval corpus.
func (d *Document) PageTexts() []string {
	out := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		out[i] = p.Text
	}
	return out
}

// Empty reports whether no page yielded text.
func (d *Document) Empty() bool {
	return len(d.Pages) == 0
}

// SectionKeywords are the headings sniffed by Sections.
var SectionKeywords = []string{"abstract", "introduction", "conclusion"}

// Sections maps each keyword to the page numbers whose text mentions it.
// Matching is plain case-insensitive substring containment, so a page that
// merely mentions "conclusion" in passing is reported too.
func (d *Document) Sections() map[string][]int {
	out := make(map[string][]int)
	for _, p := range d.Pages {
		lower := strings.ToLower(p.Text)
		for _, kw := range SectionKeywords {
			if strings.Contains(lower, kw) {
				out[kw] = append(out[kw], p.Number)
			}
		}
	}
	return out
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
