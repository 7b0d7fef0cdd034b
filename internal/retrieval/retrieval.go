package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dgallion1/researchlight/internal/document"
	"github.com/dgallion1/researchlight/internal/embed"
)

var (
	ErrNoPages       = errors.New("document has no pages with text")
	ErrEmptyQuestion = errors.New("question is empty")
)

// Match is the page that best answers a question.
type Match struct {
	Page  int     `json:"page"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Index holds page vectors for one document. Vectors are computed on the
// first successful query and reused for the lifetime of the Index.
type Index struct {
	pages    []document.Page
	corpus   []string
	embedder embed.Embedder

	mu      sync.Mutex
	vectors [][]float32
}

func NewIndex(doc *document.Document, e embed.Embedder) *Index {
	return &Index{pages: doc.Pages, corpus: doc.PageTexts(), embedder: e}
}

// vectorsFor embeds the pages once. A failed attempt is not cached.
func (ix *Index) vectorsFor(ctx context.Context) ([][]float32, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.vectors != nil {
		return ix.vectors, nil
	}

	vecs, err := ix.embedder.Embed(ctx, ix.corpus)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(ix.corpus) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d pages", len(vecs), len(ix.corpus))
	}
	ix.vectors = vecs
	return vecs, nil
}

// Best returns the single page most similar to question. Ties keep the
// earliest page.
func (ix *Index) Best(ctx context.Context, question string) (Match, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Match{}, ErrEmptyQuestion
	}
	if len(ix.pages) == 0 {
		return Match{}, ErrNoPages
	}
	vectors, err := ix.vectorsFor(ctx)
	if err != nil {
		return Match{}, fmt.Errorf("embed pages: %w", err)
	}

	qv, err := ix.embedder.Embed(ctx, []string{question})
	if err != nil {
		return Match{}, fmt.Errorf("embed question: %w", err)
	}
	if len(qv) != 1 {
		return Match{}, fmt.Errorf("embed question: got %d vectors", len(qv))
	}

	best := -1
	bestScore := 0.0
	for i, v := range vectors {
		score := embed.Cosine(qv[0], v)
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	p := ix.pages[best]
	return Match{Page: p.Number, Text: p.Text, Score: bestScore}, nil
}
