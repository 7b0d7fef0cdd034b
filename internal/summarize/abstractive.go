package summarize

import (
	"context"
	"log/slog"

	"github.com/dgallion1/researchlight/internal/chunker"
	"github.com/dgallion1/researchlight/internal/llm"
	"github.com/dgallion1/researchlight/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// Abstractive summarizes text chunk by chunk through a language model.
type Abstractive struct {
	Model       llm.Model
	MaxChars    int        // Per-chunk character budget.
	Bounds      llm.Bounds // Target summary length per chunk.
	Concurrency int        // Chunks summarized at once.
	Log         *slog.Logger
}

// Summarize returns one paragraph per chunk that the model summarized.
// A chunk whose call fails is logged and left out; if every chunk fails the
// summary is empty and err is nil. Only context cancellation is returned.
func (a *Abstractive) Summarize(ctx context.Context, text string) (Summary, error) {
	chunks := chunker.Split(text, a.MaxChars)
	if len(chunks) == 0 {
		return Summary{}, nil
	}

	limit := a.Concurrency
	if limit <= 0 {
		limit = 1
	}
	results := make([]string, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			out, err := a.Model.Summarize(gctx, chunk, a.boundsFor(chunk))
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				a.Log.Warn("chunk summarization failed, dropping chunk", "chunk", i, "error", err)
				metrics.ChunksDroppedTotal.Inc()
				return nil
			}
			clean, err := llm.ValidateSummary(out)
			if err != nil {
				a.Log.Warn("chunk summary rejected, dropping chunk", "chunk", i, "error", err)
				metrics.ChunksDroppedTotal.Inc()
				return nil
			}
			results[i] = clean
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	var s Summary
	for _, r := range results {
		if r != "" {
			s.Sentences = append(s.Sentences, r)
		}
	}
	a.Log.Info("abstractive summary complete", "chunks", len(chunks), "kept", len(s.Sentences))
	return s, nil
}

// boundsFor keeps the minimum length from exceeding the chunk itself.
func (a *Abstractive) boundsFor(chunk string) llm.Bounds {
	b := a.Bounds
	if b.MaxTokens <= 0 {
		b = llm.DefaultBounds
	}
	if est := chunker.EstimateTokens(chunk); b.MinTokens > est {
		b.MinTokens = est
	}
	if b.MinTokens > b.MaxTokens {
		b.MinTokens = b.MaxTokens
	}
	return b
}
