package llm

import "context"

// Bounds is the target length of a generated summary, in model tokens.
type Bounds struct {
	MinTokens int
	MaxTokens int
}

// DefaultBounds mirrors the length window used for paper chunks.
var DefaultBounds = Bounds{MinTokens: 150, MaxTokens: 512}

// Model produces an abstractive summary of one text chunk.
type Model interface {
	Summarize(ctx context.Context, chunk string, b Bounds) (string, error)
	Name() string
}
