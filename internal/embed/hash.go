package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// DefaultHashDims is the vector width of HashEmbedder.
const DefaultHashDims = 512

// HashEmbedder builds local bag-of-words vectors by hashing lowercased terms
// into a fixed number of buckets. It needs no network and is deterministic.
type HashEmbedder struct {
	Dims int
}

func (h HashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	dims := h.Dims
	if dims <= 0 {
		dims = DefaultHashDims
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = hashVector(t, dims)
	}
	return out, nil
}

func (h HashEmbedder) Name() string {
	return "hash"
}

func hashVector(text string, dims int) []float32 {
	v := make([]float32, dims)
	for _, term := range terms(text) {
		f := fnv.New32a()
		f.Write([]byte(term))
		v[f.Sum32()%uint32(dims)]++
	}
	// Sublinear term frequency keeps long pages from dominating.
	for i, c := range v {
		if c > 0 {
			v[i] = float32(1 + math.Log(float64(c)))
		}
	}
	return v
}

func terms(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 1 && !stopwords[f] {
			out = append(out, f)
		}
	}
	return out
}

var stopwords = map[string]bool{
	"the": true, "of": true, "and": true, "to": true, "in": true, "is": true,
	"for": true, "on": true, "that": true, "with": true, "as": true, "by": true,
	"an": true, "are": true, "this": true, "we": true, "be": true, "it": true,
	"at": true, "from": true, "or": true, "what": true, "which": true, "how": true,
	"does": true, "do": true, "was": true, "were": true, "their": true,
}
