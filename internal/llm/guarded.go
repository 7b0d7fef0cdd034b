package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/researchlight/internal/metrics"
	"golang.org/x/time/rate"
)

// Guarded wraps a Model with rate limiting, retries on transient errors,
// and latency accounting.
type Guarded struct {
	inner   Model
	limiter *rate.Limiter
	stats   *LLMStats
	log     *slog.Logger
	backoff func(attempt int) time.Duration
}

// NewGuarded wraps inner. A non-positive rps disables rate limiting.
func NewGuarded(inner Model, rps float64, stats *LLMStats, log *slog.Logger) *Guarded {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Guarded{
		inner:   inner,
		limiter: rate.NewLimiter(limit, 1),
		stats:   stats,
		log:     log,
		backoff: Backoff,
	}
}

func (g *Guarded) Summarize(ctx context.Context, chunk string, b Bounds) (string, error) {
	var text string
	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", err
		}
		start := time.Now()
		text, lastErr = g.inner.Summarize(ctx, chunk, b)
		elapsed := time.Since(start)
		if g.stats != nil {
			g.stats.Record(elapsed, lastErr != nil)
		}
		metrics.ObserveModelCall(g.inner.Name(), elapsed, lastErr)

		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		g.log.Warn("retryable summarization error", "model", g.inner.Name(), "attempt", attempt, "error", lastErr)
		if attempt == MaxRetries-1 {
			break
		}
		select {
		case <-time.After(g.backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return text, lastErr
}

func (g *Guarded) Name() string {
	return g.inner.Name()
}

// Close releases the wrapped client's resources when it holds any.
func (g *Guarded) Close() {
	if c, ok := g.inner.(interface{ Close() }); ok {
		c.Close()
	}
}
