package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/dgallion1/researchlight/internal/config"
	"github.com/dgallion1/researchlight/internal/embed"
	"github.com/dgallion1/researchlight/internal/llm"
)

// newModel builds the configured summarization model, or nil for "none".
func newModel(cfg config.Config, stats *llm.LLMStats, log *slog.Logger) (llm.Model, error) {
	var inner llm.Model
	switch cfg.LLMProvider {
	case "none", "":
		return nil, nil
	case "anthropic":
		inner = llm.NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	case "openai":
		inner = llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
	log.Info("summarization model ready", "provider", cfg.LLMProvider, "model", inner.Name())
	return llm.NewGuarded(inner, cfg.LLMRequestsPerSecond, stats, log), nil
}

// newEmbedder builds the configured page embedder.
func newEmbedder(cfg config.Config, log *slog.Logger) (embed.Embedder, error) {
	var e embed.Embedder
	switch cfg.EmbeddingProvider {
	case "hash", "":
		e = embed.HashEmbedder{}
	case "openai":
		e = embed.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
	log.Info("embedder ready", "provider", cfg.EmbeddingProvider, "model", e.Name())
	return e, nil
}
