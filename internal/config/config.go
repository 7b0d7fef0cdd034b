package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/researchlight/internal/summarize"
)

type Config struct {
	Port     string
	LogLevel slog.Level

	// Upload limits
	MaxUploadBytes int64

	// Summarization
	SummaryMode            string // "extractive" or "abstractive"
	SummarySentences       int
	ChunkChars             int
	SummaryMinTokens       int
	SummaryMaxTokens       int
	MaxConcurrentSummarize int

	// Summarization model
	LLMProvider          string // "anthropic", "openai" or "none"
	AnthropicAPIKey      string
	AnthropicModel       string
	OpenAIAPIKey         string
	OpenAIBaseURL        string
	OpenAIModel          string
	LLMRequestsPerSecond float64

	// Question answering
	EmbeddingProvider string // "openai" or "hash"
	EmbeddingModel    string

	// Session state
	SessionTTL  time.Duration
	MaxSessions int

	// PDF
	PDFFallbackPdftotext bool
}

// Load reads CONFIG_FILE (if set) and then the environment, which wins.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	cfg.normalize()
	return cfg, nil
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:     "8090",
		LogLevel: slog.LevelInfo,

		MaxUploadBytes: 52428800, // 50MB

		SummaryMode:            "extractive",
		SummarySentences:       5,
		ChunkChars:             2000,
		SummaryMinTokens:       150,
		SummaryMaxTokens:       512,
		MaxConcurrentSummarize: 4,

		LLMProvider:    "none",
		AnthropicModel: "claude-sonnet-4-5-20250929",
		OpenAIModel:    "gpt-4o-mini",

		EmbeddingProvider: "hash",
		EmbeddingModel:    "text-embedding-3-small",

		SessionTTL:  1 * time.Hour,
		MaxSessions: 64,

		PDFFallbackPdftotext: true,
	}
}

func applyEnv(cfg *Config) {
	cfg.Port = envOr("PORT", cfg.Port)
	cfg.LogLevel = envLevel("LOG_LEVEL", cfg.LogLevel)

	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)

	cfg.SummaryMode = envOr("SUMMARY_MODE", cfg.SummaryMode)
	cfg.SummarySentences = envInt("SUMMARY_SENTENCES", cfg.SummarySentences)
	cfg.ChunkChars = envInt("CHUNK_CHARS", cfg.ChunkChars)
	cfg.SummaryMinTokens = envInt("SUMMARY_MIN_TOKENS", cfg.SummaryMinTokens)
	cfg.SummaryMaxTokens = envInt("SUMMARY_MAX_TOKENS", cfg.SummaryMaxTokens)
	cfg.MaxConcurrentSummarize = envInt("MAX_CONCURRENT_SUMMARIZE", cfg.MaxConcurrentSummarize)

	cfg.LLMProvider = envOr("LLM_PROVIDER", cfg.LLMProvider)
	cfg.AnthropicAPIKey = envOr("ANTHROPIC_API_KEY", cfg.AnthropicAPIKey)
	cfg.AnthropicModel = envOr("ANTHROPIC_MODEL", cfg.AnthropicModel)
	cfg.OpenAIAPIKey = envOr("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIBaseURL = envOr("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.OpenAIModel = envOr("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.LLMRequestsPerSecond = envFloat("LLM_REQUESTS_PER_SECOND", cfg.LLMRequestsPerSecond)

	cfg.EmbeddingProvider = envOr("EMBEDDING_PROVIDER", cfg.EmbeddingProvider)
	cfg.EmbeddingModel = envOr("EMBEDDING_MODEL", cfg.EmbeddingModel)

	cfg.SessionTTL = envDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.MaxSessions = envInt("MAX_SESSIONS", cfg.MaxSessions)

	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)
}

// normalize replaces non-positive limits with defaults.
func (c *Config) normalize() {
	d := Defaults()
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.SummarySentences <= 0 {
		c.SummarySentences = d.SummarySentences
	}
	if c.ChunkChars <= 0 {
		c.ChunkChars = d.ChunkChars
	}
	if c.SummaryMaxTokens <= 0 {
		c.SummaryMaxTokens = d.SummaryMaxTokens
	}
	if c.SummaryMinTokens < 0 {
		c.SummaryMinTokens = 0
	}
	if c.MaxConcurrentSummarize <= 0 {
		c.MaxConcurrentSummarize = d.MaxConcurrentSummarize
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = d.SessionTTL
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = d.MaxSessions
	}
	c.SummaryMode = strings.ToLower(c.SummaryMode)
	c.LLMProvider = strings.ToLower(c.LLMProvider)
	c.EmbeddingProvider = strings.ToLower(c.EmbeddingProvider)
}

func (c Config) Validate() error {
	switch c.SummaryMode {
	case "extractive", "abstractive":
	default:
		return fmt.Errorf("SUMMARY_MODE must be extractive or abstractive, got %q", c.SummaryMode)
	}
	switch c.LLMProvider {
	case "none":
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for LLM_PROVIDER=anthropic")
		}
	case "openai":
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			return fmt.Errorf("OPENAI_API_KEY or OPENAI_BASE_URL is required for LLM_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	switch c.EmbeddingProvider {
	case "hash":
	case "openai":
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			return fmt.Errorf("OPENAI_API_KEY or OPENAI_BASE_URL is required for EMBEDDING_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unknown EMBEDDING_PROVIDER %q", c.EmbeddingProvider)
	}
	if c.SummarySentences < 1 || c.SummarySentences > summarize.MaxSentences {
		return fmt.Errorf("SUMMARY_SENTENCES must be between 1 and %d, got %d", summarize.MaxSentences, c.SummarySentences)
	}
	if c.SummaryMinTokens > c.SummaryMaxTokens {
		return fmt.Errorf("SUMMARY_MIN_TOKENS (%d) exceeds SUMMARY_MAX_TOKENS (%d)", c.SummaryMinTokens, c.SummaryMaxTokens)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
	}
	return fallback
}
