package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the optional YAML configuration file. Zero values leave the
// corresponding setting untouched.
type FileConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	Upload struct {
		MaxBytes int64 `yaml:"maxBytes"`
	} `yaml:"upload"`

	Summary struct {
		Mode        string `yaml:"mode"`
		Sentences   int    `yaml:"sentences"`
		ChunkChars  int    `yaml:"chunkChars"`
		MinTokens   int    `yaml:"minTokens"`
		MaxTokens   int    `yaml:"maxTokens"`
		Concurrency int    `yaml:"concurrency"`
	} `yaml:"summary"`

	LLM struct {
		Provider          string  `yaml:"provider"`
		RequestsPerSecond float64 `yaml:"requestsPerSecond"`
		Anthropic         struct {
			Key   string `yaml:"key"`
			Model string `yaml:"model"`
		} `yaml:"anthropic"`
		OpenAI struct {
			Key   string `yaml:"key"`
			Base  string `yaml:"base"`
			Model string `yaml:"model"`
		} `yaml:"openai"`
	} `yaml:"llm"`

	Embedding struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
	} `yaml:"embedding"`

	Session struct {
		TTL time.Duration `yaml:"ttl"`
		Max int           `yaml:"max"`
	} `yaml:"session"`

	PDF struct {
		FallbackPdftotext *bool `yaml:"fallbackPdftotext"`
	} `yaml:"pdf"`
}

func applyFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	fc.apply(cfg)
	return nil
}

func (fc FileConfig) apply(cfg *Config) {
	setString(&cfg.Port, fc.Port)
	if fc.LogLevel != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(fc.LogLevel)); err == nil {
			cfg.LogLevel = l
		}
	}
	setInt64(&cfg.MaxUploadBytes, fc.Upload.MaxBytes)

	setString(&cfg.SummaryMode, fc.Summary.Mode)
	setInt(&cfg.SummarySentences, fc.Summary.Sentences)
	setInt(&cfg.ChunkChars, fc.Summary.ChunkChars)
	setInt(&cfg.SummaryMinTokens, fc.Summary.MinTokens)
	setInt(&cfg.SummaryMaxTokens, fc.Summary.MaxTokens)
	setInt(&cfg.MaxConcurrentSummarize, fc.Summary.Concurrency)

	setString(&cfg.LLMProvider, fc.LLM.Provider)
	if fc.LLM.RequestsPerSecond > 0 {
		cfg.LLMRequestsPerSecond = fc.LLM.RequestsPerSecond
	}
	setString(&cfg.AnthropicAPIKey, fc.LLM.Anthropic.Key)
	setString(&cfg.AnthropicModel, fc.LLM.Anthropic.Model)
	setString(&cfg.OpenAIAPIKey, fc.LLM.OpenAI.Key)
	setString(&cfg.OpenAIBaseURL, fc.LLM.OpenAI.Base)
	setString(&cfg.OpenAIModel, fc.LLM.OpenAI.Model)

	setString(&cfg.EmbeddingProvider, fc.Embedding.Provider)
	setString(&cfg.EmbeddingModel, fc.Embedding.Model)

	if fc.Session.TTL > 0 {
		cfg.SessionTTL = fc.Session.TTL
	}
	setInt(&cfg.MaxSessions, fc.Session.Max)

	if fc.PDF.FallbackPdftotext != nil {
		cfg.PDFFallbackPdftotext = *fc.PDF.FallbackPdftotext
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setInt64(dst *int64, v int64) {
	if v != 0 {
		*dst = v
	}
}
