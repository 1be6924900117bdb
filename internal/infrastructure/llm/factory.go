// Package llm adapts the supported AI text-completion providers to ports.Summarizer.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"NewsIngest/internal/config"
	"NewsIngest/internal/domain"
	"NewsIngest/internal/logging"
	"NewsIngest/internal/ports"
)

// Provider names, also recorded in persisted metadata.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

const (
	systemPrompt   = "You are a news editor who writes short, neutral, factual summaries."
	defaultTimeout = 20 * time.Second
)

var errEmptyResponse = errors.New("empty completion")

// Tuning carries generation settings shared by every provider.
type Tuning struct {
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// TuningFromConfig extracts generation settings from the AI section.
func TuningFromConfig(cfg config.AIConfig) Tuning {
	t := Tuning{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.Timeout,
	}
	if t.MaxTokens <= 0 {
		t.MaxTokens = 150
	}
	if t.Timeout <= 0 {
		t.Timeout = defaultTimeout
	}
	return t
}

// Select reports which provider a configuration resolves to, in preference
// order OpenAI, Anthropic, Gemini. An empty result means no credential is set.
func Select(cfg config.AIConfig) string {
	switch {
	case hasKey(cfg.OpenAI):
		return ProviderOpenAI
	case hasKey(cfg.Anthropic):
		return ProviderAnthropic
	case hasKey(cfg.Gemini):
		return ProviderGemini
	default:
		return ""
	}
}

// NewSummarizer builds the single provider used for a whole run and wraps it
// with the rate limit and summary cache configured in cfg. It returns
// domain.ErrNoProvider when no provider credential is configured.
func NewSummarizer(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (ports.Summarizer, error) {
	log = logging.OrDiscard(log)
	tuning := TuningFromConfig(cfg)

	var (
		base ports.Summarizer
		err  error
	)
	switch Select(cfg) {
	case ProviderOpenAI:
		base, err = NewOpenAISummarizer(cfg.OpenAI, tuning)
	case ProviderAnthropic:
		base, err = NewAnthropicSummarizer(cfg.Anthropic, tuning, nil)
	case ProviderGemini:
		base, err = NewGeminiSummarizer(ctx, cfg.Gemini, tuning)
	default:
		return nil, domain.ErrNoProvider
	}
	if err != nil {
		return nil, err
	}

	log.Info("summarizer selected", "provider", base.Name(), "rps", cfg.RequestsPerSecond, "cache_ttl", cfg.CacheTTL)

	summarizer := base
	if cfg.RequestsPerSecond > 0 {
		summarizer = NewRateLimitedSummarizer(summarizer, cfg.RequestsPerSecond, 1)
	}
	if cfg.CacheTTL > 0 {
		summarizer = NewCachedSummarizer(summarizer, cfg.CacheTTL)
	}
	return summarizer, nil
}

func hasKey(p config.ProviderConfig) bool {
	return strings.TrimSpace(p.APIKey) != ""
}

// callContext bounds a single provider call.
func callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func completion(provider, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.NewProviderError(provider, errEmptyResponse)
	}
	return text, nil
}

func missingKey(provider string) error {
	return domain.NewProviderError(provider, fmt.Errorf("api key: %w", domain.ErrMissingCredential))
}
