package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/lumina/internal/config"
	"github.com/sandevgo/lumina/internal/core"
	"github.com/sandevgo/lumina/pkg/log"
)

// NewChain builds the fallback chain in policy order: OpenAI, Gemini,
// OpenRouter, Anthropic. Providers without an API key are left out.
func NewChain(ctx context.Context, cfg *config.ProvidersConfig) ([]core.Provider, error) {
	logger := log.FromCtx(ctx)
	var chain []core.Provider

	if cfg.OpenAIAPIKey != "" {
		chain = append(chain, NewOpenAI(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAITimeout))
	}

	if cfg.GeminiAPIKey != "" {
		g, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		chain = append(chain, g)
	}

	if cfg.OpenRouterAPIKey != "" {
		chain = append(chain, NewOpenRouter(
			cfg.OpenRouterBaseURL,
			cfg.OpenRouterAPIKey,
			cfg.OpenRouterModel,
			cfg.OpenRouterTimeout,
			cfg.OpenRouterReasoning,
		))
	}

	if cfg.AnthropicAPIKey != "" {
		chain = append(chain, NewAnthropic(cfg.AnthropicBaseURL, cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AnthropicTimeout))
	}

	for i, p := range chain {
		logger.Info().
			Int("position", i+1).
			Str("provider", p.Name()).
			Dur("timeout", p.Timeout()).
			Bool("vision", p.Vision()).
			Msg("llm provider enabled")
	}
	if len(chain) == 0 {
		logger.Warn().Msg("no llm provider configured, every reply will be the fallback apology")
	}

	return chain, nil
}
