package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/lumina/pkg/log"
)

// ProvidersConfig holds credentials for every LLM in the fallback chain.
// An empty key disables that provider.
type ProvidersConfig struct {
	OpenAIAPIKey  string        `env:"OPENAI_API_KEY"`
	OpenAIModel   string        `env:"OPENAI_MODEL" envDefault:"gpt-5-mini"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com"`
	OpenAITimeout time.Duration `env:"OPENAI_TIMEOUT" envDefault:"20s"`

	GeminiAPIKey  string        `env:"GEMINI_API_KEY"`
	GeminiModel   string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiTimeout time.Duration `env:"GEMINI_TIMEOUT" envDefault:"30s"`

	OpenRouterAPIKey    string        `env:"OPENROUTER_API_KEY"`
	OpenRouterModel     string        `env:"OPENROUTER_MODEL" envDefault:"arcee-ai/trinity-large-preview:free"`
	OpenRouterBaseURL   string        `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api"`
	OpenRouterTimeout   time.Duration `env:"OPENROUTER_TIMEOUT" envDefault:"45s"`
	OpenRouterReasoning bool          `env:"OPENROUTER_REASONING" envDefault:"true"`

	AnthropicAPIKey  string        `env:"ANTHROPIC_API_KEY"`
	AnthropicModel   string        `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-5"`
	AnthropicBaseURL string        `env:"ANTHROPIC_BASE_URL" envDefault:"https://api.anthropic.com"`
	AnthropicTimeout time.Duration `env:"ANTHROPIC_TIMEOUT" envDefault:"30s"`
}

func ParseProvidersConfig() (*ProvidersConfig, error) {
	c := &ProvidersConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}

	timeouts := []struct {
		name string
		d    time.Duration
	}{
		{"OPENAI_TIMEOUT", c.OpenAITimeout},
		{"GEMINI_TIMEOUT", c.GeminiTimeout},
		{"OPENROUTER_TIMEOUT", c.OpenRouterTimeout},
		{"ANTHROPIC_TIMEOUT", c.AnthropicTimeout},
	}
	for _, t := range timeouts {
		if t.d <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %s", t.name, t.d)
		}
	}
	return c, nil
}

func NewProvidersConfig(ctx context.Context) *ProvidersConfig {
	c, err := ParseProvidersConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Providers config")
	}
	return c
}
