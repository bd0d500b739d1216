package llm

import (
	"time"

	"github.com/sandevgo/lumina/internal/core"
)

const NameOpenRouter = "OpenRouter"

// OpenRouter serves a text-only model. It stays eligible for image messages
// through the substituted text prompt.
type OpenRouter struct {
	*OpenAICompatible
}

func NewOpenRouter(baseURL, apiKey, model string, timeout time.Duration, reasoning bool) *OpenRouter {
	var body map[string]any
	if reasoning {
		body = map[string]any{"reasoning": map[string]any{"enabled": true}}
	}

	return &OpenRouter{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			Name:       NameOpenRouter,
			BaseURL:    baseURL,
			APIKey:     apiKey,
			Model:      model,
			Timeout:    timeout,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
			ExtraHeaders: map[string]string{
				"HTTP-Referer": core.RepositoryURL,
				"X-Title":      core.AppName,
			},
			ExtraBody:    body,
			TextFallback: true,
		}),
	}
}
