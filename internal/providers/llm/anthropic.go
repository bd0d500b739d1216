package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/lumina/internal/core"
)

const NameAnthropic = "Anthropic"

type Anthropic struct {
	baseProvider
}

func NewAnthropic(baseURL, apiKey, model string, timeout time.Duration) *Anthropic {
	return &Anthropic{
		baseProvider: newBaseProvider(NameAnthropic, baseURL, apiKey, model, timeout),
	}
}

func (a *Anthropic) Vision() bool {
	return true
}

func (a *Anthropic) TextFallback() bool {
	return false
}

type anthropicBlock struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

func (a *Anthropic) Complete(ctx context.Context, req core.CompletionRequest) (core.Response, error) {
	messages := make([]anthropicMessage, 0, len(req.History)+1)
	for _, m := range req.History {
		if m.Role == core.RoleSystem {
			continue
		}
		messages = append(messages, anthropicMessage{Role: m.Role, Content: m.Content})
	}

	if req.Image != nil {
		messages = append(messages, anthropicMessage{Role: core.RoleUser, Content: []anthropicBlock{
			{Type: "image", Source: &anthropicSource{
				Type:      "base64",
				MediaType: req.Image.MIME,
				Data:      base64.StdEncoding.EncodeToString(req.Image.Data),
			}},
			{Type: "text", Text: req.Message},
		}})
	} else {
		messages = append(messages, anthropicMessage{Role: core.RoleUser, Content: req.Message})
	}

	payload := map[string]any{
		"model":      a.model,
		"max_tokens": 4096,
		"messages":   messages,
	}
	if req.System != "" {
		payload["system"] = req.System
	}

	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": "2023-06-01",
	}

	data, err := a.post(ctx, "/v1/messages", payload, headers)
	if err != nil {
		return core.Response{}, err
	}

	var result struct {
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			Thinking string `json:"thinking"`
		} `json:"content"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return core.Response{}, malformedError(a.name, fmt.Errorf("decode: %w", err))
	}

	var text, thinking strings.Builder
	for _, c := range result.Content {
		switch c.Type {
		case "text":
			text.WriteString(c.Text)
		case "thinking":
			thinking.WriteString(c.Thinking)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return core.Response{}, malformedError(a.name, errors.New("no text content"))
	}

	return core.Response{
		Content:   text.String(),
		Source:    a.name,
		Reasoning: thinking.String(),
	}, nil
}
