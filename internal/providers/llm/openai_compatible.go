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

type OpenAICompatible struct {
	baseProvider
	authHeader   string
	authPrefix   string
	extraHeaders map[string]string
	extraBody    map[string]any
	vision       bool
	textFallback bool
}

type OpenAICompatibleConfig struct {
	Name         string
	BaseURL      string
	APIKey       string
	Model        string
	Timeout      time.Duration
	AuthHeader   string // e.g., "Authorization"
	AuthPrefix   string // e.g., "Bearer "
	ExtraHeaders map[string]string
	ExtraBody    map[string]any
	Vision       bool
	TextFallback bool
}

func NewOpenAICompatible(cfg OpenAICompatibleConfig) *OpenAICompatible {
	return &OpenAICompatible{
		baseProvider: newBaseProvider(cfg.Name, cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Timeout),
		authHeader:   cfg.AuthHeader,
		authPrefix:   cfg.AuthPrefix,
		extraHeaders: cfg.ExtraHeaders,
		extraBody:    cfg.ExtraBody,
		vision:       cfg.Vision,
		textFallback: cfg.TextFallback,
	}
}

func (o *OpenAICompatible) Vision() bool {
	return o.vision
}

func (o *OpenAICompatible) TextFallback() bool {
	return o.textFallback
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

func (o *OpenAICompatible) Complete(ctx context.Context, req core.CompletionRequest) (core.Response, error) {
	payload := map[string]any{
		"model":    o.model,
		"messages": buildChatMessages(req),
	}
	for k, v := range o.extraBody {
		payload[k] = v
	}

	headers := make(map[string]string)
	if o.authHeader != "" && o.apiKey != "" {
		headers[o.authHeader] = o.authPrefix + o.apiKey
	}
	for k, v := range o.extraHeaders {
		headers[k] = v
	}

	data, err := o.post(ctx, "/v1/chat/completions", payload, headers)
	if err != nil {
		return core.Response{}, err
	}

	return o.parseResponse(data)
}

func buildChatMessages(req core.CompletionRequest) []chatMessage {
	messages := make([]chatMessage, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: core.RoleSystem, Content: req.System})
	}
	for _, m := range req.History {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	if req.Image == nil {
		messages = append(messages, chatMessage{Role: core.RoleUser, Content: req.Message})
		return messages
	}

	parts := []contentPart{{Type: "text", Text: req.Message}}
	parts = append(parts, contentPart{
		Type:     "image_url",
		ImageURL: &imageURL{URL: dataURI(req.Image)},
	})
	return append(messages, chatMessage{Role: core.RoleUser, Content: parts})
}

func dataURI(img *core.Image) string {
	return fmt.Sprintf("data:%s;base64,%s", img.MIME, base64.StdEncoding.EncodeToString(img.Data))
}

func (o *OpenAICompatible) parseResponse(data []byte) (core.Response, error) {
	var result struct {
		Choices []struct {
			Message struct {
				Content   string `json:"content"`
				Reasoning string `json:"reasoning"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return core.Response{}, malformedError(o.name, fmt.Errorf("decode: %w", err))
	}
	if len(result.Choices) == 0 {
		return core.Response{}, malformedError(o.name, errors.New("empty choices"))
	}

	msg := result.Choices[0].Message
	if strings.TrimSpace(msg.Content) == "" {
		return core.Response{}, malformedError(o.name, errors.New("empty content"))
	}

	return core.Response{
		Content:   msg.Content,
		Source:    o.name,
		Reasoning: msg.Reasoning,
	}, nil
}
