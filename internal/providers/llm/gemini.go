package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/lumina/internal/core"
	"google.golang.org/genai"
)

const NameGemini = "Gemini"

// generator is the subset of genai.Models used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini is a generation-style provider: history and the new message are
// flattened into a single prompt, the system instruction travels in the
// request config.
type Gemini struct {
	models  generator
	model   string
	timeout time.Duration
}

func NewGemini(ctx context.Context, apiKey, model string, timeout time.Duration) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return newGeminiWithGenerator(client.Models, model, timeout), nil
}

func newGeminiWithGenerator(models generator, model string, timeout time.Duration) *Gemini {
	return &Gemini{
		models:  models,
		model:   model,
		timeout: timeout,
	}
}

func (g *Gemini) Name() string {
	return NameGemini
}

func (g *Gemini) Timeout() time.Duration {
	return g.timeout
}

func (g *Gemini) Vision() bool {
	return true
}

func (g *Gemini) TextFallback() bool {
	return false
}

func (g *Gemini) Complete(ctx context.Context, req core.CompletionRequest) (core.Response, error) {
	parts := []*genai.Part{genai.NewPartFromText(flattenPrompt(req.History, req.Message))}
	if req.Image != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Image.Data, req.Image.MIME))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	var cfg *genai.GenerateContentConfig
	if req.System != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		}
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return core.Response{}, g.classify(err)
	}
	if resp == nil {
		return core.Response{}, malformedError(NameGemini, errors.New("nil response"))
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return core.Response{}, malformedError(NameGemini, errors.New("empty text"))
	}

	return core.Response{Content: text, Source: NameGemini}, nil
}

func (g *Gemini) classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &Error{Provider: NameGemini, Kind: KindStatus, StatusCode: apiErr.Code, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &Error{Provider: NameGemini, Kind: KindStatus, StatusCode: apiErrPtr.Code, Err: err}
	}
	return transportError(NameGemini, err)
}

// flattenPrompt renders the history as a transcript followed by the new
// user message.
func flattenPrompt(history []core.Message, message string) string {
	var sb strings.Builder
	for _, m := range history {
		switch m.Role {
		case core.RoleUser:
			sb.WriteString("User: ")
		case core.RoleAssistant:
			sb.WriteString("Assistant: ")
		default:
			continue
		}
		sb.WriteString(m.Content)
		sb.WriteString("\n\n")
	}
	sb.WriteString("User: ")
	sb.WriteString(message)
	return sb.String()
}
