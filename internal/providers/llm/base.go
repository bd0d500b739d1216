package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sandevgo/lumina/internal/core"
)

type baseProvider struct {
	client  *resty.Client
	name    string
	apiKey  string
	model   string
	timeout time.Duration
}

func newBaseProvider(name, baseURL, apiKey, model string, timeout time.Duration) baseProvider {
	return baseProvider{
		// timeouts come from the request context
		client: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", core.AppUserAgent).
			SetRetryCount(0),
		name:    name,
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
	}
}

func (b *baseProvider) Name() string {
	return b.name
}

func (b *baseProvider) Timeout() time.Duration {
	return b.timeout
}

// post sends body as JSON and returns the raw payload of a 200 response.
func (b *baseProvider) post(ctx context.Context, path string, body any, headers map[string]string) ([]byte, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(body).
		Post(path)
	if err != nil {
		return nil, transportError(b.name, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, statusError(b.name, resp.StatusCode(), resp.Body())
	}
	return resp.Body(), nil
}
