package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/lumina/internal/core"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAI_Complete(t *testing.T) {
	var got map[string]any
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hello!"}}]}`))
	})

	p := NewOpenAI(srv.URL, "sk-test", "gpt-test", time.Second)
	resp, err := p.Complete(context.Background(), core.CompletionRequest{
		System:  "be nice",
		History: []core.Message{{Role: core.RoleUser, Content: "hi"}, {Role: core.RoleAssistant, Content: "hey"}},
		Message: "how are you?",
	})
	require.NoError(t, err)
	assert.Equal(t, core.Response{Content: "Hello!", Source: NameOpenAI}, resp)

	assert.Equal(t, "gpt-test", got["model"])
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "how are you?", msgs[3].(map[string]any)["content"])
}

func TestOpenAI_CompleteWithImage(t *testing.T) {
	var got struct {
		Messages []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"A cat."}}]}`))
	})

	p := NewOpenAI(srv.URL, "sk-test", "gpt-test", time.Second)
	_, err := p.Complete(context.Background(), core.CompletionRequest{
		Message: "what is this?",
		Image:   &core.Image{Data: []byte{0x89, 'P', 'N', 'G'}, MIME: "image/png"},
	})
	require.NoError(t, err)

	require.Len(t, got.Messages, 1)
	var parts []contentPart
	require.NoError(t, json.Unmarshal(got.Messages[0].Content, &parts))
	require.Len(t, parts, 2)
	assert.Equal(t, "what is this?", parts[0].Text)
	assert.Equal(t, "image_url", parts[1].Type)
	assert.Equal(t, "data:image/png;base64,iVBORw==", parts[1].ImageURL.URL)
}

func TestOpenRouter_ReasoningAndHeaders(t *testing.T) {
	var got map[string]any
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, core.AppName, r.Header.Get("X-Title"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"42","reasoning":"thought hard"}}]}`))
	})

	p := NewOpenRouter(srv.URL, "sk-or", "trinity", time.Second, true)
	assert.False(t, p.Vision())
	assert.True(t, p.TextFallback())

	resp, err := p.Complete(context.Background(), core.CompletionRequest{Message: "answer?"})
	require.NoError(t, err)
	assert.Equal(t, "42", resp.Content)
	assert.Equal(t, NameOpenRouter, resp.Source)
	assert.Equal(t, "thought hard", resp.Reasoning)
	assert.Equal(t, map[string]any{"enabled": true}, got["reasoning"])
}

func TestOpenAICompatible_ErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		timeout  time.Duration
		wantKind ErrorKind
		wantCode int
	}{
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate limited"}`))
			},
			wantKind: KindStatus,
			wantCode: http.StatusTooManyRequests,
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>oops</html>`))
			},
			wantKind: KindMalformed,
		},
		{
			name: "empty choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[]}`))
			},
			wantKind: KindMalformed,
		},
		{
			name: "empty content",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  "}}]}`))
			},
			wantKind: KindMalformed,
		},
		{
			name: "deadline exceeded",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			timeout:  50 * time.Millisecond,
			wantKind: KindTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.handler)
			p := NewOpenAI(srv.URL, "sk-test", "gpt-test", time.Second)

			ctx := context.Background()
			if tt.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, tt.timeout)
				defer cancel()
			}

			_, err := p.Complete(ctx, core.CompletionRequest{Message: "hi"})
			require.Error(t, err)

			var pe *Error
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.wantKind, pe.Kind)
			assert.Equal(t, NameOpenAI, pe.Provider)
			assert.Equal(t, tt.wantCode, pe.StatusCode)
			assert.Equal(t, tt.wantKind, KindOf(err))
		})
	}
}

func TestOpenAICompatible_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewOpenAI(url, "sk-test", "gpt-test", time.Second)
	_, err := p.Complete(context.Background(), core.CompletionRequest{Message: "hi"})
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
}
