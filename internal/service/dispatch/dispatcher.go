package dispatch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sandevgo/lumina/internal/core"
	"github.com/sandevgo/lumina/internal/providers/llm"
	"github.com/sandevgo/lumina/pkg/log"
)

const (
	// ApologyMessage is returned when every provider in the chain failed.
	ApologyMessage = "Sorry, I couldn't reach any of my language models right now. Please try again in a moment."

	// DefaultImageCaption stands in for an image message sent without text.
	DefaultImageCaption = "Describe this image."

	imageRequestPrefix = "[image analysis requested] "
)

// ContextBuilder produces the system instruction and the recent history
// shared by every provider attempt of a single dispatch.
type ContextBuilder interface {
	BuildContext(ctx context.Context) (string, []core.Message)
}

// Dispatcher walks an ordered provider chain and returns the first
// successful response. It keeps no state between calls.
type Dispatcher struct {
	chain   []core.Provider
	builder ContextBuilder
}

func NewDispatcher(chain []core.Provider, builder ContextBuilder) *Dispatcher {
	return &Dispatcher{
		chain:   chain,
		builder: builder,
	}
}

func (d *Dispatcher) Chain() []core.Provider {
	return d.chain
}

func (d *Dispatcher) Dispatch(ctx context.Context, message string, image *core.Image) core.Response {
	logger := log.FromCtx(ctx)

	system, history := d.builder.BuildContext(ctx)
	history = dropPending(history, message, image)

	if image != nil && strings.TrimSpace(message) == "" {
		message = DefaultImageCaption
	}

	base := core.CompletionRequest{
		System:  system,
		History: history,
		Message: message,
		Image:   image,
	}

	for _, p := range d.chain {
		req, ok := requestFor(p, base)
		if !ok {
			logger.Debug().Str("provider", p.Name()).Msg("provider skipped: no vision support")
			continue
		}

		start := time.Now()
		resp, err := d.call(ctx, p, req)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("provider", p.Name()).
				Str("kind", string(llm.KindOf(err))).
				Dur("elapsed", time.Since(start)).
				Msg("provider failed, falling back")
			continue
		}

		logger.Info().
			Str("provider", p.Name()).
			Dur("elapsed", time.Since(start)).
			Msg("provider answered")
		return resp
	}

	logger.Error().Int("providers", len(d.chain)).Msg("all providers failed")
	return core.Response{Content: ApologyMessage, Source: core.SourceError}
}

// call runs a single attempt bounded by the provider timeout. Panics are
// reported as transport failures so the chain can continue.
func (d *Dispatcher) call(ctx context.Context, p core.Provider, req core.CompletionRequest) (resp core.Response, err error) {
	callCtx, cancel := context.WithTimeout(ctx, p.Timeout())
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = &llm.Error{Provider: p.Name(), Kind: llm.KindTransport, Err: errors.New("provider panicked")}
		}
	}()

	resp, err = p.Complete(callCtx, req)
	if err != nil {
		return core.Response{}, err
	}
	if strings.TrimSpace(resp.Content) == "" {
		return core.Response{}, &llm.Error{Provider: p.Name(), Kind: llm.KindMalformed, Err: errors.New("empty content")}
	}
	if resp.Source == "" {
		resp.Source = p.Name()
	}
	return resp, nil
}

// dropPending removes the trailing history entry when it is the user turn
// being dispatched, which front ends persist before dispatching.
func dropPending(history []core.Message, message string, image *core.Image) []core.Message {
	if len(history) == 0 {
		return history
	}
	last := history[len(history)-1]
	if last.Role == core.RoleUser && last.Content == core.UserContent(strings.TrimSpace(message), image) {
		return history[:len(history)-1]
	}
	return history
}

// requestFor adapts the shared request to the provider's capabilities.
// It reports false when the provider cannot take part in this dispatch.
func requestFor(p core.Provider, req core.CompletionRequest) (core.CompletionRequest, bool) {
	if req.Image == nil || p.Vision() {
		return req, true
	}
	if !p.TextFallback() {
		return req, false
	}

	req.Message = imageRequestPrefix + req.Message
	req.Image = nil
	return req, true
}
