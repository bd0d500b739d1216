package core

import (
	"context"
	"time"
)

// CompletionRequest is the provider-neutral input of a single LLM call.
type CompletionRequest struct {
	System  string
	History []Message
	Message string
	Image   *Image
}

type Provider interface {
	Name() string
	Timeout() time.Duration
	// Vision reports whether the provider accepts image payloads.
	Vision() bool
	// TextFallback reports whether the provider may still run on an image
	// message using a substituted text prompt.
	TextFallback() bool
	Complete(ctx context.Context, req CompletionRequest) (Response, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, message string, image *Image) Response
}

// DirectiveOutcome summarizes what happened to one directive block.
type DirectiveOutcome struct {
	Action string
	Title  string
	Result string
	Err    error
}

type DirectiveApplier interface {
	Apply(ctx context.Context, text string) []DirectiveOutcome
}

// Calendar is the remote calendar consumed by the directive extractor.
type Calendar interface {
	Find(ctx context.Context, title, date string) ([]string, error)
	Add(ctx context.Context, summary, start, end, description, location string) (string, error)
	Delete(ctx context.Context, title, date string) (int, error)
	Edit(ctx context.Context, oldTitle, oldDate, newTitle, newStart string) (string, error)
}

// Mirror receives completed turns from other front ends.
type Mirror interface {
	Channel() Channel
	Mirror(ctx context.Context, turn Turn) error
}
