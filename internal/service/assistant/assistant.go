package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sandevgo/lumina/internal/core"
	"github.com/sandevgo/lumina/pkg/log"
)

var ErrEmptyMessage = errors.New("message is empty and no image was attached")

// Assistant runs one conversational turn for any front end: persist the
// user turn, dispatch, apply directives, persist the reply, mirror.
type Assistant struct {
	store      core.MemoryStore
	dispatcher core.Dispatcher
	directives core.DirectiveApplier

	mu      sync.RWMutex
	mirrors []core.Mirror
	now     func() time.Time
}

func NewAssistant(store core.MemoryStore, dispatcher core.Dispatcher, directives core.DirectiveApplier) *Assistant {
	return &Assistant{
		store:      store,
		dispatcher: dispatcher,
		directives: directives,
		now:        time.Now,
	}
}

// AddMirror registers a front end that should see turns from the others.
func (a *Assistant) AddMirror(m core.Mirror) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mirrors = append(a.mirrors, m)
}

// Handle processes a message from channel and returns the reply for the
// originating front end.
func (a *Assistant) Handle(ctx context.Context, channel core.Channel, message string, image *core.Image) (core.Response, error) {
	message = strings.TrimSpace(message)
	if message == "" && image == nil {
		return core.Response{}, ErrEmptyMessage
	}

	turnID := uuid.NewString()
	ctx = log.WithFields(ctx, "turn", turnID, "channel", string(channel))
	logger := log.FromCtx(ctx)

	userContent := core.UserContent(message, image)
	if err := a.store.AppendMessage(ctx, core.RoleUser, userContent); err != nil {
		logger.Error().Err(err).Msg("failed to save user message")
	}

	resp := a.dispatcher.Dispatch(ctx, message, image)
	logger.Info().
		Str("source", resp.Source).
		Bool("failed", resp.Failed()).
		Msg("turn dispatched")

	if !resp.Failed() && a.directives != nil {
		a.directives.Apply(ctx, resp.Content)
	}

	if err := a.store.AppendMessage(ctx, core.RoleAssistant, resp.Content); err != nil {
		logger.Error().Err(err).Msg("failed to save assistant message")
	}

	a.mirror(ctx, core.Turn{
		ID:       turnID,
		Channel:  channel,
		User:     userContent,
		Response: resp,
		At:       a.now(),
	})

	return resp, nil
}

func (a *Assistant) mirror(ctx context.Context, turn core.Turn) {
	a.mu.RLock()
	mirrors := make([]core.Mirror, len(a.mirrors))
	copy(mirrors, a.mirrors)
	a.mu.RUnlock()

	for _, m := range mirrors {
		if m.Channel() == turn.Channel {
			continue
		}
		if err := m.Mirror(ctx, turn); err != nil {
			log.FromCtx(ctx).Warn().
				Err(err).
				Str("target", string(m.Channel())).
				Msg("failed to mirror turn")
		}
	}
}
