package web

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sandevgo/lumina/internal/core"
)

const (
	subscriberBuffer  = 16
	keepAliveInterval = 25 * time.Second
)

// Hub fans mirrored turns out to every open /events stream. Slow
// subscribers miss turns instead of blocking the sender.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan core.Turn]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan core.Turn]struct{})}
}

func (h *Hub) Channel() core.Channel {
	return core.ChannelWeb
}

func (h *Hub) Mirror(_ context.Context, turn core.Turn) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- turn:
		default:
		}
	}
	return nil
}

// Subscribe registers a listener. The returned func removes it again.
func (h *Hub) Subscribe() (<-chan core.Turn, func()) {
	ch := make(chan core.Turn, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close ends every open stream.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}

var _ core.Mirror = (*Hub)(nil)

type turnEvent struct {
	ID        string `json:"id"`
	Channel   string `json:"channel"`
	User      string `json:"user"`
	Content   string `json:"content"`
	Source    string `json:"source"`
	Reasoning string `json:"reasoning,omitempty"`
	At        string `json:"at"`
}

func newTurnEvent(t core.Turn) turnEvent {
	return turnEvent{
		ID:        t.ID,
		Channel:   string(t.Channel),
		User:      t.User,
		Content:   t.Response.Content,
		Source:    t.Response.Source,
		Reasoning: t.Response.Reasoning,
		At:        t.At.Format(time.RFC3339),
	}
}

func (s *Server) events(c *gin.Context) {
	turns, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	c.Stream(func(_ io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case turn, ok := <-turns:
			if !ok {
				return false
			}
			c.SSEvent("turn", newTurnEvent(turn))
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}
