package memory

import (
	"context"
	"time"

	"github.com/sandevgo/lumina/internal/core"
	"github.com/sandevgo/lumina/pkg/log"
)

// Memory assembles the per-request prompt context from stored facts and
// recent history.
type Memory struct {
	store        core.MemoryStore
	prompter     *SysPrompt
	historyLimit int
	budget       int
	counter      TokenCounter
	now          func() time.Time
}

type Option func(*Memory)

// WithTokenBudget trims the oldest history messages until the history fits
// into budget tokens as measured by counter. A zero budget or nil counter
// disables trimming.
func WithTokenBudget(budget int, counter TokenCounter) Option {
	return func(m *Memory) {
		m.budget = budget
		m.counter = counter
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		m.now = now
	}
}

func NewMemory(store core.MemoryStore, prompter *SysPrompt, historyLimit int, opts ...Option) *Memory {
	m := &Memory{
		store:        store,
		prompter:     prompter,
		historyLimit: historyLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BuildContext returns the system instruction and the history to send
// ahead of the new user message.
func (m *Memory) BuildContext(ctx context.Context) (string, []core.Message) {
	facts, _ := m.store.AllFacts(ctx)
	history, _ := m.store.RecentMessages(ctx, m.historyLimit)

	trimmed := m.trim(history)
	if len(trimmed) < len(history) {
		log.FromCtx(ctx).Debug().
			Int("dropped", len(history)-len(trimmed)).
			Int("budget", m.budget).
			Msg("history trimmed to token budget")
	}

	return m.prompter.Build(facts, m.now()), trimmed
}

func (m *Memory) trim(history []core.Message) []core.Message {
	if m.budget <= 0 || m.counter == nil {
		return history
	}

	total := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		total += m.counter.Count(history[i].Content)
		if total > m.budget {
			break
		}
		start = i
	}
	return history[start:]
}
