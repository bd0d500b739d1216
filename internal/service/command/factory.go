package command

import (
	"github.com/sandevgo/lumina/internal/core"
)

// ChainSource exposes the provider chain in fallback order.
type ChainSource interface {
	Chain() []core.Provider
}

func NewCommands(
	store core.MemoryStore,
	chain ChainSource,
	historyLimit int,
) []core.Command {
	return []core.Command{
		NewRememberCommand(store),
		NewFactsCommand(store),
		NewHistoryCommand(store, historyLimit),
		NewProvidersCommand(chain),
	}
}

// NewRouter wires the default commands plus /start, which lists them.
func NewRouter(store core.MemoryStore, chain ChainSource, historyLimit int) *Router {
	cmds := NewCommands(store, chain, historyLimit)
	r := New(cmds)
	r.commands["start"] = NewStartCommand(r)
	return r
}
