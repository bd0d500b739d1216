package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/lumina/internal/core"
)

type FactsCommand struct {
	store     core.MemoryStore
	formatter *ResponseFormatter
}

func NewFactsCommand(store core.MemoryStore) *FactsCommand {
	return &FactsCommand{
		store:     store,
		formatter: NewResponseFormatter(),
	}
}

func (c *FactsCommand) Name() string {
	return "facts"
}

func (c *FactsCommand) Description() string {
	return "List everything I know about you"
}

func (c *FactsCommand) Execute(ctx context.Context, _ string) (string, error) {
	facts, err := c.store.AllFacts(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load facts: %w", err)
	}
	if len(facts) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Facts"),
			c.formatter.Tip("Nothing stored yet. Try `/remember city: Berlin`."),
		), nil
	}

	items := make([]string, 0, len(facts))
	for _, f := range facts {
		items = append(items, fmt.Sprintf("**%s**: %s", f.Key, f.Value))
	}
	return c.formatter.Combine(
		c.formatter.Info("Facts"),
		c.formatter.List(items),
	), nil
}
