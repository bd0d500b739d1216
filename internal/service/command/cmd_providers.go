package command

import (
	"context"
	"fmt"
)

type ProvidersCommand struct {
	chain     ChainSource
	formatter *ResponseFormatter
}

func NewProvidersCommand(chain ChainSource) *ProvidersCommand {
	return &ProvidersCommand{
		chain:     chain,
		formatter: NewResponseFormatter(),
	}
}

func (c *ProvidersCommand) Name() string {
	return "providers"
}

func (c *ProvidersCommand) Description() string {
	return "Show the model fallback order"
}

func (c *ProvidersCommand) Execute(_ context.Context, _ string) (string, error) {
	chain := c.chain.Chain()
	if len(chain) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Providers"),
			c.formatter.Tip("No provider has an API key. Run `lumina install`."),
		), nil
	}

	items := make([]string, 0, len(chain))
	for i, p := range chain {
		caps := "text"
		if p.Vision() {
			caps = "text, images"
		} else if p.TextFallback() {
			caps = "text, images described as text"
		}
		items = append(items, fmt.Sprintf("%d. **%s** (%s, timeout %s)", i+1, p.Name(), caps, p.Timeout()))
	}
	return c.formatter.Combine(
		c.formatter.Info("Providers"),
		c.formatter.List(items),
	), nil
}
