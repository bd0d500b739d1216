package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandevgo/lumina/internal/core"
)

type RememberCommand struct {
	store     core.MemoryStore
	formatter *ResponseFormatter
}

func NewRememberCommand(store core.MemoryStore) *RememberCommand {
	return &RememberCommand{
		store:     store,
		formatter: NewResponseFormatter(),
	}
}

func (c *RememberCommand) Name() string {
	return "remember"
}

func (c *RememberCommand) Description() string {
	return "Store a fact about you"
}

func (c *RememberCommand) Execute(ctx context.Context, args string) (string, error) {
	key, value, err := ParseFact(args)
	if err != nil {
		return c.formatter.Combine(
			c.formatter.Error("remember", err),
			c.formatter.Usage("/remember key: value"),
			c.formatter.Examples([]string{
				"/remember city: Berlin",
				"/remember favourite food: ramen",
			}),
		), nil
	}

	if err := c.store.UpsertFact(ctx, key, value); err != nil {
		return "", fmt.Errorf("failed to save fact: %w", err)
	}
	return c.formatter.Success(fmt.Sprintf("Remembered %s: %s", key, value)), nil
}

// ParseFact splits "key: value" on the first colon. Keys are lower-cased.
func ParseFact(args string) (string, string, error) {
	key, value, found := strings.Cut(args, ":")
	if !found {
		return "", "", errors.New("expected key: value")
	}
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return "", "", errors.New("key and value must not be empty")
	}
	return key, value, nil
}
