package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sandevgo/lumina/internal/core"
)

const maxHistoryPreview = 200

type HistoryCommand struct {
	store        core.MemoryStore
	defaultLimit int
	formatter    *ResponseFormatter
}

func NewHistoryCommand(store core.MemoryStore, defaultLimit int) *HistoryCommand {
	return &HistoryCommand{
		store:        store,
		defaultLimit: defaultLimit,
		formatter:    NewResponseFormatter(),
	}
}

func (c *HistoryCommand) Name() string {
	return "history"
}

func (c *HistoryCommand) Description() string {
	return "Show the latest messages"
}

func (c *HistoryCommand) Execute(ctx context.Context, args string) (string, error) {
	limit := c.defaultLimit
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n <= 0 {
			return c.formatter.Combine(
				c.formatter.Error("history", fmt.Errorf("invalid count %q", args)),
				c.formatter.Usage("/history [count]"),
			), nil
		}
		limit = n
	}

	msgs, err := c.store.RecentMessages(ctx, limit)
	if err != nil {
		return "", fmt.Errorf("failed to load history: %w", err)
	}
	if len(msgs) == 0 {
		return c.formatter.Info("History is empty"), nil
	}

	items := make([]string, 0, len(msgs))
	for _, m := range msgs {
		who := "You"
		if m.Role == core.RoleAssistant {
			who = core.AppName
		}
		items = append(items, fmt.Sprintf("**%s**: %s", who, preview(m.Content)))
	}
	return c.formatter.Combine(
		c.formatter.Info(fmt.Sprintf("Last %d messages", len(msgs))),
		c.formatter.List(items),
	), nil
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= maxHistoryPreview {
		return s
	}
	return string(r[:maxHistoryPreview]) + "…"
}
