package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/lumina/internal/core"
)

type StartCommand struct {
	router    core.CmdRouter
	formatter *ResponseFormatter
}

func NewStartCommand(router core.CmdRouter) *StartCommand {
	return &StartCommand{
		router:    router,
		formatter: NewResponseFormatter(),
	}
}

func (c *StartCommand) Name() string {
	return "start"
}

func (c *StartCommand) Description() string {
	return "Greeting and list of commands"
}

func (c *StartCommand) Execute(_ context.Context, _ string) (string, error) {
	var items []string
	for _, cmd := range c.router.ListCommands() {
		if cmd.Name() == c.Name() {
			continue
		}
		items = append(items, fmt.Sprintf("`/%s` %s", cmd.Name(), cmd.Description()))
	}

	return c.formatter.Combine(
		c.formatter.Info(fmt.Sprintf("Hi, I'm %s", core.AppName)),
		"Send me a message or a photo. Everything you write here also shows up in the web chat.\n",
		c.formatter.Section("📋", "Commands", c.formatter.List(items)),
	), nil
}
