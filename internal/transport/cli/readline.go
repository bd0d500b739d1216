package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/sandevgo/lumina/internal/config"
	"github.com/sandevgo/lumina/internal/core"
	"github.com/sandevgo/lumina/pkg/log"
)

const imageCommand = "/image"

// Handler runs a conversational turn.
type Handler interface {
	Handle(ctx context.Context, channel core.Channel, message string, image *core.Image) (core.Response, error)
}

type ReadLine struct {
	cfg     *config.AppConfig
	handler Handler
	router  core.CmdRouter
	rl      *readline.Instance
}

func NewReadLine(cfg *config.AppConfig, handler Handler, router core.CmdRouter) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     cfg.GetInputHistoryPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:     cfg,
		handler: handler,
		router:  router,
		rl:      rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("ReadLine chat started. Type 'exit' to quit, /start for commands.")

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		r.process(ctx, line, r.rl.Stdout())
	}
}

// process handles one input line: image upload, slash command or chat.
func (r *ReadLine) process(ctx context.Context, line string, out io.Writer) {
	logger := log.FromCtx(ctx)

	var (
		message = line
		image   *core.Image
	)

	if isImageCommand(line) {
		path, caption, err := parseImageCommand(line)
		if err != nil {
			fmt.Fprintf(out, "Usage: %s <path> [caption]\n", imageCommand)
			return
		}
		if image, err = loadImage(path); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		message = caption
	} else if reply, handled := r.router.Execute(ctx, line); handled {
		fmt.Fprintln(out, reply)
		return
	}

	resp, err := r.handler.Handle(ctx, core.ChannelCLI, message, image)
	if err != nil {
		logger.Error().Err(err).Msg("turn failed")
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	renderResponse(out, resp)
}

func renderResponse(out io.Writer, resp core.Response) {
	// Display Reasoning (Thought Chain) if present
	if resp.Reasoning != "" {
		fmt.Fprintf(out, "\033[38;5;240m[Thinking]\n%s\033[0m\n", resp.Reasoning)
	}
	fmt.Fprintf(out, "%s\n\033[38;5;240mvia %s\033[0m\n", resp.Content, resp.Source)
}

func (r *ReadLine) Channel() core.Channel {
	return core.ChannelCLI
}

// Mirror prints turns from the other front ends above the prompt.
func (r *ReadLine) Mirror(_ context.Context, turn core.Turn) error {
	return writeMirror(r.rl.Stdout(), turn)
}

func writeMirror(out io.Writer, turn core.Turn) error {
	_, err := fmt.Fprintf(out, "\n[%s] You: %s\n[%s] %s: %s\n",
		turn.Channel, turn.User, turn.Channel, core.AppName, turn.Response.Content)
	return err
}

var _ core.Mirror = (*ReadLine)(nil)

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
