package directive

import (
	"context"
	"fmt"

	"github.com/sandevgo/lumina/internal/core"
	"github.com/sandevgo/lumina/pkg/log"
)

// DefaultDescription is attached to added events that carry none.
const DefaultDescription = "Created automatically by Lumina."

// Extractor applies the calendar directives found in assistant replies.
// Every block is handled on its own; a failing block never stops the rest.
type Extractor struct {
	calendar core.Calendar
}

func NewExtractor(calendar core.Calendar) *Extractor {
	return &Extractor{calendar: calendar}
}

func (e *Extractor) Apply(ctx context.Context, text string) []core.DirectiveOutcome {
	parsed := Parse(text)
	if len(parsed) == 0 {
		return nil
	}

	logger := log.FromCtx(ctx)
	outcomes := make([]core.DirectiveOutcome, 0, len(parsed))

	for i, p := range parsed {
		if p.Skipped() {
			logger.Warn().Int("block", i).Str("reason", p.Skip).Msg("calendar directive skipped")
			outcomes = append(outcomes, core.DirectiveOutcome{
				Action: p.Directive.Action,
				Title:  p.Directive.Title,
				Err:    fmt.Errorf("skipped: %s", p.Skip),
			})
			continue
		}

		out := e.run(ctx, p.Directive)
		if out.Err != nil {
			logger.Error().
				Err(out.Err).
				Int("block", i).
				Str("action", out.Action).
				Str("title", out.Title).
				Msg("calendar directive failed")
		} else {
			logger.Info().
				Int("block", i).
				Str("action", out.Action).
				Str("title", out.Title).
				Str("result", out.Result).
				Msg("calendar directive applied")
		}
		outcomes = append(outcomes, out)
	}

	return outcomes
}

func (e *Extractor) run(ctx context.Context, d Directive) (out core.DirectiveOutcome) {
	out = core.DirectiveOutcome{Action: d.Action, Title: d.Title}

	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("panic: %v", r)
		}
	}()

	if e.calendar == nil {
		out.Err = fmt.Errorf("no calendar configured")
		return out
	}

	switch d.Action {
	case ActionDelete:
		n, err := e.calendar.Delete(ctx, d.Title, d.Start)
		out.Result = fmt.Sprintf("deleted %d event(s)", n)
		out.Err = err
	case ActionEdit:
		out.Result, out.Err = e.calendar.Edit(ctx, d.Title, d.Start, d.NewTitle, d.NewStart)
	default:
		description := d.Description
		if description == "" {
			description = DefaultDescription
		}
		out.Result, out.Err = e.calendar.Add(ctx, d.Title, d.Start, "", description, "")
	}

	return out
}
