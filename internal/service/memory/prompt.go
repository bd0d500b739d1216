package memory

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sandevgo/lumina/configs"
	"github.com/sandevgo/lumina/internal/core"
)

const (
	defaultPersona = "You are Lumina, a helpful personal assistant. Answer concisely and in the user's language."
	noFactsLine    = "- (no stored facts yet)"
)

const calendarRules = `CALENDAR RULES:
- When the user asks to create, move, rename or cancel an appointment, answer normally and append exactly one block per appointment:
[CALENDAR_EVENT]
Action: add|delete|edit
Title: <title>
Start: <ISO-8601 start, e.g. 2025-01-10T09:00:00>
Description: <optional description>
New_Title: <optional, edit only>
New_Start: <optional ISO-8601, edit only>
[/CALENDAR_EVENT]
- Always fill Title and Start. For delete and edit, Title and Start identify the existing appointment.
- Resolve relative dates ("tomorrow", "next Monday") against the current time below.
- Never emit the block when no calendar change is requested.`

type PromptConfig interface {
	GetIdentityPath() string
	Location() *time.Location
}

// SysPrompt renders the system instruction: persona, user facts, current
// time and the calendar rules.
type SysPrompt struct {
	cfg PromptConfig
}

func NewSysPrompt(cfg PromptConfig) *SysPrompt {
	return &SysPrompt{
		cfg: cfg,
	}
}

func (p *SysPrompt) Build(facts []core.Fact, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(p.persona())
	sb.WriteString("\n\nFACTS ABOUT THE USER:\n")
	sb.WriteString(RenderFacts(facts))
	sb.WriteString("\n\nCURRENT TIME: ")
	sb.WriteString(now.In(p.cfg.Location()).Format("Monday, 2006-01-02T15:04:05-07:00"))
	sb.WriteString("\n\n")
	sb.WriteString(calendarRules)

	return sb.String()
}

func (p *SysPrompt) persona() string {
	content, err := os.ReadFile(p.cfg.GetIdentityPath())
	if err == nil {
		if s := strings.TrimSpace(string(content)); s != "" {
			return s
		}
	}
	if s := strings.TrimSpace(configs.DefaultIdentity()); s != "" {
		return s
	}
	return defaultPersona
}

// RenderFacts formats facts as a bulleted list, or a placeholder line when
// nothing is stored.
func RenderFacts(facts []core.Fact) string {
	if len(facts) == 0 {
		return noFactsLine
	}
	lines := make([]string, 0, len(facts))
	for _, f := range facts {
		lines = append(lines, fmt.Sprintf("- %s: %s", f.Key, f.Value))
	}
	return strings.Join(lines, "\n")
}
