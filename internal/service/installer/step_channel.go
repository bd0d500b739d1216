package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type channelChoice struct {
	label    string
	web      bool
	telegram bool
	cli      bool
}

// ChannelStep selects which front ends run next to each other.
type ChannelStep struct {
	choices []channelChoice
	cursor  int
}

func NewChannelStep() Step {
	return &ChannelStep{
		choices: []channelChoice{
			{label: "Web + Telegram", web: true, telegram: true},
			{label: "Web only", web: true},
			{label: "Web + Console", web: true, cli: true},
			{label: "Telegram only", telegram: true},
			{label: "Console only", cli: true},
		},
	}
}

func (s *ChannelStep) Init() tea.Cmd {
	return nil
}

func (s *ChannelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case "enter":
			c := s.choices[s.cursor]
			state.UseTelegram = c.telegram
			state.Settings.EnableCLI = c.cli
			if !c.web {
				state.Settings.EnableWeb = "false"
			}
			return nil, nil
		}
	}
	return s, nil
}

func (s *ChannelStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString("Select your front ends:\n\n")
	for i, choice := range s.choices {
		cursor := " "
		if s.cursor == i {
			cursor = "❯"
			b.WriteString(selStyle.Render(fmt.Sprintf("%s %s", cursor, choice.label)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("%s %s", cursor, choice.label)) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}
