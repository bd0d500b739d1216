package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// CalendarStep asks for the Google OAuth client credentials file. An empty
// answer leaves the calendar disabled.
type CalendarStep struct {
	input textinput.Model
	err   string
}

func NewCalendarStep() Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = 60
	ti.Placeholder = "/path/to/credentials.json"
	ti.EchoMode = textinput.EchoNormal

	return &CalendarStep{
		input: ti,
	}
}

func (s *CalendarStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *CalendarStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			if err := applyCalendar(state, s.input.Value()); err != nil {
				s.err = err.Error()
				return s, cmd
			}
			return nil, nil
		}
	}
	return s, cmd
}

func applyCalendar(state *InstallState, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		state.Settings.CalendarEnabled = false
		return nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("cannot read %s", abs)
	}

	state.Settings.CalendarEnabled = true
	state.Settings.CalendarCredentials = abs
	state.Settings.CalendarToken = filepath.Join(state.RuntimePath, "token.json")
	return nil
}

func (s *CalendarStep) View(state *InstallState) string {
	view := "Google Calendar OAuth client file (optional - press Enter to skip):\n\n" +
		s.input.View() + "\n\n"
	if s.err != "" {
		view += errorStyle.Render(s.err) + "\n\n"
	}
	return view + "(press enter to confirm)\n"
}
