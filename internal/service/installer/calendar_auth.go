package installer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrAuthCancelled = errors.New("calendar authorization cancelled")

type exchangeDoneMsg struct{ err error }

// authModel shows the Google consent URL and exchanges the pasted code.
type authModel struct {
	url      string
	exchange func(code string) error
	input    textinput.Model
	busy     bool
	done     bool
	quitting bool
	err      error
}

func newAuthModel(authURL string, exchange func(code string) error) authModel {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 60
	ti.Placeholder = "4/0Ab..."

	return authModel{
		url:      authURL,
		exchange: exchange,
		input:    ti,
	}
}

func (m authModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m authModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if m.busy {
				return m, nil
			}
			code := strings.TrimSpace(m.input.Value())
			if code == "" {
				return m, nil
			}
			m.busy = true
			m.err = nil
			return m, m.exchangeCmd(code)
		}
	case exchangeDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			m.input.SetValue("")
			return m, nil
		}
		m.done = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m authModel) exchangeCmd(code string) tea.Cmd {
	return func() tea.Msg {
		return exchangeDoneMsg{err: m.exchange(code)}
	}
}

func (m authModel) View() string {
	if m.quitting {
		return "Authorization cancelled.\n"
	}
	if m.done {
		return "Google Calendar authorized.\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Google Calendar authorization") + "\n\n")
	b.WriteString("Open this URL in your browser and grant access:\n\n")
	b.WriteString(selStyle.Render(m.url) + "\n\n")
	b.WriteString("Paste the authorization code:\n\n")
	b.WriteString(m.input.View() + "\n\n")
	if m.busy {
		b.WriteString("Exchanging code...\n\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n")
	}
	b.WriteString("(press enter to confirm, esc to cancel)\n")
	return b.String()
}

// RunCalendarAuth prompts for the OAuth code until exchange succeeds or the
// user cancels.
func RunCalendarAuth(authURL string, exchange func(code string) error) error {
	p := tea.NewProgram(newAuthModel(authURL, exchange))
	m, err := p.Run()
	if err != nil {
		return err
	}
	if final := m.(authModel); !final.done {
		return ErrAuthCancelled
	}
	return nil
}
