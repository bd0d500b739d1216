package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// APIKeyStep collects one provider API key. Every key is optional: a
// provider without a key is left out of the fallback chain.
type APIKeyStep struct {
	input textinput.Model
	title string
	set   func(*Settings, string)
}

func NewAPIKeyStep(title, placeholder string, set func(*Settings, string)) Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 40
	ti.Placeholder = placeholder
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'

	return &APIKeyStep{
		input: ti,
		title: title,
		set:   set,
	}
}

func providerKeySteps() []Step {
	return []Step{
		NewAPIKeyStep("OpenAI API Key", "sk-...", func(s *Settings, v string) { s.OpenAIAPIKey = v }),
		NewAPIKeyStep("Gemini API Key", "AIza...", func(s *Settings, v string) { s.GeminiAPIKey = v }),
		NewAPIKeyStep("OpenRouter API Key", "sk-or-v1-...", func(s *Settings, v string) { s.OpenRouterAPIKey = v }),
		NewAPIKeyStep("Anthropic API Key", "sk-ant-...", func(s *Settings, v string) { s.AnthropicAPIKey = v }),
	}
}

func (s *APIKeyStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *APIKeyStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			s.set(&state.Settings, strings.TrimSpace(s.input.Value()))
			return nil, nil
		}
	}
	return s, cmd
}

func (s *APIKeyStep) View(state *InstallState) string {
	return fmt.Sprintf("Enter your %s (optional - press Enter to skip):\n\n%s\n\n(press enter to confirm)\n",
		s.title, s.input.View())
}
