package installer

import (
	tea "github.com/charmbracelet/bubbletea"
)

const defaultTimeZone = "Europe/Berlin"

// FinalizationStep fills derived values before the settings are saved.
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	finalize(state)
	return nil, nil
}

func finalize(state *InstallState) {
	if !state.UseTelegram {
		state.Settings.TelegramToken = ""
		state.Settings.TelegramOwnerID = 0
	}
	if state.Settings.TimeZone == "" {
		state.Settings.TimeZone = defaultTimeZone
	}
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}
