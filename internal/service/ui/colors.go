package ui

import "github.com/charmbracelet/lipgloss"

// Plain ANSI colors so the help output follows the terminal theme.
var (
	// TitleStyle ANSI 6 (cyan) for section titles
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	// UsageStyle ANSI 2 (green) for the usage line
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// DescStyle ANSI 8 (gray) keeps descriptions in the background
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// FlagStyle ANSI 3 (yellow)
	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)
