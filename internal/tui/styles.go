package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent  = lipgloss.Color("#4a90d9")
	muted   = lipgloss.Color("#8a94a6")
	danger  = lipgloss.Color("#e53935")
	userInk = lipgloss.Color("#d6eaff")
)

// Styles groups the lipgloss styles used by the chat view.
type Styles struct {
	Title      lipgloss.Style
	User       lipgloss.Style
	AI         lipgloss.Style
	Failure    lipgloss.Style
	LogBox     lipgloss.Style
	ParamsBox  lipgloss.Style
	ParamsHead lipgloss.Style
	Status     lipgloss.Style
}

// DefaultStyles returns the chat palette.
func DefaultStyles() Styles {
	return Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(accent),
		User:       lipgloss.NewStyle().Foreground(userInk).Bold(true),
		AI:         lipgloss.NewStyle(),
		Failure:    lipgloss.NewStyle().Foreground(danger),
		LogBox:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent),
		ParamsBox:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1),
		ParamsHead: lipgloss.NewStyle().Bold(true).Foreground(muted),
		Status:     lipgloss.NewStyle().Foreground(muted),
	}
}
