package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#8BC34A")
	muted  = lipgloss.Color("#6e7781")
	danger = lipgloss.Color("#e53935")
	info   = lipgloss.Color("#2196F3")
)

type styles struct {
	Title    lipgloss.Style
	Selected lipgloss.Style
	Item     lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	Detail   lipgloss.Style
	Label    lipgloss.Style
	Column   lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(accent),
		Item:     lipgloss.NewStyle().PaddingLeft(2),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Error:    lipgloss.NewStyle().Foreground(danger),
		Info:     lipgloss.NewStyle().Foreground(info),
		Detail: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),
		Label:  lipgloss.NewStyle().Bold(true),
		Column: lipgloss.NewStyle().Underline(true).Foreground(accent),
	}
}
