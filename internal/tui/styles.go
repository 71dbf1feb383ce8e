package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#8BC34A")
	muted  = lipgloss.Color("#6b7280")
	info   = lipgloss.Color("#2196F3")
	warn   = lipgloss.Color("#FFC107")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	labelStyle   = cellStyle.Foreground(info)
	emptyStyle   = cellStyle.Foreground(muted).Italic(true)
	focusStyle   = lipgloss.NewStyle().Reverse(true)
	previewStyle = lipgloss.NewStyle().Foreground(warn).Bold(true)
	logStyle     = lipgloss.NewStyle().Foreground(muted)
	helpStyle    = lipgloss.NewStyle().Foreground(muted)
)
