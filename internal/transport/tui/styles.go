package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the widget's lipgloss styles.
type Styles struct {
	Title      lipgloss.Style
	Tab        lipgloss.Style
	ActiveTab  lipgloss.Style
	Record     lipgloss.Style
	Header     lipgloss.Style
	Muted      lipgloss.Style
	Error      lipgloss.Style
	PageLink   lipgloss.Style
	ActivePage lipgloss.Style
	Help       lipgloss.Style
}

// DefaultStyles returns the default palette.
func DefaultStyles() Styles {
	primary := lipgloss.Color("#7C3AED")
	muted := lipgloss.Color("#6C7086")
	return Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(primary).MarginBottom(1),
		Tab:        lipgloss.NewStyle().Padding(0, 1).Foreground(muted),
		ActiveTab:  lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#CDD6F4")).Background(primary),
		Record:     lipgloss.NewStyle().PaddingLeft(2),
		Header:     lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
		Muted:      lipgloss.NewStyle().Foreground(muted),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		PageLink:   lipgloss.NewStyle().Foreground(muted),
		ActivePage: lipgloss.NewStyle().Bold(true).Underline(true),
		Help:       lipgloss.NewStyle().Foreground(muted).MarginTop(1),
	}
}
