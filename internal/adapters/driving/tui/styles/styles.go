// Package styles holds the lipgloss styles shared by TUI views.
package styles

import "github.com/charmbracelet/lipgloss"

// Styles groups the styles used to render views.
type Styles struct {
	Title    lipgloss.Style
	Selected lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Unread   lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns the default palette.
func DefaultStyles() *Styles {
	return &Styles{
		Title:    lipgloss.NewStyle().Bold(true).MarginBottom(1),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		Normal:   lipgloss.NewStyle(),
		Muted:    lipgloss.NewStyle().Faint(true),
		Unread:   lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Help:     lipgloss.NewStyle().Faint(true).MarginTop(1),
	}
}
