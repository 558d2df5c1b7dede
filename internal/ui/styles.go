package ui

import (
	"github.com/charmbracelet/lipgloss"

	"tasklist/internal/task"
)

const (
	ColorCompleted  = "#10B981" // green
	ColorInProgress = "#F59E0B" // amber
	ColorNotStarted = "#6B7280" // gray
	ColorError      = "#EF4444"
	ColorAccent     = "#7C3AED"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorAccent)).
			Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorAccent)).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorNotStarted))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError))

	statusStyles = map[task.Status]lipgloss.Style{
		task.StatusNotStarted: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorNotStarted)),
		task.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorInProgress)),
		task.StatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorCompleted)),
	}
)

// renderStatus renders a status label in its color. The empty status
// renders as nothing.
func renderStatus(s task.Status) string {
	style, ok := statusStyles[s]
	if !ok {
		return ""
	}
	return style.Render(s.String())
}
