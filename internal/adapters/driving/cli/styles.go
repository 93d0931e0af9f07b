package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette used for terminal output.
var (
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorMuted   = lipgloss.Color("#6C7086") // Medium gray
	colorSuccess = lipgloss.Color("#A6E3A1") // Green
	colorError   = lipgloss.Color("#F38BA8") // Red
	colorBorder  = lipgloss.Color("#45475A") // Border gray
)

// outputStyles contains pre-configured lipgloss styles.
type outputStyles struct {
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Border  lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

var styles = outputStyles{
	Header: lipgloss.NewStyle().
		Bold(true).
		Foreground(colorPrimary).
		Padding(0, 1),

	Cell: lipgloss.NewStyle().
		Padding(0, 1),

	Border: lipgloss.NewStyle().
		Foreground(colorBorder),

	Muted: lipgloss.NewStyle().
		Foreground(colorMuted),

	Success: lipgloss.NewStyle().
		Foreground(colorSuccess),

	Error: lipgloss.NewStyle().
		Foreground(colorError),
}
