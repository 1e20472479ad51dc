// Package tui provides Bubble Tea views for the lintstream CLI.
//
// TUI rules:
//   - TUI is opt-in only (--tui flag)
//   - only the read-only inspect and stats commands have one
//   - views render the same payloads as the json/table/yaml output
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// Color palette.
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	successColor   = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	highlightColor = lipgloss.Color("#3B82F6") // Blue
)

// Styles for TUI components.
var (
	// TitleStyle for headers and titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// LabelStyle for field labels.
	LabelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(18)

	// ValueStyle for field values.
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	InfoStyle = lipgloss.NewStyle().
			Foreground(highlightColor)

	// BoxStyle for bordered containers.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	// StatBoxStyle for stat display boxes.
	StatBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(highlightColor).
			Padding(0, 2).
			Width(20).
			Align(lipgloss.Center)

	StatLabelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Align(lipgloss.Center)

	StatValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Align(lipgloss.Center)
)

// StatusStyle returns the style for a run status.
func StatusStyle(status string) lipgloss.Style {
	switch types.RunStatus(status) {
	case types.RunStatusComplete:
		return SuccessStyle
	case types.RunStatusPartialComplete, types.RunStatusAborted:
		return WarningStyle
	case types.RunStatusLicenseError, types.RunStatusUnsupportedVersion,
		types.RunStatusProcessError, types.RunStatusProcessTimeout:
		return ErrorStyle
	default:
		return ValueStyle
	}
}

// MessageTypeStyle returns the style for a message type.
func MessageTypeStyle(t string) lipgloss.Style {
	switch types.MessageType(t) {
	case types.MessageTypeError:
		return ErrorStyle
	case types.MessageTypeWarning:
		return WarningStyle
	case types.MessageTypeInfo:
		return InfoStyle
	default:
		return ValueStyle
	}
}
