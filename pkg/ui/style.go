package ui

import (
	"github.com/charmbracelet/lipgloss"

	"oifits/pkg/check"
)

// Palette is the colour scheme used by the terminal report.
type Palette struct {
	Primary lipgloss.AdaptiveColor
	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
}

// DefaultPalette adapts to light and dark terminals.
var DefaultPalette = Palette{
	Primary: lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7C3AED"},
	Success: lipgloss.AdaptiveColor{Light: "#02BA84", Dark: "#10B981"},
	Warning: lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#F59E0B"},
	Error:   lipgloss.AdaptiveColor{Light: "#FF5F56", Dark: "#EF4444"},
	Muted:   lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#94A3B8"},
}

// Styles for the check report.
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(DefaultPalette.Primary).
			Bold(true).
			MarginBottom(1)

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Width(18)

	descStyle = lipgloss.NewStyle().
			Foreground(DefaultPalette.Muted)

	locationStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DefaultPalette.Primary).
			Padding(0, 1).
			MarginTop(1)
)

// levelStyle returns the badge style for a breach level.
func levelStyle(l check.Level) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Width(16)
	switch l {
	case check.None:
		return base.Foreground(DefaultPalette.Success)
	case check.Warning:
		return base.Foreground(DefaultPalette.Warning)
	default:
		return base.Foreground(DefaultPalette.Error)
	}
}
