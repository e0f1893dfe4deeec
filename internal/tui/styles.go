// Package tui renders the manual-review queue in the terminal.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#66C0F4") // Steam blue
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#4ECDC4")
	// WarningColor indicates an armed action awaiting confirmation.
	WarningColor = lipgloss.Color("#FFE66D")
	// ErrorColor indicates failed actions.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for the surface title.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// HeadlineStyle formats the confirmation headline.
	HeadlineStyle = lipgloss.NewStyle().
			Bold(true)

	// SummaryStyle formats the confirmation summary lines.
	SummaryStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// ArmedStyle highlights the press-again prompt.
	ArmedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(WarningColor)

	// FailedStyle marks a failed action.
	FailedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ErrorColor)

	// StatusStyle formats transient status text.
	StatusStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// HintStyle formats the key hints in the footer.
	HintStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// BoxStyle frames the active confirmation.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)
)
