// Package theme holds the lipgloss styles used by the command line output.
package theme

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	Keyword = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// States
var (
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Verdict renders a correct/incorrect marker.
func Verdict(ok bool) string {
	if ok {
		return Correct.Render("✓ correct")
	}
	return Incorrect.Render("✗ incorrect")
}

// Rule renders a horizontal separator of width n.
func Rule(n int) string {
	return Hint.Render(strings.Repeat("─", n))
}

// Field renders "label: value" with a styled label.
func Field(label, value string) string {
	return Label.Render(label+":") + " " + value
}
