// Package theme holds the terminal palette and shared lipgloss styles.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

var (
	Primary   = lipgloss.Color("#3B82F6")
	Secondary = lipgloss.Color("#14B8A6")
	Accent    = lipgloss.Color("#F59E0B")
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

var (
	Title    = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	Body     = lipgloss.NewStyle().Foreground(Text)
	Hint     = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
	Label    = lipgloss.NewStyle().Foreground(TextDim).Width(18)
	Selected = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	// Unselected menu rows.
	Unselected = lipgloss.NewStyle().Foreground(Text)
	Bad        = lipgloss.NewStyle().Foreground(Error).Bold(true)

	// Chrome is the bordered bar used for the header and footer.
	Chrome = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(Text).
			Bold(true).
			Padding(0, 2)
	ButtonInactive = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)
)

var categoryColors = map[string]color.Color{
	"high_consistent": Secondary,
	"high":            Success,
	"moderate":        Accent,
	"low":             Error,
}

// CategoryColor picks the badge color for a category slug.
func CategoryColor(slug string) color.Color {
	if c, ok := categoryColors[slug]; ok {
		return c
	}
	return TextDim
}

// Badge renders a category name in its color.
func Badge(slug, name string) string {
	return lipgloss.NewStyle().Foreground(CategoryColor(slug)).Bold(true).Render(name)
}

// ScoreColor bands a 0-100 weekly score: 75 and up is good, below 50 is
// weak.
func ScoreColor(score float64) color.Color {
	switch {
	case score >= 75:
		return Success
	case score >= 50:
		return Accent
	default:
		return Error
	}
}
