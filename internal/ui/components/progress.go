package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/gradetrend/internal/ui/theme"
)

// ScoreBar draws one score as a horizontal bar scaled to Max.
type ScoreBar struct {
	Label string
	Score float64
	Max   float64
	Width int
}

func NewScoreBar(label string, score, max float64, width int) ScoreBar {
	return ScoreBar{Label: label, Score: score, Max: max, Width: width}
}

// Fraction is the filled share of the bar, clamped to [0, 1].
func (p ScoreBar) Fraction() float64 {
	if p.Max <= 0 {
		return 0
	}
	f := p.Score / p.Max
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// View renders the label, the bar colored by score band, then the score.
func (p ScoreBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Width(8).Render(p.Label)
	}

	const scoreWidth = 7 // "  100.0"
	barWidth := p.Width - lipgloss.Width(result) - scoreWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Fraction())
	empty := barWidth - filled

	result += lipgloss.NewStyle().
		Background(theme.ScoreColor(p.Fraction() * 100)).
		Render(strings.Repeat(" ", filled))
	result += lipgloss.NewStyle().
		Background(theme.Border).
		Render(strings.Repeat(" ", empty))
	result += lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("  %5.1f", p.Score))

	return result
}
