// Package layout draws the frame around every screen and decides when the
// terminal is too narrow or short for the full layout.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/gradetrend/internal/ui/theme"
)

const (
	// The form card with the two week columns needs this much room.
	MinWidth  = 72
	MinHeight = 28

	HeaderHeight = 3
	FooterHeight = 3

	CompactWidthThreshold  = 100
	CompactHeightThreshold = 30
)

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsCompactWidth(width int) bool   { return width < CompactWidthThreshold }
func IsCompactHeight(height int) bool { return height < CompactHeightThreshold }

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// ContentHeight is what is left for a screen once the header and footer
// are drawn.
func ContentHeight(total int) int {
	return max(total-HeaderHeight-FooterHeight, 0)
}

func RenderMinSizeMessage(width, height int) string {
	text := fmt.Sprintf(
		"Terminal too small for the form.\n\nResize to at least %d x %d\n\nCurrent: %d x %d",
		MinWidth, MinHeight, width, height,
	)
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(text)
}

// spread places center in the middle of a line of the given width, with
// left and right pinned to the edges and at least one space between parts.
func spread(left, center, right string, width int) string {
	lw, cw, rw := lipgloss.Width(left), lipgloss.Width(center), lipgloss.Width(right)
	gapL := max((width-cw)/2-lw, 1)
	gapR := max(width-lw-gapL-cw-rw, 1)
	return left + strings.Repeat(" ", gapL) + center + strings.Repeat(" ", gapR) + right
}

// RenderHeader draws the app name, the screen title and a status string.
func RenderHeader(title, status string, width int) string {
	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  Gradetrend")
	line := spread(
		brand,
		theme.Body.Render(title),
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(status),
		max(width-4, 0),
	)
	return theme.Chrome.Width(width).Render(line)
}

// RenderFooter renders the key hints. On a compact width the descriptions
// are dropped, and trailing hints that still don't fit are cut.
func RenderFooter(hints []KeyHint, width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	compact := IsCompactWidth(width)

	room := width - 6
	line := " "
	for _, h := range hints {
		part := keyStyle.Render(h.Key)
		if !compact {
			part += " " + descStyle.Render(h.Description)
		}
		if lipgloss.Width(line)+lipgloss.Width(part)+3 > room {
			break
		}
		line += "  " + part + " "
	}
	return theme.Chrome.Width(width).Render(line)
}

// RenderFrame stacks header, body and footer, padding the body to fill
// whatever height the two bars leave.
func RenderFrame(header, body, footer string, width, height int) string {
	bodyHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	filled := lipgloss.NewStyle().Width(width).Height(bodyHeight).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, header, filled, footer)
}
