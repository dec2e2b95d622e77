// Package screen holds the contract shared by every view on the router
// stack.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/gradetrend/internal/ui/layout"
)

// Screen is one page of the terminal UI. The app frame draws the header
// and footer; a screen only fills the body it is given.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	// View draws the body into a width x height area.
	View(width, height int) string
	// Title is shown in the header while the screen is on top.
	Title() string
}

// KeyHintProvider lets a screen replace the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}
