package components

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/gradetrend/internal/ui/theme"
)

// Button fires OnPress when enter is pressed while it has focus. A busy
// button swallows presses and shows BusyLabel instead.
type Button struct {
	Label     string
	BusyLabel string
	Active    bool
	Busy      bool
	OnPress   func() tea.Cmd
}

func NewButton(label string, active bool, onPress func() tea.Cmd) Button {
	return Button{Label: label, BusyLabel: label + "...", Active: active, OnPress: onPress}
}

func (b Button) Update(msg tea.Msg) (Button, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || !b.Active || b.Busy || b.OnPress == nil {
		return b, nil
	}
	if kmsg.String() != "enter" {
		return b, nil
	}
	return b, b.OnPress()
}

func (b Button) View() string {
	switch {
	case b.Busy:
		return theme.ButtonInactive.Render(b.BusyLabel)
	case b.Active:
		return theme.ButtonActive.Render("▸ " + b.Label)
	default:
		return theme.ButtonInactive.Render(b.Label)
	}
}
