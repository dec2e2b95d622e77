package components

import (
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/gradetrend/internal/ui/theme"
)

type MenuItem struct {
	Label    string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list of actions. Arrow keys (or j/k) move between
// enabled items, enter runs the selected one, and digits 1-9 run the item
// at that position directly.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.step(1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// step moves the selection to the next enabled item in direction dir and
// leaves it alone when there is none.
func (m *Menu) step(dir int) {
	for i := m.Selected + dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

func (m Menu) run(i int) tea.Cmd {
	if i < 0 || i >= len(m.Items) {
		return nil
	}
	item := m.Items[i]
	if item.Disabled || item.Action == nil {
		return nil
	}
	return item.Action()
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		m.step(-1)
	case "down", "j":
		m.step(1)
	case "enter":
		return m, m.run(m.Selected)
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= 9 {
			if i := n - 1; i < len(m.Items) && !m.Items[i].Disabled {
				m.Selected = i
				return m, m.run(i)
			}
		}
	}
	return m, nil
}

func (m Menu) View() string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	var b strings.Builder
	for i, item := range m.Items {
		label := strconv.Itoa(i+1) + ". " + item.Label
		switch {
		case item.Disabled:
			b.WriteString(dim.Render("    " + label))
		case i == m.Selected:
			b.WriteString(theme.Selected.Render("  ▸ " + label))
		default:
			b.WriteString(theme.Unselected.Render("    " + label))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
