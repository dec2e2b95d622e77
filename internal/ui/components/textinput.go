package components

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/gradetrend/internal/ui/theme"
)

// InputMode restricts which characters a TextInput accepts.
type InputMode int

const (
	ModeText InputMode = iota
	ModeInteger
	ModeDecimal
)

// TextInput wraps bubbles/textinput with a label and inline error.
type TextInput struct {
	Model textinput.Model
	Label string
	Mode  InputMode
	Err   string
}

// NewTextInput creates a blurred, labelled input.
func NewTextInput(label, placeholder string, mode InputMode, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	return TextInput{
		Model: ti,
		Label: label,
		Mode:  mode,
	}
}

// Focus focuses the input and returns the cursor blink command.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes focus.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Focused reports whether the input has focus.
func (t TextInput) Focused() bool {
	return t.Model.Focused()
}

// Update handles messages, dropping typed text the mode does not allow.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok && kmsg.Text != "" && !t.accepts(kmsg.Text) {
		return t, nil
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextInput) accepts(text string) bool {
	if t.Mode == ModeText {
		return true
	}
	hasPoint := strings.Contains(t.Model.Value(), ".")
	for _, c := range text {
		switch {
		case c >= '0' && c <= '9':
		case c == '.' && t.Mode == ModeDecimal && !hasPoint:
			hasPoint = true
		default:
			return false
		}
	}
	return true
}

// View renders the label, the input and any error.
func (t TextInput) View() string {
	labelStyle := theme.Label
	if t.Focused() {
		labelStyle = labelStyle.Foreground(theme.Primary).Bold(true)
	}
	view := labelStyle.Render(t.Label) + t.Model.View()
	if t.Err != "" {
		view += "  " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗ "+t.Err)
	}
	return view
}

// Value returns the trimmed input value.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// SetValue replaces the input value.
func (t *TextInput) SetValue(v string) {
	t.Model.SetValue(v)
}

// FloatValue parses the input as a number. Empty input is zero.
func (t TextInput) FloatValue() (float64, error) {
	v := t.Value()
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}
