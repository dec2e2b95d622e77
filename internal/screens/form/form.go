package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/gradetrend/internal/improvement"
	"github.com/abhisek/gradetrend/internal/plot"
	"github.com/abhisek/gradetrend/internal/router"
	"github.com/abhisek/gradetrend/internal/screen"
	"github.com/abhisek/gradetrend/internal/screens/history"
	"github.com/abhisek/gradetrend/internal/screens/result"
	"github.com/abhisek/gradetrend/internal/store"
	"github.com/abhisek/gradetrend/internal/ui/components"
	"github.com/abhisek/gradetrend/internal/ui/layout"
	"github.com/abhisek/gradetrend/internal/ui/theme"
)

// AnalyzeFunc turns a submission into a result.
type AnalyzeFunc func(ctx context.Context, sub improvement.Submission) (*improvement.Result, error)

// Config wires the form to the analysis.
type Config struct {
	Ctx       context.Context
	Analyze   AnalyzeFunc
	ChartPath string           // empty skips writing the chart
	History   store.ResultRepo // nil hides the history screen
}

// Field indexes. The submit button follows the last input.
const (
	fieldName = iota
	fieldRoll
	fieldSemester
	fieldAttendance
	fieldHomework
	fieldStudy
	fieldWeek1
	fieldCount = fieldWeek1 + improvement.FormWeeks
	focusButton = fieldCount
)

type bounds struct{ lo, hi float64 }

var fieldBounds = map[int]bounds{
	fieldSemester:   {0, 100},
	fieldAttendance: {0, 100},
	fieldHomework:   {0, 100},
	fieldStudy:      {0, 12},
}

func boundsOf(i int) bounds {
	if b, ok := fieldBounds[i]; ok {
		return b
	}
	return bounds{0, 100}
}

type analyzedMsg struct {
	res   *improvement.Result
	chart result.ChartStatus
	err   error
}

// FormScreen collects one student's details and weekly scores.
type FormScreen struct {
	cfg    Config
	inputs []components.TextInput
	button components.Button
	focus  int
	err    string
	busy   bool
}

var _ screen.Screen = (*FormScreen)(nil)

// New creates an empty form with the name field focused.
func New(cfg Config) *FormScreen {
	if cfg.Ctx == nil {
		cfg.Ctx = context.Background()
	}
	f := &FormScreen{cfg: cfg}
	f.inputs = make([]components.TextInput, fieldCount)
	f.inputs[fieldName] = components.NewTextInput("Name", "Student name", components.ModeText, 64)
	f.inputs[fieldRoll] = components.NewTextInput("Roll number", "e.g. 101", components.ModeText, 16)
	f.inputs[fieldSemester] = components.NewTextInput("Semester %", "0-100", components.ModeDecimal, 6)
	f.inputs[fieldAttendance] = components.NewTextInput("Attendance %", "0-100", components.ModeDecimal, 6)
	f.inputs[fieldHomework] = components.NewTextInput("Homework %", "0-100", components.ModeDecimal, 6)
	f.inputs[fieldStudy] = components.NewTextInput("Study hours", "0-12 per day", components.ModeDecimal, 5)
	for w := 0; w < improvement.FormWeeks; w++ {
		f.inputs[fieldWeek1+w] = components.NewTextInput(fmt.Sprintf("Week %d", w+1), "0-100", components.ModeInteger, 3)
	}
	f.button = components.NewButton("Analyze", false, f.submit)
	f.button.BusyLabel = "Analyzing..."
	return f
}

func (f *FormScreen) Init() tea.Cmd {
	return f.inputs[f.focus].Focus()
}

func (f *FormScreen) Title() string { return "Student Improvement" }

func (f *FormScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Tab/↑↓", Description: "Move"},
		{Key: "Enter", Description: "Next"},
		{Key: "Ctrl+S", Description: "Analyze"},
	}
	if f.cfg.History != nil {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+R", Description: "History"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

// Value returns the current text of input i.
func (f *FormScreen) Value(i int) string {
	return f.inputs[i].Value()
}

func (f *FormScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case analyzedMsg:
		return f, f.handleAnalyzed(msg)

	case tea.KeyPressMsg:
		if f.busy {
			return f, nil
		}
		switch msg.String() {
		case "tab", "down":
			return f, f.moveFocus(1)
		case "shift+tab", "up":
			return f, f.moveFocus(-1)
		case "ctrl+s":
			return f, f.submit()
		case "ctrl+r":
			if f.cfg.History == nil {
				return f, nil
			}
			next := history.New(f.cfg.History)
			return f, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		case "enter":
			if f.focus == focusButton {
				var cmd tea.Cmd
				f.button, cmd = f.button.Update(msg)
				return f, cmd
			}
			if f.focus == fieldCount-1 {
				return f, f.submit()
			}
			return f, f.moveFocus(1)
		}
	}

	if f.focus < fieldCount {
		var cmd tea.Cmd
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
		return f, cmd
	}
	return f, nil
}

func (f *FormScreen) moveFocus(delta int) tea.Cmd {
	if f.focus < fieldCount {
		f.inputs[f.focus].Blur()
	}
	f.focus = (f.focus + delta + fieldCount + 1) % (fieldCount + 1)
	f.button.Active = f.focus == focusButton
	if f.focus < fieldCount {
		return f.inputs[f.focus].Focus()
	}
	return nil
}

// collect reads the inputs into a submission, marking out-of-range or
// unparsable numbers on their fields.
func (f *FormScreen) collect() (improvement.Submission, bool) {
	for i := range f.inputs {
		f.inputs[i].Err = ""
	}

	num := func(i int) float64 {
		v, err := f.inputs[i].FloatValue()
		b := boundsOf(i)
		if err != nil || v < b.lo || v > b.hi {
			f.inputs[i].Err = fmt.Sprintf("must be between %g and %g", b.lo, b.hi)
			return 0
		}
		return v
	}

	sub := improvement.Submission{
		Name:          f.inputs[fieldName].Value(),
		RollNo:        f.inputs[fieldRoll].Value(),
		SemesterPct:   num(fieldSemester),
		AttendancePct: num(fieldAttendance),
		HomeworkPct:   num(fieldHomework),
		StudyHours:    num(fieldStudy),
	}
	for w := 0; w < improvement.FormWeeks; w++ {
		sub.Scores[w] = num(fieldWeek1 + w)
	}

	ok := true
	for i := range f.inputs {
		if f.inputs[i].Err != "" {
			ok = false
		}
	}
	return sub, ok
}

func (f *FormScreen) submit() tea.Cmd {
	sub, ok := f.collect()
	if err := sub.Validate(); err != nil {
		f.markMissing(err)
		return nil
	}
	if !ok {
		f.err = "Fix the highlighted fields"
		return nil
	}

	f.err = ""
	f.busy = true
	cfg := f.cfg
	return func() tea.Msg {
		res, err := cfg.Analyze(cfg.Ctx, sub)
		if err != nil {
			return analyzedMsg{err: err}
		}
		msg := analyzedMsg{res: res}
		if cfg.ChartPath != "" {
			msg.chart = result.ChartStatus{
				Path: cfg.ChartPath,
				Err:  plot.SaveFile(cfg.ChartPath, plot.FromResult(res)),
			}
		}
		return msg
	}
}

func (f *FormScreen) markMissing(err error) {
	var missing *improvement.ErrMissingField
	if !errors.As(err, &missing) {
		f.err = err.Error()
		return
	}
	f.err = missing.Error()
	switch missing.Field {
	case "Name":
		f.inputs[fieldName].Err = "required"
	case "Roll number":
		f.inputs[fieldRoll].Err = "required"
	}
}

func (f *FormScreen) handleAnalyzed(msg analyzedMsg) tea.Cmd {
	f.busy = false
	if msg.err != nil {
		var missing *improvement.ErrMissingField
		if errors.As(msg.err, &missing) {
			f.markMissing(msg.err)
			return nil
		}
		f.err = "Analysis failed: " + msg.err.Error()
		return nil
	}

	cfg := f.cfg
	next := result.New(msg.res, msg.chart, func() screen.Screen { return New(cfg) })
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func (f *FormScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render("Student details") + "\n\n")
	for i := fieldName; i < fieldWeek1; i++ {
		b.WriteString(f.inputs[i].View() + "\n")
	}

	b.WriteString("\n" + theme.Title.Render("Weekly test scores") + "\n\n")
	weeks := make([]string, 0, improvement.FormWeeks)
	for i := fieldWeek1; i < fieldCount; i++ {
		weeks = append(weeks, f.inputs[i].View())
	}
	if layout.IsCompactWidth(width) {
		b.WriteString(strings.Join(weeks, "\n") + "\n")
	} else {
		left := lipgloss.JoinVertical(lipgloss.Left, weeks[:3]...)
		right := lipgloss.JoinVertical(lipgloss.Left, weeks[3:]...)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right) + "\n")
	}

	btn := f.button
	btn.Busy = f.busy
	b.WriteString("\n" + btn.View() + "\n")
	if f.err != "" && !f.busy {
		b.WriteString("\n" + theme.Bad.Render(f.err))
	}

	card := theme.Card.Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
