package result

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/gradetrend/internal/improvement"
	"github.com/abhisek/gradetrend/internal/router"
	"github.com/abhisek/gradetrend/internal/screen"
	"github.com/abhisek/gradetrend/internal/ui/components"
	"github.com/abhisek/gradetrend/internal/ui/layout"
	"github.com/abhisek/gradetrend/internal/ui/theme"
)

// ChartStatus reports where the chart went, if anywhere.
type ChartStatus struct {
	Path string
	Err  error
}

// ResultScreen shows one analysis outcome.
type ResultScreen struct {
	res     *improvement.Result
	chart   ChartStatus
	newForm func() screen.Screen
	menu    components.Menu
}

var _ screen.Screen = (*ResultScreen)(nil)

// New creates a result screen. newForm builds a blank form for the
// "New analysis" action.
func New(res *improvement.Result, chart ChartStatus, newForm func() screen.Screen) *ResultScreen {
	r := &ResultScreen{res: res, chart: chart, newForm: newForm}
	r.menu = components.NewMenu([]components.MenuItem{
		{Label: "Back to form", Action: back},
		{Label: "New analysis", Action: r.restart, Disabled: newForm == nil},
		{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	})
	return r
}

func back() tea.Cmd {
	return func() tea.Msg { return router.PopScreenMsg{} }
}

func (r *ResultScreen) restart() tea.Cmd {
	fresh := r.newForm()
	return func() tea.Msg { return router.ResetScreenMsg{Screen: fresh} }
}

func (r *ResultScreen) Init() tea.Cmd { return nil }

func (r *ResultScreen) Title() string { return "Result" }

func (r *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Back"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (r *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	r.menu, cmd = r.menu.Update(msg)
	return r, cmd
}

func (r *ResultScreen) View(width, height int) string {
	res := r.res
	var b strings.Builder

	b.WriteString(theme.Badge(res.Category.Slug(), res.Category.DisplayName()))
	b.WriteString("\n\n")

	rows := []struct{ label, value string }{
		{"Name", res.Name},
		{"Roll No", res.StudentID},
		{"Average score", fmt.Sprintf("%.2f", res.AverageScore)},
		{"Growth", fmt.Sprintf("%+g", res.Value)},
		{"Analyzed at", res.CreatedAt.Format("2006-01-02 15:04:05")},
	}
	for _, row := range rows {
		b.WriteString(theme.Label.Render(row.label) + theme.Body.Render(row.value) + "\n")
	}

	b.WriteString("\n" + theme.Selected.Render("Reasons") + "\n")
	for _, reason := range res.Reasons {
		b.WriteString("  • " + theme.Body.Render(reason) + "\n")
	}

	// Bars need the room a short terminal doesn't have.
	if !layout.IsCompactHeight(height) {
		b.WriteString("\n" + theme.Selected.Render("Weekly scores") + "\n")
		barWidth := min(width-8, 60)
		for _, o := range res.Observations {
			bar := components.NewScoreBar(fmt.Sprintf("Week %d", o.Week), o.Score, 100, barWidth)
			b.WriteString(bar.View() + "\n")
		}
	}

	b.WriteString("\n" + r.chartLine() + "\n\n")
	b.WriteString(r.menu.View())

	card := theme.Card.Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (r *ResultScreen) chartLine() string {
	switch {
	case r.chart.Err != nil:
		return theme.Bad.Render("Chart not saved: " + r.chart.Err.Error())
	case r.chart.Path != "":
		return theme.Hint.Render("Chart saved to " + r.chart.Path)
	default:
		return theme.Hint.Render("Chart output disabled")
	}
}
