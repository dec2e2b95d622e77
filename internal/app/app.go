// Package app runs the terminal UI: one bubbletea program drawing a
// header and footer around whatever screen is on top of the router.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/gradetrend/internal/router"
	"github.com/abhisek/gradetrend/internal/screen"
	"github.com/abhisek/gradetrend/internal/ui/layout"
)

var (
	rootHints = []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
	nestedHints = []layout.KeyHint{
		{Key: "Esc", Description: "Back"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
)

// AppModel is the root bubbletea model.
type AppModel struct {
	router        *router.Router
	status        string
	width, height int
}

func newAppModel(root screen.Screen, status string) AppModel {
	return AppModel{router: router.New(root), status: status}
}

func (m AppModel) Init() tea.Cmd {
	if top := m.router.Active(); top != nil {
		return top.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = size.Width, size.Height
		return m, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		if cmd, handled := m.globalKey(key.String()); handled {
			return m, cmd
		}
	}
	return m, m.router.Update(msg)
}

// globalKey handles the keys every screen shares. Esc on the root screen
// is swallowed so it never quits the form by accident.
func (m AppModel) globalKey(key string) (tea.Cmd, bool) {
	switch key {
	case "ctrl+c":
		return tea.Quit, true
	case "esc":
		if m.router.Depth() > 1 {
			return func() tea.Msg { return router.PopScreenMsg{} }, true
		}
		return nil, true
	}
	return nil, false
}

func (m AppModel) footerHints() []layout.KeyHint {
	if p, ok := m.router.Active().(screen.KeyHintProvider); ok {
		return p.KeyHints()
	}
	if m.router.Depth() > 1 {
		return nestedHints
	}
	return rootHints
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m AppModel) render() string {
	switch {
	case m.width == 0 || m.height == 0:
		return ""
	case layout.IsTooSmall(m.width, m.height):
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	var title string
	if top := m.router.Active(); top != nil {
		title = top.Title()
	}
	return layout.RenderFrame(
		layout.RenderHeader(title, m.status, m.width),
		m.router.View(m.width, layout.ContentHeight(m.height)),
		layout.RenderFooter(m.footerHints(), m.width),
		m.width, m.height,
	)
}

// Run shows root until the user quits or ctx is cancelled. Cancellation
// is a normal exit.
func Run(ctx context.Context, root screen.Screen, status string, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(newAppModel(root, status), opts...).Run()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
