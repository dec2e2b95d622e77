// Package history is the terminal screen listing saved analysis results.
package history

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/gradetrend/internal/improvement"
	"github.com/abhisek/gradetrend/internal/router"
	"github.com/abhisek/gradetrend/internal/screen"
	"github.com/abhisek/gradetrend/internal/store"
	"github.com/abhisek/gradetrend/internal/ui/layout"
	"github.com/abhisek/gradetrend/internal/ui/theme"
)

// Limit is how many results the screen loads.
const Limit = 50

type loadedMsg struct {
	records []*store.ResultRecord
	err     error
}

// HistoryScreen lists earlier results, newest first. Enter opens the
// reasons of the selected row; only one row is open at a time.
type HistoryScreen struct {
	repo    store.ResultRepo
	records []*store.ResultRecord
	cursor  int
	open    int // -1 when every row is closed
	offset  int // first visible row
	done    bool
	err     error
}

var (
	_ screen.Screen          = (*HistoryScreen)(nil)
	_ screen.KeyHintProvider = (*HistoryScreen)(nil)
)

func New(repo store.ResultRepo) *HistoryScreen {
	return &HistoryScreen{repo: repo, open: -1}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.repo
	return func() tea.Msg {
		recs, err := repo.List(context.Background(), store.QueryOpts{Limit: Limit})
		return loadedMsg{records: recs, err: err}
	}
}

func (s *HistoryScreen) Title() string { return "History" }

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Reasons"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.done = true
		s.records, s.err = msg.records, msg.err

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			s.cursor = max(s.cursor-1, 0)
		case "down", "j":
			s.cursor = max(min(s.cursor+1, len(s.records)-1), 0)
		case "enter":
			if s.open == s.cursor {
				s.open = -1
			} else {
				s.open = s.cursor
			}
		}
	}
	return s, nil
}

func status(width int, style lipgloss.Style, text string) string {
	return style.Width(width).Align(lipgloss.Center).Render("\n\n" + text)
}

func (s *HistoryScreen) View(width, height int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	switch {
	case s.err != nil:
		return status(width, lipgloss.NewStyle().Foreground(theme.Error), "Error: "+s.err.Error())
	case !s.done:
		return status(width, dim, "Loading history...")
	case len(s.records) == 0:
		return status(width, dim.Italic(true), "No results yet. Analyze a student first.")
	}

	s.scrollTo(height - 2)
	var lines []string
	for i := s.offset; i < len(s.records) && i < s.offset+max(height-2, 1); i++ {
		lines = append(lines, s.row(i))
		if i == s.open {
			for _, reason := range s.records[i].Reasons {
				lines = append(lines, dim.Italic(true).Render("      • "+reason))
			}
		}
	}
	if s.offset > 0 || s.offset+height-2 < len(s.records) {
		lines = append(lines, dim.Render(fmt.Sprintf("  %d of %d", s.cursor+1, len(s.records))))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, "\n"+body)
}

// scrollTo keeps the cursor inside a window of rows lines.
func (s *HistoryScreen) scrollTo(rows int) {
	rows = max(rows, 1)
	switch {
	case s.cursor < s.offset:
		s.offset = s.cursor
	case s.cursor >= s.offset+rows:
		s.offset = s.cursor - rows + 1
	}
}

func (s *HistoryScreen) row(i int) string {
	r := s.records[i]
	marker, style := "  ", lipgloss.NewStyle().Foreground(theme.Text)
	if i == s.cursor {
		marker, style = "> ", theme.Selected
	}
	text := fmt.Sprintf("%s%s  %-8s  %-16s  %-6s %8.2f  ", marker,
		r.CreatedAt.Local().Format("Jan 02 15:04"), r.StudentID, clip(r.Name, 16), r.Policy, r.Value)
	cat, _ := improvement.ParseCategory(r.Category)
	return style.Render(text) + theme.Badge(cat.Slug(), r.Category)
}

// clip shortens s to n runes.
func clip(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
