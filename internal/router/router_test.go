package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/gradetrend/internal/screen"
)

type pingMsg struct{}

// recorder remembers what the router did to it.
type recorder struct {
	name  string
	inits int
	msgs  int
}

func (s *recorder) Init() tea.Cmd { s.inits++; return nil }

func (s *recorder) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.msgs++
	if _, ok := msg.(pingMsg); ok {
		return s, func() tea.Msg { return s.name }
	}
	return s, nil
}

func (s *recorder) View(w, h int) string { return s.name }
func (s *recorder) Title() string        { return s.name }

func TestNavigation(t *testing.T) {
	form := &recorder{name: "form"}
	result := &recorder{name: "result"}
	fresh := &recorder{name: "fresh form"}

	tests := []struct {
		name      string
		msg       tea.Msg
		wantTop   string
		wantDepth int
	}{
		{"push result", PushScreenMsg{Screen: result}, "result", 2},
		{"pop back to form", PopScreenMsg{}, "form", 1},
		{"pop at root is a no-op", PopScreenMsg{}, "form", 1},
		{"push result again", PushScreenMsg{Screen: result}, "result", 2},
		{"replace result", ReplaceScreenMsg{Screen: fresh}, "fresh form", 2},
		{"reset", ResetScreenMsg{Screen: &recorder{name: "new form"}}, "new form", 1},
	}

	r := New(form)
	for _, tt := range tests {
		r.Update(tt.msg)
		if got := r.Active().Title(); got != tt.wantTop {
			t.Errorf("%s: expected %q on top, got %q", tt.name, tt.wantTop, got)
		}
		if got := r.Depth(); got != tt.wantDepth {
			t.Errorf("%s: expected depth %d, got %d", tt.name, tt.wantDepth, got)
		}
	}

	if result.inits != 2 {
		t.Errorf("expected result Init once per push, got %d", result.inits)
	}
	if fresh.inits != 1 {
		t.Errorf("expected Init on the replacement, got %d", fresh.inits)
	}
	if form.msgs != 0 {
		t.Errorf("navigation messages must not reach screens, form saw %d", form.msgs)
	}
}

func TestNewAnalysisFlow(t *testing.T) {
	// Result screen's "New analysis" starts over from a blank form.
	r := New(&recorder{name: "form"})
	r.Push(&recorder{name: "history"})
	r.Push(&recorder{name: "result"})
	fresh := &recorder{name: "fresh form"}
	r.Update(ResetScreenMsg{Screen: fresh})

	if r.Depth() != 1 || r.Active().Title() != "fresh form" {
		t.Errorf("expected only the fresh form, got %q at depth %d", r.Active().Title(), r.Depth())
	}
	if fresh.inits != 1 {
		t.Errorf("expected Init on the fresh form, got %d", fresh.inits)
	}
}

func TestUpdateForwardsToActive(t *testing.T) {
	form := &recorder{name: "form"}
	result := &recorder{name: "result"}
	r := New(form)
	r.Push(result)

	cmd := r.Update(pingMsg{})
	if cmd == nil {
		t.Fatal("expected the active screen's command")
	}
	if got := cmd(); got != "result" {
		t.Errorf("expected result to answer, got %v", got)
	}
	if form.msgs != 0 {
		t.Error("screens below the top should not see messages")
	}
}

func TestView(t *testing.T) {
	r := New(&recorder{name: "form"})
	if got := r.View(80, 24); got != "form" {
		t.Errorf("expected form view, got %q", got)
	}
}

func TestEmptyStack(t *testing.T) {
	r := &Router{}
	if r.Active() != nil || r.View(80, 24) != "" || r.Update(pingMsg{}) != nil {
		t.Error("empty router should render and do nothing")
	}
	r.Replace(&recorder{name: "form"})
	if r.Depth() != 1 {
		t.Errorf("replace on an empty stack should add the screen, got depth %d", r.Depth())
	}
}
