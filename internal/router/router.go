// Package router keeps the stack of terminal screens. Screens navigate by
// returning one of the *ScreenMsg messages as a command; the router
// consumes them before anything reaches the active screen.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/gradetrend/internal/screen"
)

// PushScreenMsg opens Screen on top of the current one.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg closes the top screen. The root screen is never popped.
type PopScreenMsg struct{}

// ReplaceScreenMsg swaps the top screen for Screen.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// ResetScreenMsg drops every screen and makes Screen the only one.
type ResetScreenMsg struct {
	Screen screen.Screen
}

type Router struct {
	stack []screen.Screen
}

func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

func (r *Router) Pop() tea.Cmd {
	if n := len(r.stack); n > 1 {
		r.stack[n-1] = nil
		r.stack = r.stack[:n-1]
	}
	return nil
}

func (r *Router) Replace(s screen.Screen) tea.Cmd {
	if n := len(r.stack); n > 0 {
		r.stack[n-1] = s
		return s.Init()
	}
	return r.Push(s)
}

func (r *Router) Reset(s screen.Screen) tea.Cmd {
	clear(r.stack)
	r.stack = append(r.stack[:0], s)
	return s.Init()
}

// Active is the top of the stack, or nil when it is empty.
func (r *Router) Active() screen.Screen {
	if n := len(r.stack); n > 0 {
		return r.stack[n-1]
	}
	return nil
}

func (r *Router) Depth() int { return len(r.stack) }

func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch nav := msg.(type) {
	case PushScreenMsg:
		return r.Push(nav.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(nav.Screen)
	case ResetScreenMsg:
		return r.Reset(nav.Screen)
	}

	top := r.Active()
	if top == nil {
		return nil
	}
	next, cmd := top.Update(msg)
	r.stack[len(r.stack)-1] = next
	return cmd
}

func (r *Router) View(width, height int) string {
	if top := r.Active(); top != nil {
		return top.View(width, height)
	}
	return ""
}
