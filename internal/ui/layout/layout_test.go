package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

var hints = []KeyHint{
	{Key: "Tab", Description: "Move"},
	{Key: "Ctrl+S", Description: "Analyze"},
	{Key: "Ctrl+C", Description: "Quit"},
}

func TestRenderFooterWide(t *testing.T) {
	out := RenderFooter(hints, 120)
	for _, want := range []string{"Tab", "Move", "Ctrl+S", "Analyze", "Quit"} {
		if !strings.Contains(out, want) {
			t.Errorf("footer missing %q", want)
		}
	}
}

func TestRenderFooterCompactDropsDescriptions(t *testing.T) {
	out := RenderFooter(hints, 80)
	if strings.Contains(out, "Analyze") {
		t.Error("compact footer should show keys only")
	}
	if !strings.Contains(out, "Ctrl+C") {
		t.Error("compact footer should keep the keys")
	}
}

func TestRenderFooterCutsOverflow(t *testing.T) {
	out := RenderFooter(hints, 20)
	if strings.Contains(out, "Ctrl+C") {
		t.Error("hints past the width should be cut")
	}
}

func TestSpread(t *testing.T) {
	line := spread("L", "mid", "R", 21)
	if lipgloss.Width(line) != 21 {
		t.Errorf("width = %d, want 21", lipgloss.Width(line))
	}
	if !strings.HasPrefix(line, "L ") || !strings.HasSuffix(line, " R") {
		t.Errorf("unexpected line %q", line)
	}
	if i := strings.Index(line, "mid"); i != 9 {
		t.Errorf("center at %d, want 9", i)
	}
}

func TestSizes(t *testing.T) {
	if !IsTooSmall(MinWidth-1, MinHeight) || IsTooSmall(MinWidth, MinHeight) {
		t.Error("IsTooSmall boundary")
	}
	if ContentHeight(4) != 0 || ContentHeight(30) != 24 {
		t.Error("ContentHeight")
	}
}
