package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestHelpBar_SingleLine(t *testing.T) {
	h := NewHelpBar(KeyBinding{"q", "quit"}, KeyBinding{"r", "refresh"})
	got := h.View()
	if strings.Contains(got, "\n") {
		t.Fatalf("expected one line, got %q", got)
	}
	for _, want := range []string{"q", "quit", "refresh"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestHelpBar_Wraps(t *testing.T) {
	h := NewHelpBar(
		KeyBinding{"1-5", "screens"},
		KeyBinding{"d/w/m", "period"},
		KeyBinding{"r", "refresh"},
		KeyBinding{"q", "quit"},
	)
	h.Width = 20

	lines := strings.Split(h.View(), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected wrapping at width 20, got %q", lines)
	}
	for _, l := range lines {
		if w := lipgloss.Width(l); w > 20 {
			t.Errorf("line %q is %d wide", l, w)
		}
	}
}

func TestHelpBar_Empty(t *testing.T) {
	if got := NewHelpBar().View(); got != "" {
		t.Errorf("View() = %q, want empty", got)
	}
}
