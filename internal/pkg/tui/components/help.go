package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/mfocus/internal/pkg/tui/theme"
)

// KeyBinding is one key hint in the help bar.
type KeyBinding struct {
	Key  string
	Desc string
}

// HelpBar renders key hints on as few lines as fit the width.
type HelpBar struct {
	Bindings []KeyBinding
	Width    int
	styles   *theme.Styles
}

// NewHelpBar creates a help bar without a width limit.
func NewHelpBar(bindings ...KeyBinding) HelpBar {
	return HelpBar{
		Bindings: bindings,
		styles:   theme.Default(),
	}
}

// SetBindings replaces the key hints.
func (h *HelpBar) SetBindings(bindings ...KeyBinding) {
	h.Bindings = bindings
}

// View renders the hints. A Width of zero keeps them on one line.
func (h HelpBar) View() string {
	const sep = "  "

	var lines []string
	var line strings.Builder
	lineWidth := 0
	for _, kb := range h.Bindings {
		hint := h.styles.HelpKey.Render(kb.Key) + h.styles.Muted.Render(" "+kb.Desc)
		w := lipgloss.Width(hint)
		if lineWidth > 0 && h.Width > 0 && lineWidth+len(sep)+w > h.Width {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			line.WriteString(sep)
			lineWidth += len(sep)
		}
		line.WriteString(hint)
		lineWidth += w
	}
	if lineWidth > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}
