package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var blocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline draws one block per value, scaled from zero to the
// largest value. Zero renders as a space so idle windows stand out.
func RenderSparkline(values []time.Duration) string {
	if len(values) == 0 {
		return ""
	}

	var peak time.Duration
	for _, v := range values {
		peak = max(peak, v)
	}

	var b strings.Builder
	for _, v := range values {
		if v <= 0 || peak <= 0 {
			b.WriteRune(' ')
			continue
		}
		idx := int(float64(v) / float64(peak) * float64(len(blocks)-1))
		b.WriteRune(blocks[min(idx, len(blocks)-1)])
	}
	return b.String()
}

// RenderBar draws a horizontal bar filled to fraction of width.
func RenderBar(fraction float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		return ""
	}
	fraction = min(max(fraction, 0), 1)
	filled := int(fraction*float64(width) + 0.5)

	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	rest := lipgloss.NewStyle().Foreground(lipgloss.Color("#404040")).Render(strings.Repeat("░", width-filled))
	return bar + rest
}
