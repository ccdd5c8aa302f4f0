package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Neutral palette; category colors come from the rule file.
var (
	White   = lipgloss.Color("#FFFFFF")
	Gray400 = lipgloss.Color("#A3A3A3")
	Gray500 = lipgloss.Color("#737373")
	Gray600 = lipgloss.Color("#525252")
	Gray700 = lipgloss.Color("#404040")
	Black   = lipgloss.Color("#111827")

	// Accent marks focus, distraction marks time lost.
	Accent      = lipgloss.Color("#2563EB")
	Distraction = lipgloss.Color("#F97316")

	Success = lipgloss.Color("#22C55E")
	Warning = lipgloss.Color("#F59E0B")
	Error   = lipgloss.Color("#EF4444")
)

// Heat shades from empty to saturated.
var Heat = []lipgloss.Color{
	lipgloss.Color("#1F2937"),
	lipgloss.Color("#1E3A8A"),
	lipgloss.Color("#1D4ED8"),
	lipgloss.Color("#3B82F6"),
	lipgloss.Color("#93C5FD"),
}

// CategoryColor returns the display color for a category hex code,
// falling back to a neutral gray.
func CategoryColor(hex string) lipgloss.Color {
	hex = strings.TrimSpace(hex)
	if len(hex) != 7 || hex[0] != '#' {
		return Gray500
	}
	return lipgloss.Color(hex)
}

// HeatShade maps an intensity in [0,1] to one of the Heat shades.
// The cut points are display choices.
func HeatShade(intensity float64) lipgloss.Color {
	switch {
	case intensity <= 0:
		return Heat[0]
	case intensity < 0.2:
		return Heat[1]
	case intensity < 0.4:
		return Heat[2]
	case intensity <= 0.6:
		return Heat[3]
	default:
		return Heat[4]
	}
}
