package theme

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Styles contains all shared TUI styles
type Styles struct {
	// Text styles
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Muted    lipgloss.Style

	// Interactive elements
	Cursor     lipgloss.Style
	Selected   lipgloss.Style
	Unselected lipgloss.Style
	Active     lipgloss.Style
	Inactive   lipgloss.Style

	// Help and hints
	Help    lipgloss.Style
	HelpKey lipgloss.Style

	// Layout
	Card lipgloss.Style

	// Focus and distraction time
	Focus       lipgloss.Style
	Distracting lipgloss.Style

	// Status indicators
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

var (
	defaultStyles *Styles
	once          sync.Once
)

// Default returns the singleton default Styles instance
func Default() *Styles {
	once.Do(func() {
		defaultStyles = newStyles()
	})
	return defaultStyles
}

func newStyles() *Styles {
	return &Styles{
		// Text styles
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(White).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true).
			MarginBottom(1),

		Muted: lipgloss.NewStyle().
			Foreground(Gray500),

		// Interactive elements
		Cursor: lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Foreground(Black).
			Background(White).
			Bold(true),

		Unselected: lipgloss.NewStyle().
			Foreground(Gray400),

		Active: lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true),

		Inactive: lipgloss.NewStyle().
			Foreground(Gray500),

		// Help and hints
		Help: lipgloss.NewStyle().
			Foreground(Gray500).
			MarginTop(1),

		HelpKey: lipgloss.NewStyle().
			Foreground(Gray400).
			Bold(true),

		// Layout
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Gray700).
			Padding(1, 2),

		Focus: lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true),

		Distracting: lipgloss.NewStyle().
			Foreground(Distraction).
			Bold(true),

		// Status indicators
		Success: lipgloss.NewStyle().
			Foreground(Success),

		Warning: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Error),
	}
}
