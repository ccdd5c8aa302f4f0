package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/mfocus/internal/pkg/tui/theme"
)

// NavItem is one tab in the navigation bar.
type NavItem struct {
	Key    string
	Label  string
	Active bool
}

// NavBar renders a navigation bar
type NavBar struct {
	Items  []NavItem
	styles *theme.Styles
}

// NewNavBar creates a new navigation bar
func NewNavBar(items []NavItem) *NavBar {
	return &NavBar{
		Items:  items,
		styles: theme.Default(),
	}
}

// View renders the tabs. The active tab drops its key hint.
func (n NavBar) View() string {
	items := make([]string, 0, len(n.Items))
	for _, item := range n.Items {
		if item.Active {
			items = append(items, n.styles.Active.Render(item.Label))
			continue
		}
		key := lipgloss.NewStyle().Foreground(theme.Gray600).Render(item.Key)
		items = append(items, key+" "+n.styles.Inactive.Render(item.Label))
	}

	sep := lipgloss.NewStyle().Foreground(theme.Gray700).Render("  ·  ")
	return strings.Join(items, sep)
}
