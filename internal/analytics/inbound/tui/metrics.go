package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/mfocus/internal/pkg/tui/theme"
)

// StatCard is one headline figure on a screen.
type StatCard struct {
	Label  string
	Value  string
	Detail string
	// Color tints the value. Empty renders it white.
	Color lipgloss.Color
}

// View renders the card at the given width.
func (c StatCard) View(width int) string {
	styles := theme.Default()

	fg := c.Color
	if fg == "" {
		fg = theme.White
	}
	value := lipgloss.NewStyle().Bold(true).Foreground(fg).Render(c.Value)
	label := lipgloss.NewStyle().Foreground(theme.Gray500).Render(c.Label)
	detail := styles.Muted.Render(c.Detail)

	return styles.Card.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, label, value, detail))
}

// RenderStatCards lays cards out in rows of perRow.
func RenderStatCards(cards []StatCard, totalWidth, perRow int) string {
	if len(cards) == 0 {
		return ""
	}
	if totalWidth <= 0 {
		totalWidth = 80
	}
	if perRow <= 0 {
		perRow = 2
	}

	cardWidth := (totalWidth - 2*perRow) / perRow
	if cardWidth < 20 {
		cardWidth = 20
	}

	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := min(i+perRow, len(cards))
		row := make([]string, 0, end-i)
		for _, c := range cards[i:end] {
			row = append(row, c.View(cardWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
