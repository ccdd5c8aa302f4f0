package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/mfocus/internal/analytics"
	"github.com/emiliopalmerini/mfocus/internal/domain"
	"github.com/emiliopalmerini/mfocus/internal/pkg/tui/theme"
	"github.com/emiliopalmerini/mfocus/internal/util"
)

// Categories lists tracked time per category with proportional bars.
type Categories struct {
	service *analytics.Service
	period  Period
	shares  []domain.CategoryShare
	loading bool
	err     error
	styles  *theme.Styles
	width   int
	height  int
}

// NewCategories creates a new category breakdown screen
func NewCategories(service *analytics.Service, period Period) *Categories {
	return &Categories{
		service: service,
		period:  period,
		loading: true,
		styles:  theme.Default(),
	}
}

// SetPeriod changes the reported range. Call Init to reload.
func (c *Categories) SetPeriod(p Period) {
	c.period = p
	c.loading = true
	c.err = nil
}

// Init implements tea.Model
func (c *Categories) Init() tea.Cmd {
	r := c.period.Range
	return func() tea.Msg {
		shares, err := c.service.CategoryBreakdown(context.Background(), r)
		if err != nil {
			return categoriesErrorMsg{err}
		}
		return categoriesLoadedMsg{shares}
	}
}

// Update implements tea.Model
func (c *Categories) Update(msg tea.Msg) (*Categories, tea.Cmd) {
	switch msg := msg.(type) {
	case categoriesLoadedMsg:
		c.loading = false
		c.shares = msg.shares
	case categoriesErrorMsg:
		c.loading = false
		c.err = msg.err
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
	case tea.KeyMsg:
		if msg.String() == "r" {
			c.loading = true
			c.err = nil
			return c, c.Init()
		}
	}
	return c, nil
}

// View implements tea.Model
func (c *Categories) View() string {
	if c.loading {
		return c.styles.Muted.Render("Loading categories...")
	}
	if c.err != nil {
		return c.styles.Error.Render(fmt.Sprintf("Error: %v", c.err))
	}

	title := c.styles.Title.Render("Categories  " + c.styles.Muted.Render(c.period.Label()))
	if len(c.shares) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, c.styles.Muted.Render("No activity tracked in this period."))
	}

	barWidth := 30
	if c.width > 80 {
		barWidth = c.width - 60
	}

	rows := make([]string, 0, len(c.shares))
	for _, s := range c.shares {
		color := theme.CategoryColor(s.Category.Color)
		name := lipgloss.NewStyle().Foreground(color).Width(26).Render(s.Category.Name)
		mark := " "
		if s.Category.Distraction {
			mark = c.styles.Distracting.Render("!")
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			mark, " ", name,
			RenderBar(s.Percent/100, barWidth, color),
			lipgloss.NewStyle().Width(10).Align(lipgloss.Right).Render(util.FormatDuration(s.Total)),
			lipgloss.NewStyle().Width(8).Align(lipgloss.Right).Foreground(theme.Gray500).Render(util.FormatPercent(s.Percent)),
		))
	}

	help := c.styles.Help.Render("!: distraction  r: refresh  d/w/m: today/week/month  q: quit")
	return lipgloss.JoinVertical(lipgloss.Left, append(append([]string{title}, rows...), help)...)
}

type categoriesLoadedMsg struct {
	shares []domain.CategoryShare
}

type categoriesErrorMsg struct {
	err error
}
