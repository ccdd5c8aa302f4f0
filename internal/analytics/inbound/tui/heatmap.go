package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/mfocus/internal/analytics"
	"github.com/emiliopalmerini/mfocus/internal/domain"
	"github.com/emiliopalmerini/mfocus/internal/pkg/tui/theme"
)

const heatmapDays = 7

// Heatmap shows hour-of-day intensity over the last week, optionally for a
// single category.
type Heatmap struct {
	service    *analytics.Service
	last       time.Time
	categories []string
	selected   int
	days       []domain.HeatmapDay
	loading    bool
	err        error
	styles     *theme.Styles
	width      int
	height     int
}

// NewHeatmap creates a heatmap screen ending on the day containing last.
func NewHeatmap(service *analytics.Service, last time.Time) *Heatmap {
	names := []string{""}
	for _, c := range service.Categories() {
		if c.Name != domain.CategoryIdle {
			names = append(names, c.Name)
		}
	}
	return &Heatmap{
		service:    service,
		last:       last,
		categories: names,
		loading:    true,
		styles:     theme.Default(),
	}
}

func (h *Heatmap) category() string {
	return h.categories[h.selected]
}

// Init implements tea.Model
func (h *Heatmap) Init() tea.Cmd {
	last, category := h.last, h.category()
	return func() tea.Msg {
		days, err := h.service.Heatmap(context.Background(), last, heatmapDays, category)
		if err != nil {
			return heatmapErrorMsg{err}
		}
		return heatmapLoadedMsg{days}
	}
}

// Update implements tea.Model
func (h *Heatmap) Update(msg tea.Msg) (*Heatmap, tea.Cmd) {
	switch msg := msg.(type) {
	case heatmapLoadedMsg:
		h.loading = false
		h.days = msg.days
	case heatmapErrorMsg:
		h.loading = false
		h.err = msg.err
	case tea.WindowSizeMsg:
		h.width = msg.Width
		h.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "c", "tab":
			h.selected = (h.selected + 1) % len(h.categories)
			h.loading = true
			return h, h.Init()
		case "r":
			h.loading = true
			h.err = nil
			return h, h.Init()
		}
	}
	return h, nil
}

// View implements tea.Model
func (h *Heatmap) View() string {
	if h.loading {
		return h.styles.Muted.Render("Loading heatmap...")
	}
	if h.err != nil {
		return h.styles.Error.Render(fmt.Sprintf("Error: %v", h.err))
	}

	scope := "all activity"
	if c := h.category(); c != "" {
		scope = c
	}
	title := h.styles.Title.Render("Heatmap  " + h.styles.Muted.Render(scope))

	rows := []string{h.styles.Muted.Render(strings.Repeat(" ", 5) + "0     6     12    18    ")}
	for _, day := range h.days {
		rows = append(rows, h.styles.Muted.Render(day.Day.Format("Mon")+"  ")+RenderHeatRow(day.Cells))
	}

	var legend strings.Builder
	legend.WriteString("less ")
	for _, c := range theme.Heat {
		legend.WriteString(lipgloss.NewStyle().Foreground(c).Render("■"))
	}
	legend.WriteString(" more")

	help := h.styles.Help.Render("c: next category  r: refresh  q: quit")
	return lipgloss.JoinVertical(lipgloss.Left,
		append(append([]string{title}, rows...), "", h.styles.Muted.Render(legend.String()), help)...)
}

// RenderHeatRow draws one cell per hour, shaded by intensity.
func RenderHeatRow(cells []domain.HeatmapCell) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.HeatShade(c.Intensity)).Render("■"))
	}
	return b.String()
}

type heatmapLoadedMsg struct {
	days []domain.HeatmapDay
}

type heatmapErrorMsg struct {
	err error
}
