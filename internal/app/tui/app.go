package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/mfocus/internal/analytics"
	analyticstui "github.com/emiliopalmerini/mfocus/internal/analytics/inbound/tui"
	"github.com/emiliopalmerini/mfocus/internal/pkg/tui/components"
	"github.com/emiliopalmerini/mfocus/internal/pkg/tui/theme"
)

// Screen identifies the current screen
type Screen int

const (
	ScreenOverview Screen = iota
	ScreenCategories
	ScreenDisruptors
	ScreenTimeline
	ScreenHeatmap
)

// App is the main dashboard TUI application
type App struct {
	service       *analytics.Service
	now           func() time.Time
	period        analyticstui.Period
	currentScreen Screen
	overview      *analyticstui.Overview
	categories    *analyticstui.Categories
	disruptors    *analyticstui.Disruptors
	timeline      *analyticstui.Timeline
	heatmap       *analyticstui.Heatmap
	tracking      *bool
	styles        *theme.Styles
	width         int
	height        int
	err           error
}

// NewApp creates a new dashboard application showing period.
func NewApp(service *analytics.Service, period analyticstui.Period, now func() time.Time) *App {
	if now == nil {
		now = time.Now
	}
	today := now()
	return &App{
		service:       service,
		now:           now,
		period:        period,
		currentScreen: ScreenOverview,
		overview:      analyticstui.NewOverview(service, period),
		categories:    analyticstui.NewCategories(service, period),
		disruptors:    analyticstui.NewDisruptors(service, period),
		timeline:      analyticstui.NewTimeline(service, today),
		heatmap:       analyticstui.NewHeatmap(service, today),
		styles:        theme.Default(),
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.overview.Init(), a.loadTracking())
}

func (a *App) loadTracking() tea.Cmd {
	return func() tea.Msg {
		enabled, err := a.service.Tracking(context.Background())
		return trackingLoadedMsg{enabled: enabled, err: err}
	}
}

type trackingLoadedMsg struct {
	enabled bool
	err     error
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case trackingLoadedMsg:
		// the indicator stays hidden when the switch cannot be read
		if msg.err == nil {
			a.tracking = &msg.enabled
		}
		return a, nil

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "1", "2", "3", "4", "5":
			next := Screen(key[0] - '1')
			if next != a.currentScreen {
				a.currentScreen = next
				return a, a.initScreen()
			}
			return a, nil
		case "d", "w", "m":
			if a.currentScreen <= ScreenDisruptors {
				return a, a.setPeriod(map[string]string{"d": "today", "w": "week", "m": "month"}[key])
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// every screen keeps its own size
		a.overview, _ = a.overview.Update(msg)
		a.categories, _ = a.categories.Update(msg)
		a.disruptors, _ = a.disruptors.Update(msg)
		a.timeline, _ = a.timeline.Update(msg)
		a.heatmap, _ = a.heatmap.Update(msg)
		return a, nil
	}

	var cmd tea.Cmd
	switch a.currentScreen {
	case ScreenOverview:
		a.overview, cmd = a.overview.Update(msg)
	case ScreenCategories:
		a.categories, cmd = a.categories.Update(msg)
	case ScreenDisruptors:
		a.disruptors, cmd = a.disruptors.Update(msg)
	case ScreenTimeline:
		a.timeline, cmd = a.timeline.Update(msg)
	case ScreenHeatmap:
		a.heatmap, cmd = a.heatmap.Update(msg)
	}

	return a, cmd
}

func (a *App) initScreen() tea.Cmd {
	switch a.currentScreen {
	case ScreenCategories:
		return a.categories.Init()
	case ScreenDisruptors:
		return a.disruptors.Init()
	case ScreenTimeline:
		return a.timeline.Init()
	case ScreenHeatmap:
		return a.heatmap.Init()
	default:
		return a.overview.Init()
	}
}

func (a *App) setPeriod(name string) tea.Cmd {
	p, err := analyticstui.NewPeriod(name, a.now(), a.service.Location())
	if err != nil {
		a.err = err
		return nil
	}
	a.err = nil
	a.period = p
	a.overview.SetPeriod(p)
	a.categories.SetPeriod(p)
	a.disruptors.SetPeriod(p)
	return a.initScreen()
}

// View implements tea.Model
func (a *App) View() string {
	sep := lipgloss.NewStyle().
		Foreground(theme.Gray700).
		Render("────────────────────────────────────────────────────────────────")

	var content string
	switch a.currentScreen {
	case ScreenOverview:
		content = a.overview.View()
	case ScreenCategories:
		content = a.categories.View()
	case ScreenDisruptors:
		content = a.disruptors.View()
	case ScreenTimeline:
		content = a.timeline.View()
	case ScreenHeatmap:
		content = a.heatmap.View()
	}
	if a.err != nil {
		content = a.styles.Error.Render(a.err.Error()) + "\n" + content
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), a.renderNav(), sep, "", content, "", a.renderHelp())
}

func (a *App) renderHelp() string {
	bindings := []components.KeyBinding{{Key: "1-5", Desc: "screens"}}
	switch a.currentScreen {
	case ScreenOverview, ScreenCategories:
		bindings = append(bindings, components.KeyBinding{Key: "d/w/m", Desc: "period"})
	case ScreenDisruptors:
		bindings = append(bindings,
			components.KeyBinding{Key: "d/w/m", Desc: "period"},
			components.KeyBinding{Key: "j/k", Desc: "move"},
			components.KeyBinding{Key: "a", Desc: "all sources"},
		)
	case ScreenTimeline:
		bindings = append(bindings, components.KeyBinding{Key: "h/l", Desc: "day"})
	case ScreenHeatmap:
		bindings = append(bindings, components.KeyBinding{Key: "c", Desc: "category"})
	}
	bindings = append(bindings,
		components.KeyBinding{Key: "r", Desc: "refresh"},
		components.KeyBinding{Key: "q", Desc: "quit"},
	)

	help := components.NewHelpBar(bindings...)
	help.Width = a.width
	return help.View()
}

func (a *App) renderHeader() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.White).
		Render("MFOCUS")

	tagline := lipgloss.NewStyle().
		Foreground(theme.Gray600).
		Render("Where your time went · " + a.period.Label())

	header := lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", tagline)
	switch {
	case a.tracking == nil:
	case *a.tracking:
		header = lipgloss.JoinHorizontal(lipgloss.Bottom, header, "  ", a.styles.Success.Render("● tracking"))
	default:
		header = lipgloss.JoinHorizontal(lipgloss.Bottom, header, "  ", a.styles.Warning.Render("tracking paused"))
	}
	return header
}

func (a *App) renderNav() string {
	items := []NavItem{
		{Key: "1", Label: "Overview", Active: a.currentScreen == ScreenOverview},
		{Key: "2", Label: "Categories", Active: a.currentScreen == ScreenCategories},
		{Key: "3", Label: "Disruptors", Active: a.currentScreen == ScreenDisruptors},
		{Key: "4", Label: "Timeline", Active: a.currentScreen == ScreenTimeline},
		{Key: "5", Label: "Heatmap", Active: a.currentScreen == ScreenHeatmap},
	}
	return NewNavBar(items).View()
}
