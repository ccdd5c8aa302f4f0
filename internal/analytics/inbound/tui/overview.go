package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/mfocus/internal/analytics"
	"github.com/emiliopalmerini/mfocus/internal/domain"
	"github.com/emiliopalmerini/mfocus/internal/pkg/tui/theme"
	"github.com/emiliopalmerini/mfocus/internal/util"
)

// Overview shows headline totals and the per-window activity curve.
type Overview struct {
	service  *analytics.Service
	period   Period
	overview domain.Overview
	shares   []domain.CategoryShare
	loading  bool
	err      error
	styles   *theme.Styles
	width    int
	height   int
}

// NewOverview creates a new overview screen
func NewOverview(service *analytics.Service, period Period) *Overview {
	return &Overview{
		service: service,
		period:  period,
		loading: true,
		styles:  theme.Default(),
	}
}

// SetPeriod changes the reported range. Call Init to reload.
func (o *Overview) SetPeriod(p Period) {
	o.period = p
	o.loading = true
	o.err = nil
}

// Init implements tea.Model
func (o *Overview) Init() tea.Cmd {
	return o.load()
}

func (o *Overview) load() tea.Cmd {
	period := o.period
	return func() tea.Msg {
		ctx := context.Background()
		g := util.DefaultGranularity(period.Range)
		ov, err := o.service.Overview(ctx, period.Range, g)
		if err != nil {
			return overviewErrorMsg{err}
		}
		shares, err := o.service.CategoryBreakdown(ctx, period.Range)
		if err != nil {
			return overviewErrorMsg{err}
		}
		return overviewLoadedMsg{overview: ov, shares: shares}
	}
}

// Update implements tea.Model
func (o *Overview) Update(msg tea.Msg) (*Overview, tea.Cmd) {
	switch msg := msg.(type) {
	case overviewLoadedMsg:
		o.loading = false
		o.overview = msg.overview
		o.shares = msg.shares
		return o, nil

	case overviewErrorMsg:
		o.loading = false
		o.err = msg.err
		return o, nil

	case tea.WindowSizeMsg:
		o.width = msg.Width
		o.height = msg.Height
		return o, nil

	case tea.KeyMsg:
		if msg.String() == "r" {
			o.loading = true
			o.err = nil
			return o, o.load()
		}
	}

	return o, nil
}

// View implements tea.Model
func (o *Overview) View() string {
	if o.loading {
		return o.styles.Muted.Render("Loading overview...")
	}
	if o.err != nil {
		return o.styles.Error.Render(fmt.Sprintf("Error: %v", o.err))
	}

	title := o.styles.Title.Render("Overview  " + o.styles.Muted.Render(o.period.Label()))

	focus, distracted := splitFocus(o.shares)
	top := StatCard{Label: "Top category", Value: "-", Detail: "nothing tracked"}
	if len(o.shares) > 0 {
		s := o.shares[0]
		top = StatCard{
			Label:  "Top category",
			Value:  s.Category.Name,
			Detail: util.FormatDuration(s.Total) + " · " + util.FormatPercent(s.Percent),
			Color:  theme.CategoryColor(s.Category.Color),
		}
	}

	cards := []StatCard{
		{Label: "Tracked", Value: util.FormatDuration(o.overview.Total), Detail: fmt.Sprintf("%d %s windows", len(o.overview.Buckets), o.overview.Granularity)},
		{Label: "Focused", Value: util.FormatDuration(focus), Detail: share(focus, o.overview.Total), Color: theme.Accent},
		{Label: "Distracted", Value: util.FormatDuration(distracted), Detail: share(distracted, o.overview.Total), Color: theme.Distraction},
		top,
	}

	totals := make([]time.Duration, len(o.overview.Buckets))
	for i, b := range o.overview.Buckets {
		totals[i] = b.Total
	}
	curve := lipgloss.JoinVertical(lipgloss.Left,
		o.styles.Subtitle.Render("Activity per "+o.overview.Granularity.String()),
		o.styles.Focus.Render(RenderSparkline(totals)),
	)

	help := o.styles.Help.Render("r: refresh  d/w/m: today/week/month  1-5: screens  q: quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, RenderStatCards(cards, o.width, 2), "", curve, help)
}

func splitFocus(shares []domain.CategoryShare) (focus, distracted time.Duration) {
	for _, s := range shares {
		if s.Category.Distraction {
			distracted += s.Total
		} else {
			focus += s.Total
		}
	}
	return focus, distracted
}

func share(part, total time.Duration) string {
	if total <= 0 {
		return util.FormatPercent(0)
	}
	return util.FormatPercent(float64(part) * 100 / float64(total))
}

type overviewLoadedMsg struct {
	overview domain.Overview
	shares   []domain.CategoryShare
}

type overviewErrorMsg struct {
	err error
}
