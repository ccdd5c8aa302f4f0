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

const disruptorLimit = 15

// Disruptors ranks the sources that interrupted the user most often.
type Disruptors struct {
	service         *analytics.Service
	period          Period
	distractionOnly bool
	ranking         []domain.Disruptor
	cursor          int
	loading         bool
	err             error
	styles          *theme.Styles
	width           int
	height          int
}

// NewDisruptors creates a new disruptor ranking screen
func NewDisruptors(service *analytics.Service, period Period) *Disruptors {
	return &Disruptors{
		service:         service,
		period:          period,
		distractionOnly: true,
		loading:         true,
		styles:          theme.Default(),
	}
}

// SetPeriod changes the reported range. Call Init to reload.
func (d *Disruptors) SetPeriod(p Period) {
	d.period = p
	d.loading = true
	d.err = nil
}

// Init implements tea.Model
func (d *Disruptors) Init() tea.Cmd {
	r, only := d.period.Range, d.distractionOnly
	return func() tea.Msg {
		ranking, err := d.service.TopDisruptors(context.Background(), r, disruptorLimit, only)
		if err != nil {
			return disruptorsErrorMsg{err}
		}
		return disruptorsLoadedMsg{ranking}
	}
}

// Update implements tea.Model
func (d *Disruptors) Update(msg tea.Msg) (*Disruptors, tea.Cmd) {
	switch msg := msg.(type) {
	case disruptorsLoadedMsg:
		d.loading = false
		d.ranking = msg.ranking
		d.cursor = 0
	case disruptorsErrorMsg:
		d.loading = false
		d.err = msg.err
	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if d.cursor < len(d.ranking)-1 {
				d.cursor++
			}
		case "k", "up":
			if d.cursor > 0 {
				d.cursor--
			}
		case "a":
			d.distractionOnly = !d.distractionOnly
			d.loading = true
			return d, d.Init()
		case "r":
			d.loading = true
			d.err = nil
			return d, d.Init()
		}
	}
	return d, nil
}

// View implements tea.Model
func (d *Disruptors) View() string {
	if d.loading {
		return d.styles.Muted.Render("Loading disruptors...")
	}
	if d.err != nil {
		return d.styles.Error.Render(fmt.Sprintf("Error: %v", d.err))
	}

	heading := "Top disruptors"
	if !d.distractionOnly {
		heading = "Top sources"
	}
	title := d.styles.Title.Render(heading + "  " + d.styles.Muted.Render(d.period.Label()))
	if len(d.ranking) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, d.styles.Muted.Render("Nothing to report."))
	}

	header := lipgloss.NewStyle().Foreground(theme.Gray500).Bold(true)
	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top,
		"  ",
		header.Width(4).Render("#"),
		header.Width(40).Render("SOURCE"),
		header.Width(22).Render("CATEGORY"),
		header.Width(8).Render("TIMES"),
		header.Width(10).Render("TIME"),
	)}
	for i, e := range d.ranking {
		rows = append(rows, d.renderRow(i, e))
	}

	help := d.styles.Help.Render("j/k: navigate  a: distractions/all  r: refresh  q: quit")
	return lipgloss.JoinVertical(lipgloss.Left, append(append([]string{title}, rows...), help)...)
}

func (d *Disruptors) renderRow(i int, e domain.Disruptor) string {
	marker, style := "  ", d.styles.Unselected
	if i == d.cursor {
		marker, style = d.styles.Cursor.Render("› "), d.styles.Selected
	}

	source := e.Source
	if len(source) > 38 {
		source = source[:35] + "..."
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		marker,
		style.Width(4).Render(fmt.Sprintf("%d", i+1)),
		style.Width(40).Render(source),
		style.Foreground(theme.CategoryColor(e.Category.Color)).Width(22).Render(e.Category.Name),
		style.Width(8).Render(fmt.Sprintf("%d", e.Occurrences)),
		style.Width(10).Render(util.FormatDuration(e.Total)),
	)
}

type disruptorsLoadedMsg struct {
	ranking []domain.Disruptor
}

type disruptorsErrorMsg struct {
	err error
}
