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
	"github.com/emiliopalmerini/mfocus/internal/util"
)

// Timeline shows one day as a strip of category segments.
type Timeline struct {
	service  *analytics.Service
	day      time.Time
	segments []domain.TimelineSegment
	loading  bool
	err      error
	styles   *theme.Styles
	width    int
	height   int
}

// NewTimeline creates a timeline screen for the day containing day.
func NewTimeline(service *analytics.Service, day time.Time) *Timeline {
	return &Timeline{
		service: service,
		day:     day,
		loading: true,
		styles:  theme.Default(),
	}
}

// Init implements tea.Model
func (t *Timeline) Init() tea.Cmd {
	day := t.day
	return func() tea.Msg {
		segments, err := t.service.DailyTimeline(context.Background(), day)
		if err != nil {
			return timelineErrorMsg{err}
		}
		return timelineLoadedMsg{segments}
	}
}

// Update implements tea.Model
func (t *Timeline) Update(msg tea.Msg) (*Timeline, tea.Cmd) {
	switch msg := msg.(type) {
	case timelineLoadedMsg:
		t.loading = false
		t.segments = msg.segments
	case timelineErrorMsg:
		t.loading = false
		t.err = msg.err
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "h", "left":
			return t, t.shift(-1)
		case "l", "right":
			return t, t.shift(1)
		case "r":
			t.loading = true
			t.err = nil
			return t, t.Init()
		}
	}
	return t, nil
}

func (t *Timeline) shift(days int) tea.Cmd {
	loc := t.service.Location()
	start := domain.Day(t.day, loc).Start
	t.day = time.Date(start.Year(), start.Month(), start.Day()+days, 12, 0, 0, 0, loc)
	t.loading = true
	t.err = nil
	return t.Init()
}

// View implements tea.Model
func (t *Timeline) View() string {
	if t.loading {
		return t.styles.Muted.Render("Loading timeline...")
	}
	if t.err != nil {
		return t.styles.Error.Render(fmt.Sprintf("Error: %v", t.err))
	}

	title := t.styles.Title.Render("Timeline  " + t.styles.Muted.Render(util.FormatDateISO(t.day.In(t.service.Location()))))

	width := 72
	if t.width > 10 {
		width = t.width - 4
	}

	var rows []string
	for _, s := range t.segments {
		if s.Category.Name == domain.CategoryIdle {
			continue
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			t.styles.Muted.Render(util.FormatOffset(s.StartOffset)+"–"+util.FormatOffset(s.EndOffset)+"  "),
			lipgloss.NewStyle().Foreground(theme.CategoryColor(s.Category.Color)).Width(26).Render(s.Category.Name),
			util.FormatDuration(s.Duration()),
		))
	}
	if len(rows) == 0 {
		rows = append(rows, t.styles.Muted.Render("Idle all day."))
	}

	help := t.styles.Help.Render("h/l: previous/next day  r: refresh  q: quit")
	return lipgloss.JoinVertical(lipgloss.Left,
		append(append([]string{title, RenderTimelineStrip(t.segments, width), hourScale(width), ""}, rows...), help)...)
}

// RenderTimelineStrip draws the day at width columns. Each column shows the
// category active at its midpoint.
func RenderTimelineStrip(segments []domain.TimelineSegment, width int) string {
	if width <= 0 || len(segments) == 0 {
		return ""
	}
	span := segments[len(segments)-1].EndOffset
	var b strings.Builder
	seg := 0
	for col := range width {
		mid := time.Duration((float64(col) + 0.5) / float64(width) * float64(span))
		for seg < len(segments)-1 && segments[seg].EndOffset <= mid {
			seg++
		}
		c := segments[seg].Category
		glyph := "█"
		if c.Name == domain.CategoryIdle {
			glyph = "·"
		}
		b.WriteString(lipgloss.NewStyle().Foreground(theme.CategoryColor(c.Color)).Render(glyph))
	}
	return b.String()
}

func hourScale(width int) string {
	line := []rune(strings.Repeat(" ", width))
	for h := 0; h < 24; h += 6 {
		label := fmt.Sprintf("%02d", h)
		pos := h * width / 24
		for i, r := range label {
			if pos+i < width {
				line[pos+i] = r
			}
		}
	}
	return lipgloss.NewStyle().Foreground(theme.Gray600).Render(string(line))
}

type timelineLoadedMsg struct {
	segments []domain.TimelineSegment
}

type timelineErrorMsg struct {
	err error
}
