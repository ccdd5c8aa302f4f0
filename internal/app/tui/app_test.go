package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emiliopalmerini/mfocus/internal/analytics"
	analyticstui "github.com/emiliopalmerini/mfocus/internal/analytics/inbound/tui"
	"github.com/emiliopalmerini/mfocus/internal/classifier"
	"github.com/emiliopalmerini/mfocus/internal/domain"
	"github.com/emiliopalmerini/mfocus/internal/eventstore"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	set, err := domain.NewCategorySet(nil)
	if err != nil {
		t.Fatalf("NewCategorySet() error: %v", err)
	}
	c, err := classifier.New(set, 0, nil)
	if err != nil {
		t.Fatalf("classifier.New() error: %v", err)
	}
	svc := analytics.NewService(eventstore.NewMemory(), c, analytics.WithLocation(time.UTC))

	now := func() time.Time { return time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC) }
	period, err := analyticstui.NewPeriod("today", now(), time.UTC)
	if err != nil {
		t.Fatalf("NewPeriod() error: %v", err)
	}
	return NewApp(svc, period, now)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestApp_SwitchScreens(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		key    string
		screen Screen
	}{
		{"2", ScreenCategories},
		{"3", ScreenDisruptors},
		{"4", ScreenTimeline},
		{"5", ScreenHeatmap},
		{"1", ScreenOverview},
	}
	for _, tt := range tests {
		_, cmd := app.Update(key(tt.key))
		if app.currentScreen != tt.screen {
			t.Errorf("after %q screen = %d, want %d", tt.key, app.currentScreen, tt.screen)
		}
		if cmd == nil {
			t.Errorf("switching to %d returned no load command", tt.screen)
		}
	}
}

func TestApp_ChangePeriod(t *testing.T) {
	app := newTestApp(t)

	if _, cmd := app.Update(key("w")); cmd == nil {
		t.Fatal("period change returned no load command")
	}
	if app.period.Name != "week" {
		t.Errorf("period = %q, want week", app.period.Name)
	}
	want := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if !app.period.Range.Start.Equal(want) {
		t.Errorf("week starts %v, want %v", app.period.Range.Start, want)
	}
	if view := app.View(); !strings.Contains(view, "2025-03-10 → 2025-03-16") {
		t.Errorf("header missing week label:\n%s", view)
	}
}

func TestApp_Quit(t *testing.T) {
	app := newTestApp(t)
	_, cmd := app.Update(key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestApp_HelpFollowsScreen(t *testing.T) {
	app := newTestApp(t)

	if view := app.View(); !strings.Contains(view, "d/w/m") || strings.Contains(view, "h/l") {
		t.Errorf("overview help should offer periods only:\n%s", view)
	}

	app.Update(key("4"))
	if view := app.View(); !strings.Contains(view, "h/l") || strings.Contains(view, "d/w/m") {
		t.Errorf("timeline help should offer day stepping only:\n%s", view)
	}
}

func TestApp_TrackingIndicator(t *testing.T) {
	app := newTestApp(t)
	if view := app.View(); strings.Contains(view, "tracking") {
		t.Errorf("indicator shown before the switch was read:\n%s", view)
	}

	app.Update(app.loadTracking()())
	if view := app.View(); !strings.Contains(view, "● tracking") {
		t.Errorf("header missing tracking indicator:\n%s", view)
	}

	if err := app.service.SetTracking(context.Background(), false); err != nil {
		t.Fatalf("SetTracking() error: %v", err)
	}
	app.Update(app.loadTracking()())
	if view := app.View(); !strings.Contains(view, "tracking paused") {
		t.Errorf("header missing paused warning:\n%s", view)
	}
}
