package aggregator_test

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/go-cmp/cmp"

	"github.com/emiliopalmerini/mfocus/internal/aggregator"
	"github.com/emiliopalmerini/mfocus/internal/classifier"
	"github.com/emiliopalmerini/mfocus/internal/domain"
	"github.com/emiliopalmerini/mfocus/internal/eventstore"
)

var base = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(sec int) time.Time {
	return base.Add(time.Duration(sec) * time.Second)
}

func span(start, end int) domain.TimeRange {
	return domain.TimeRange{Start: at(start), End: at(end)}
}

type fixture struct {
	store *eventstore.Memory
	agg   *aggregator.Aggregator
}

func newFixture(t *testing.T, loc *time.Location, observations ...domain.Observation) fixture {
	t.Helper()

	set, err := domain.NewCategorySet([]domain.Category{
		{Name: "Video", Color: "#F59E0B", Distraction: true},
		{Name: "Coding", Color: "#2563EB"},
		{Name: "Social", Color: "#EC4899", Distraction: true},
	})
	if err != nil {
		t.Fatalf("NewCategorySet() error: %v", err)
	}
	c, err := classifier.New(set, 1, []domain.Rule{
		{Pattern: "youtube", Category: "Video"},
		{Pattern: "github", Category: "Coding"},
		{Pattern: `(twitter|reddit)\.com`, Kind: domain.MatchRegex, Category: "Social"},
	})
	if err != nil {
		t.Fatalf("classifier.New() error: %v", err)
	}

	store := eventstore.NewMemory()
	for _, o := range observations {
		if _, err := store.Append(context.Background(), o); err != nil {
			t.Fatalf("Append(%+v) error: %v", o, err)
		}
	}
	return fixture{store: store, agg: aggregator.New(store, c, aggregator.WithLocation(loc))}
}

func ob(start, end int, source string) domain.Observation {
	return domain.Observation{Start: at(start), End: at(end), Source: source}
}

func TestOverview_HourlyBuckets(t *testing.T) {
	f := newFixture(t, time.UTC,
		ob(0, 3600, "youtube.com"),
		ob(3600, 7200, "github.com"),
	)

	got, err := f.agg.Overview(context.Background(), span(0, 7200), domain.GranularityHour)
	if err != nil {
		t.Fatalf("Overview() error: %v", err)
	}

	want := []domain.Bucket{
		{WindowStart: at(0), WindowEnd: at(3600), PerCategory: map[string]time.Duration{"Video": time.Hour}, Total: time.Hour},
		{WindowStart: at(3600), WindowEnd: at(7200), PerCategory: map[string]time.Duration{"Coding": time.Hour}, Total: time.Hour},
	}
	if diff := cmp.Diff(want, got.Buckets); diff != "" {
		t.Errorf("Buckets mismatch (-want +got):\n%s", diff)
	}
	if got.Total != 2*time.Hour {
		t.Errorf("Total = %v, want 2h", got.Total)
	}
}

func TestOverview_SplitsAcrossWindows(t *testing.T) {
	f := newFixture(t, time.UTC, ob(3000, 7000, "github.com"))

	got, err := f.agg.Overview(context.Background(), span(0, 7200), domain.GranularityHour)
	if err != nil {
		t.Fatalf("Overview() error: %v", err)
	}

	if len(got.Buckets) != 2 {
		t.Fatalf("got %d buckets, want 2", len(got.Buckets))
	}
	if got.Buckets[0].Total != 600*time.Second {
		t.Errorf("window 1 = %v, want 600s", got.Buckets[0].Total)
	}
	if got.Buckets[1].Total != 3400*time.Second {
		t.Errorf("window 2 = %v, want 3400s", got.Buckets[1].Total)
	}
}

func TestOverview_GranularityAliases(t *testing.T) {
	f := newFixture(t, time.UTC, ob(0, 10800, "github.com"))

	for _, g := range []domain.Granularity{"hours", "HOURLY", "h"} {
		got, err := f.agg.Overview(context.Background(), span(0, 10800), g)
		if err != nil {
			t.Fatalf("Overview(%q) error: %v", g, err)
		}
		if len(got.Buckets) != 3 {
			t.Errorf("Overview(%q) gave %d buckets, want 3", g, len(got.Buckets))
		}
		if got.Granularity != domain.GranularityHour {
			t.Errorf("Overview(%q).Granularity = %q, want hour", g, got.Granularity)
		}
	}

	if _, err := f.agg.Overview(context.Background(), span(0, 10800), "fortnight"); !errors.Is(err, domain.ErrInvalidGranularity) {
		t.Errorf("Overview(fortnight) error = %v, want ErrInvalidGranularity", err)
	}
}

func TestOverview_ZeroFilled(t *testing.T) {
	f := newFixture(t, time.UTC)

	got, err := f.agg.Overview(context.Background(), span(0, 86400), domain.GranularityHour)
	if err != nil {
		t.Fatalf("Overview() error: %v", err)
	}
	if len(got.Buckets) != 24 {
		t.Fatalf("got %d buckets for an empty day, want 24", len(got.Buckets))
	}
	for _, b := range got.Buckets {
		if b.Total != 0 || len(b.PerCategory) != 0 {
			t.Errorf("bucket %v not empty: %+v", b.WindowStart, b)
		}
	}
}

func TestOverview_ClipsEventsOutsideRange(t *testing.T) {
	f := newFixture(t, time.UTC, ob(-1800, 1800, "youtube.com"))

	got, err := f.agg.Overview(context.Background(), span(0, 3600), domain.GranularityHour)
	if err != nil {
		t.Fatalf("Overview() error: %v", err)
	}
	if got.Total != 30*time.Minute {
		t.Errorf("Total = %v, want 30m", got.Total)
	}
}

func TestAggregations_InvalidRange(t *testing.T) {
	f := newFixture(t, time.UTC, ob(0, 10, "github.com"))
	ctx := context.Background()
	empty := span(100, 100)

	checks := map[string]error{}
	_, checks["Overview"] = f.agg.Overview(ctx, empty, domain.GranularityDay)
	_, checks["CategoryBreakdown"] = f.agg.CategoryBreakdown(ctx, empty)
	_, checks["TopDisruptors"] = f.agg.TopDisruptors(ctx, empty, aggregator.DisruptorOptions{Limit: 5})
	_, checks["WeeklyBreakdown"] = f.agg.WeeklyBreakdown(ctx, span(100, 50))
	_, checks["Heatmap"] = f.agg.Heatmap(ctx, at(0), 0, "")

	for name, err := range checks {
		if !errors.Is(err, domain.ErrInvalidRange) {
			t.Errorf("%s() error = %v, want ErrInvalidRange", name, err)
		}
	}
}

func TestOverview_Cancelled(t *testing.T) {
	f := newFixture(t, time.UTC, ob(0, 10, "github.com"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.agg.Overview(ctx, span(0, 86400), domain.GranularityHour)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Overview() error = %v, want context.Canceled", err)
	}
}

func TestPartition_CoversRange(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Fatalf("LoadLocation() error: %v", err)
	}
	rng := rand.New(rand.NewPCG(1, 2))

	for _, loc := range []*time.Location{time.UTC, rome, time.FixedZone("IST", 5*3600+1800)} {
		for _, g := range domain.Granularities {
			for range 50 {
				start := base.Add(time.Duration(rng.Int64N(int64(400 * 24 * time.Hour))))
				end := start.Add(time.Duration(1 + rng.Int64N(int64(90*24*time.Hour))))
				if g == domain.GranularityHour {
					end = start.Add(time.Duration(1 + rng.Int64N(int64(72*time.Hour))))
				}
				r := domain.TimeRange{Start: start, End: end}

				windows, err := aggregator.Partition(r, g, loc)
				if err != nil {
					t.Fatalf("Partition(%v, %s) error: %v", r, g, err)
				}
				if !windows[0].Start.Equal(r.Start) || !windows[len(windows)-1].End.Equal(r.End) {
					t.Fatalf("Partition(%v, %s, %s) does not span the range", r, g, loc)
				}
				var sum time.Duration
				for i, w := range windows {
					if !w.End.After(w.Start) {
						t.Fatalf("window %d is empty: %v", i, w)
					}
					if i > 0 && !windows[i-1].End.Equal(w.Start) {
						t.Fatalf("gap or overlap between windows %d and %d", i-1, i)
					}
					sum += w.Duration()
				}
				if sum != r.Duration() {
					t.Fatalf("windows sum to %v, range is %v", sum, r.Duration())
				}
			}
		}
	}
}

func TestPartition_AlignsToLocalBoundaries(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Fatalf("LoadLocation() error: %v", err)
	}

	// Sunday 2026-03-29 is the spring-forward day in Rome.
	r := domain.TimeRange{
		Start: time.Date(2026, 3, 28, 12, 0, 0, 0, rome),
		End:   time.Date(2026, 4, 2, 0, 0, 0, 0, rome),
	}
	windows, err := aggregator.Partition(r, domain.GranularityDay, rome)
	if err != nil {
		t.Fatalf("Partition() error: %v", err)
	}
	if len(windows) != 5 {
		t.Fatalf("got %d day windows, want 5", len(windows))
	}
	if got := windows[1].Duration(); got != 23*time.Hour {
		t.Errorf("spring-forward day lasts %v, want 23h", got)
	}
	for _, w := range windows[1:] {
		if h, m := w.Start.In(rome).Hour(), w.Start.In(rome).Minute(); h != 0 || m != 0 {
			t.Errorf("window starts at %v, want local midnight", w.Start.In(rome))
		}
	}

	weeks, err := aggregator.Partition(r, domain.GranularityWeek, rome)
	if err != nil {
		t.Fatalf("Partition(week) error: %v", err)
	}
	if len(weeks) != 2 || weeks[1].Start.In(rome).Weekday() != time.Monday {
		t.Errorf("weeks = %v, want a split on Monday", weeks)
	}
}

func TestOverview_TotalsAndIdempotence(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	sources := []string{"youtube.com", "github.com", "reddit.com/r/golang", "mail.google.com"}

	var observations []domain.Observation
	cursor := 0
	for range 500 {
		cursor += rng.IntN(600)
		length := 1 + rng.IntN(7200)
		observations = append(observations, ob(cursor, cursor+length, sources[rng.IntN(len(sources))]))
		cursor += length
	}
	f := newFixture(t, time.UTC, observations...)
	r := span(0, cursor+1)

	for _, g := range domain.Granularities {
		first, err := f.agg.Overview(context.Background(), r, g)
		if err != nil {
			t.Fatalf("Overview(%s) error: %v", g, err)
		}
		second, err := f.agg.Overview(context.Background(), r, g)
		if err != nil {
			t.Fatalf("Overview(%s) error: %v", g, err)
		}
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("Overview(%s) not idempotent (-first +second):\n%s", g, diff)
		}

		var grand time.Duration
		for _, b := range first.Buckets {
			var sum time.Duration
			for _, d := range b.PerCategory {
				sum += d
			}
			if sum != b.Total {
				t.Errorf("bucket %v: per-category sum %v != total %v", b.WindowStart, sum, b.Total)
			}
			grand += b.Total
		}
		if grand != first.Total {
			t.Errorf("Overview(%s) total %v != bucket sum %v", g, first.Total, grand)
		}
	}
}

func TestCategoryBreakdown(t *testing.T) {
	f := newFixture(t, time.UTC,
		ob(0, 3600, "youtube.com"),
		ob(3600, 5400, "github.com"),
		ob(5400, 7200, "slack"),
		ob(7200, 7500, "twitter.com"),
	)

	got, err := f.agg.CategoryBreakdown(context.Background(), span(0, 7500))
	if err != nil {
		t.Fatalf("CategoryBreakdown() error: %v", err)
	}

	var names []string
	var sum float64
	for _, s := range got {
		names = append(names, s.Category.Name)
		sum += s.Percent
	}
	// Coding and Other tie on 30m and fall back to name order.
	if diff := cmp.Diff([]string{"Video", "Coding", "Other", "Social"}, names); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if math.Abs(sum-100) > aggregator.PercentEpsilon {
		t.Errorf("percentages sum to %v, want 100", sum)
	}
	if got[0].Percent != 48 {
		t.Errorf("Video percent = %v, want 48", got[0].Percent)
	}
}

func TestCategoryBreakdown_Empty(t *testing.T) {
	f := newFixture(t, time.UTC)

	got, err := f.agg.CategoryBreakdown(context.Background(), span(0, 3600))
	if err != nil {
		t.Fatalf("CategoryBreakdown() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("CategoryBreakdown() = %v, want empty", got)
	}
}

func TestTopDisruptors(t *testing.T) {
	var observations []domain.Observation
	for i := range 4 {
		observations = append(observations, ob(i*1000, i*1000+10, "youtube.com"))
	}
	observations = append(observations,
		ob(5000, 5100, "reddit.com"),
		ob(5200, 5300, "reddit.com"),
		ob(6000, 6200, "twitter.com"),
		ob(6300, 6500, "twitter.com"),
		ob(7000, 9000, "github.com"),
	)
	f := newFixture(t, time.UTC, observations...)
	r := span(0, 10000)

	tests := []struct {
		name string
		opts aggregator.DisruptorOptions
		want []string
	}{
		{"limit two", aggregator.DisruptorOptions{Limit: 2, DistractionOnly: true}, []string{"youtube.com", "twitter.com"}},
		{"ties by duration", aggregator.DisruptorOptions{Limit: 3, DistractionOnly: true}, []string{"youtube.com", "twitter.com", "reddit.com"}},
		{"unfiltered", aggregator.DisruptorOptions{Limit: 10}, []string{"youtube.com", "twitter.com", "reddit.com", "github.com"}},
		{"excluded sites", aggregator.DisruptorOptions{Limit: 10, DistractionOnly: true, Exclude: []string{"YouTube"}}, []string{"twitter.com", "reddit.com"}},
		{"included sites", aggregator.DisruptorOptions{Limit: 10, DistractionOnly: true, Include: []string{"github"}}, []string{"youtube.com", "twitter.com", "reddit.com", "github.com"}},
		{"zero limit", aggregator.DisruptorOptions{Limit: 0}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.agg.TopDisruptors(context.Background(), r, tt.opts)
			if err != nil {
				t.Fatalf("TopDisruptors() error: %v", err)
			}
			sources := []string{}
			for _, d := range got {
				sources = append(sources, d.Source)
			}
			if diff := cmp.Diff(tt.want, sources); diff != "" {
				t.Errorf("TopDisruptors() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTopDisruptors_ClipsDuration(t *testing.T) {
	f := newFixture(t, time.UTC, ob(-600, 600, "youtube.com"))

	got, err := f.agg.TopDisruptors(context.Background(), span(0, 3600), aggregator.DisruptorOptions{Limit: 1})
	if err != nil {
		t.Fatalf("TopDisruptors() error: %v", err)
	}
	want := []domain.Disruptor{{
		Source:      "youtube.com",
		Category:    domain.Category{Name: "Video", Color: "#F59E0B", Distraction: true},
		Occurrences: 1,
		Total:       10 * time.Minute,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TopDisruptors() mismatch (-want +got):\n%s", diff)
	}
}

func TestDailyTimeline(t *testing.T) {
	f := newFixture(t, time.UTC,
		ob(9*3600, 11*3600, "github.com"),
		ob(10*3600, 10*3600+1800, "youtube.com"),
		ob(11*3600, 12*3600, "github.com"),
		ob(23*3600, 25*3600, "reddit.com"),
	)

	got, err := f.agg.DailyTimeline(context.Background(), at(12*3600))
	if err != nil {
		t.Fatalf("DailyTimeline() error: %v", err)
	}

	type seg struct {
		From, To time.Duration
		Category string
	}
	var segs []seg
	for _, s := range got {
		segs = append(segs, seg{s.StartOffset, s.EndOffset, s.Category.Name})
	}
	h := time.Hour
	want := []seg{
		{0, 9 * h, domain.CategoryIdle},
		{9 * h, 10 * h, "Coding"},
		{10 * h, 10*h + 30*time.Minute, "Video"},
		{10*h + 30*time.Minute, 12 * h, "Coding"},
		{12 * h, 23 * h, domain.CategoryIdle},
		{23 * h, 24 * h, "Social"},
	}
	if diff := cmp.Diff(want, segs); diff != "" {
		t.Errorf("DailyTimeline() mismatch (-want +got):\n%s", diff)
	}
}

func TestDailyTimeline_EmptyDayIsIdle(t *testing.T) {
	f := newFixture(t, time.UTC)

	got, err := f.agg.DailyTimeline(context.Background(), at(0))
	if err != nil {
		t.Fatalf("DailyTimeline() error: %v", err)
	}
	if len(got) != 1 || got[0].Category.Name != domain.CategoryIdle || got[0].Duration() != 24*time.Hour {
		t.Errorf("DailyTimeline() = %+v, want one 24h Idle segment", got)
	}
}

func TestHeatmap(t *testing.T) {
	f := newFixture(t, time.UTC,
		ob(9*3600, 9*3600+1800, "github.com"),
		ob(86400+14*3600, 86400+16*3600, "youtube.com"),
	)

	got, err := f.agg.Heatmap(context.Background(), at(86400+60), 2, "")
	if err != nil {
		t.Fatalf("Heatmap() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d days, want 2", len(got))
	}
	if !got[0].Day.Equal(at(0)) || !got[1].Day.Equal(at(86400)) {
		t.Errorf("days = %v, %v", got[0].Day, got[1].Day)
	}
	if len(got[0].Cells) != 24 {
		t.Fatalf("got %d cells, want 24", len(got[0].Cells))
	}
	if c := got[0].Cells[9]; c.Duration != 30*time.Minute || c.Intensity != 0.5 {
		t.Errorf("day 1 hour 9 = %+v, want 30m at 0.5", c)
	}
	if c := got[1].Cells[15]; c.Intensity != 1 {
		t.Errorf("day 2 hour 15 intensity = %v, want 1", c.Intensity)
	}

	filtered, err := f.agg.Heatmap(context.Background(), at(86400), 2, "Video")
	if err != nil {
		t.Fatalf("Heatmap(Video) error: %v", err)
	}
	if filtered[0].Cells[9].Duration != 0 {
		t.Errorf("Video heatmap counted coding time: %+v", filtered[0].Cells[9])
	}
	if filtered[1].Cells[14].Duration != time.Hour {
		t.Errorf("Video heatmap hour 14 = %v, want 1h", filtered[1].Cells[14].Duration)
	}
}

func TestWeeklyBreakdown(t *testing.T) {
	// base is Monday 2026-03-02.
	f := newFixture(t, time.UTC,
		ob(0, 3600, "github.com"),
		ob(6*86400, 6*86400+1800, "youtube.com"),
		ob(7*86400, 7*86400+600, "youtube.com"),
	)

	got, err := f.agg.WeeklyBreakdown(context.Background(), span(0, 14*86400))
	if err != nil {
		t.Fatalf("WeeklyBreakdown() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d weeks, want 2", len(got))
	}
	if got[0].Total != 90*time.Minute || len(got[0].Days) != 7 {
		t.Errorf("week 1 = %v over %d days, want 1h30m over 7", got[0].Total, len(got[0].Days))
	}
	if got[1].Total != 10*time.Minute || !got[1].WeekStart.Equal(at(7*86400)) {
		t.Errorf("week 2 = %v from %v", got[1].Total, got[1].WeekStart)
	}
}
