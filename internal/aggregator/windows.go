package aggregator

import (
	"context"
	"sort"
	"time"

	"github.com/emiliopalmerini/mfocus/internal/domain"
)

// Partition splits r into consecutive windows aligned to local boundaries of
// g in loc. The first and last windows are clipped so the windows cover r
// exactly.
func Partition(r domain.TimeRange, g domain.Granularity, loc *time.Location) ([]domain.TimeRange, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	g, err := domain.ParseGranularity(string(g))
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}

	var windows []domain.TimeRange
	for start := g.Floor(r.Start, loc); start.Before(r.End); {
		next := g.Next(start, loc)
		if !next.After(start) {
			next = start.Add(time.Hour)
		}

		w := domain.TimeRange{Start: start, End: next}
		if w.Start.Before(r.Start) {
			w.Start = r.Start
		}
		if w.End.After(r.End) {
			w.End = r.End
		}
		windows = append(windows, w)
		start = next
	}
	return windows, nil
}

// Overview buckets r at granularity g. Every window gets a bucket, empty or
// not; an event spanning several windows adds its overlap to each one.
func (a *Aggregator) Overview(ctx context.Context, r domain.TimeRange, g domain.Granularity) (domain.Overview, error) {
	if err := r.Validate(); err != nil {
		return domain.Overview{}, err
	}
	g, err := domain.ParseGranularity(string(g))
	if err != nil {
		return domain.Overview{}, err
	}
	buckets, err := a.buckets(ctx, r, g, "")
	if err != nil {
		return domain.Overview{}, err
	}

	var total time.Duration
	for _, b := range buckets {
		total += b.Total
	}
	return domain.Overview{Range: r, Granularity: g, Total: total, Buckets: buckets}, nil
}

// buckets does the windowed fold. A non-empty category restricts it to events
// of that category.
func (a *Aggregator) buckets(ctx context.Context, r domain.TimeRange, g domain.Granularity, category string) ([]domain.Bucket, error) {
	windows, err := Partition(r, g, a.loc)
	if err != nil {
		return nil, err
	}

	buckets := make([]domain.Bucket, len(windows))
	for i, w := range windows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		buckets[i] = domain.Bucket{
			WindowStart: w.Start,
			WindowEnd:   w.End,
			PerCategory: map[string]time.Duration{},
		}
	}

	err = a.fold(ctx, r, func(ev domain.ClassifiedEvent, clipped domain.TimeRange) {
		if category != "" && ev.Category.Name != category {
			return
		}
		first := sort.Search(len(windows), func(i int) bool {
			return windows[i].End.After(clipped.Start)
		})
		for i := first; i < len(windows) && windows[i].Start.Before(clipped.End); i++ {
			buckets[i].Add(ev.Category.Name, windows[i].Overlap(clipped))
		}
	})
	if err != nil {
		return nil, err
	}
	return buckets, nil
}

// WeeklyBreakdown groups the days of r into Monday-based weeks.
func (a *Aggregator) WeeklyBreakdown(ctx context.Context, r domain.TimeRange) ([]domain.WeekBreakdown, error) {
	days, err := a.buckets(ctx, r, domain.GranularityDay, "")
	if err != nil {
		return nil, err
	}

	var weeks []domain.WeekBreakdown
	for _, day := range days {
		weekStart := domain.GranularityWeek.Floor(day.WindowStart, a.loc)
		if weekStart.Before(r.Start) {
			weekStart = r.Start
		}
		if n := len(weeks); n == 0 || !weeks[n-1].WeekStart.Equal(weekStart) {
			weeks = append(weeks, domain.WeekBreakdown{WeekStart: weekStart})
		}
		w := &weeks[len(weeks)-1]
		w.WeekEnd = day.WindowEnd
		w.Total += day.Total
		w.Days = append(w.Days, day)
	}
	return weeks, nil
}
