package aggregator

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/mfocus/internal/domain"
)

// heatmapConcurrency bounds the number of days folded in parallel.
const heatmapConcurrency = 4

// Heatmap returns hourly cells for the days local days ending with the day
// containing last. A non-empty category restricts the cells to that
// category. Intensity is tracked time over the length of the hour, capped at 1.
func (a *Aggregator) Heatmap(ctx context.Context, last time.Time, days int, category string) ([]domain.HeatmapDay, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: heatmap needs at least one day, got %d", domain.ErrInvalidRange, days)
	}

	lastDay := domain.Day(last, a.loc).Start
	out := make([]domain.HeatmapDay, days)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(heatmapConcurrency)
	for i := range days {
		offset := i - (days - 1)
		dayStart := time.Date(lastDay.Year(), lastDay.Month(), lastDay.Day()+offset, 0, 0, 0, 0, a.loc)
		g.Go(func() error {
			day, err := a.heatmapDay(ctx, dayStart, category)
			if err != nil {
				return err
			}
			out[i] = day
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Aggregator) heatmapDay(ctx context.Context, dayStart time.Time, category string) (domain.HeatmapDay, error) {
	buckets, err := a.buckets(ctx, domain.Day(dayStart, a.loc), domain.GranularityHour, category)
	if err != nil {
		return domain.HeatmapDay{}, err
	}

	// On daylight saving days two windows can share a local hour.
	var lengths [24]time.Duration
	cells := make([]domain.HeatmapCell, 24)
	for h := range cells {
		cells[h].Hour = h
	}
	for _, b := range buckets {
		h := b.WindowStart.In(a.loc).Hour()
		cells[h].Duration += b.Total
		lengths[h] += b.WindowEnd.Sub(b.WindowStart)
	}
	for h := range cells {
		if lengths[h] > 0 {
			cells[h].Intensity = min(1, float64(cells[h].Duration)/float64(lengths[h]))
		}
	}
	return domain.HeatmapDay{Day: dayStart, Cells: cells}, nil
}
