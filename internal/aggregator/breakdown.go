package aggregator

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/emiliopalmerini/mfocus/internal/domain"
)

// CategoryBreakdown sums tracked time per category over the whole of r,
// sorted by total descending and then by name. Percentages are computed from
// the final sums.
func (a *Aggregator) CategoryBreakdown(ctx context.Context, r domain.TimeRange) ([]domain.CategoryShare, error) {
	totals := map[string]time.Duration{}
	categories := map[string]domain.Category{}

	err := a.fold(ctx, r, func(ev domain.ClassifiedEvent, clipped domain.TimeRange) {
		totals[ev.Category.Name] += clipped.Duration()
		categories[ev.Category.Name] = ev.Category
	})
	if err != nil {
		return nil, err
	}

	return shares(totals, categories), nil
}

func shares(totals map[string]time.Duration, categories map[string]domain.Category) []domain.CategoryShare {
	var grand time.Duration
	for _, d := range totals {
		grand += d
	}

	out := make([]domain.CategoryShare, 0, len(totals))
	for name, d := range totals {
		if d <= 0 {
			continue
		}
		out = append(out, domain.CategoryShare{
			Category: categories[name],
			Total:    d,
			Percent:  float64(d) * 100 / float64(grand),
		})
	}

	slices.SortFunc(out, func(x, y domain.CategoryShare) int {
		if c := cmp.Compare(y.Total, x.Total); c != 0 {
			return c
		}
		return cmp.Compare(x.Category.Name, y.Category.Name)
	})
	return out
}

// DisruptorOptions controls a disruptor ranking.
type DisruptorOptions struct {
	// Limit caps the result. Zero or negative yields an empty ranking.
	Limit int
	// DistractionOnly keeps sources whose category is a distraction or that
	// match Include.
	DistractionOnly bool
	// Include lists site substrings always treated as distractions.
	Include []string
	// Exclude lists site substrings dropped from the ranking.
	Exclude []string
}

// TopDisruptors ranks sources over the whole of r by occurrence count, then
// by clipped duration, then by source.
func (a *Aggregator) TopDisruptors(ctx context.Context, r domain.TimeRange, opts DisruptorOptions) ([]domain.Disruptor, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if opts.Limit <= 0 {
		return []domain.Disruptor{}, nil
	}

	sites := domain.Settings{DistractionSites: opts.Include, WhitelistSites: opts.Exclude}
	bySource := map[string]*domain.Disruptor{}

	err := a.fold(ctx, r, func(ev domain.ClassifiedEvent, clipped domain.TimeRange) {
		d, ok := bySource[ev.Source]
		if !ok {
			d = &domain.Disruptor{Source: ev.Source, Category: ev.Category}
			bySource[ev.Source] = d
		}
		d.Occurrences++
		d.Total += clipped.Duration()
	})
	if err != nil {
		return nil, err
	}

	ranked := make([]domain.Disruptor, 0, len(bySource))
	for source, d := range bySource {
		if sites.Whitelisted(source) {
			continue
		}
		if opts.DistractionOnly && !d.Category.Distraction && !sites.Distracting(source) {
			continue
		}
		ranked = append(ranked, *d)
	}

	slices.SortFunc(ranked, func(x, y domain.Disruptor) int {
		if c := cmp.Compare(y.Occurrences, x.Occurrences); c != 0 {
			return c
		}
		if c := cmp.Compare(y.Total, x.Total); c != 0 {
			return c
		}
		return cmp.Compare(x.Source, y.Source)
	})

	if len(ranked) > opts.Limit {
		ranked = ranked[:opts.Limit]
	}
	return ranked, nil
}
