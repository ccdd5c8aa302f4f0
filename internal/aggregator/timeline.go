package aggregator

import (
	"container/heap"
	"context"
	"slices"
	"time"

	"github.com/emiliopalmerini/mfocus/internal/domain"
)

type activeEvent struct {
	start, end time.Time
	seq        int
	category   domain.Category
}

// activeHeap keeps the most recently started event on top.
type activeHeap []activeEvent

func (h activeHeap) Len() int { return len(h) }
func (h activeHeap) Less(i, j int) bool {
	if !h[i].start.Equal(h[j].start) {
		return h[i].start.After(h[j].start)
	}
	return h[i].seq > h[j].seq
}
func (h activeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *activeHeap) Push(x any)   { *h = append(*h, x.(activeEvent)) }
func (h *activeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// DailyTimeline covers the local day containing day with segments. Where
// events overlap, the most recently started one wins; where nothing was
// observed the segment is Idle. Adjacent segments of one category are merged.
func (a *Aggregator) DailyTimeline(ctx context.Context, day time.Time) ([]domain.TimelineSegment, error) {
	r := domain.Day(day, a.loc)
	idle := a.classifier.CategorySet().Idle()

	var events []activeEvent
	err := a.fold(ctx, r, func(ev domain.ClassifiedEvent, clipped domain.TimeRange) {
		events = append(events, activeEvent{
			start:    clipped.Start,
			end:      clipped.End,
			seq:      len(events),
			category: ev.Category,
		})
	})
	if err != nil {
		return nil, err
	}

	points := make([]time.Time, 0, 2*len(events)+2)
	points = append(points, r.Start, r.End)
	for _, ev := range events {
		points = append(points, ev.start, ev.end)
	}
	slices.SortFunc(points, func(x, y time.Time) int { return x.Compare(y) })
	points = slices.CompactFunc(points, func(x, y time.Time) bool { return x.Equal(y) })

	var (
		segments []domain.TimelineSegment
		active   activeHeap
		next     int
	)
	for i := 0; i+1 < len(points); i++ {
		from, to := points[i], points[i+1]

		for next < len(events) && !events[next].start.After(from) {
			heap.Push(&active, events[next])
			next++
		}
		for active.Len() > 0 && !active[0].end.After(from) {
			heap.Pop(&active)
		}

		cat := idle
		if active.Len() > 0 {
			cat = active[0].category
		}

		seg := domain.TimelineSegment{
			StartOffset: from.Sub(r.Start),
			EndOffset:   to.Sub(r.Start),
			Category:    cat,
		}
		if n := len(segments); n > 0 && segments[n-1].Category.Name == cat.Name {
			segments[n-1].EndOffset = seg.EndOffset
			continue
		}
		segments = append(segments, seg)
	}
	return segments, nil
}
