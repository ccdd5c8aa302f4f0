// Package eventstore holds the in-process observation store.
package eventstore

import (
	"context"
	"iter"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/mfocus/internal/domain"
)

// snapshot is an immutable, sorted view of the log. maxSpan bounds the
// longest observation so a query can skip entries that end too early.
type snapshot struct {
	items   []domain.Observation
	maxSpan time.Duration
}

var empty = &snapshot{}

// Memory is an append-only observation log kept in memory.
//
// Readers load the current snapshot and never lock. Writers are serialized by
// a mutex and publish a new snapshot after every change, so a reader sees an
// appended observation either completely or not at all.
type Memory struct {
	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	m := &Memory{}
	m.snap.Store(empty)
	return m
}

// Len returns the number of stored observations.
func (m *Memory) Len() int {
	return len(m.snap.Load().items)
}

// Append stores obs and returns it with its ID assigned.
func (m *Memory) Append(ctx context.Context, obs domain.Observation) (domain.Observation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Observation{}, err
	}
	if err := obs.Validate(); err != nil {
		return domain.Observation{}, err
	}
	if obs.ID == "" {
		obs.ID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.snap.Load()
	idx := sort.Search(len(cur.items), func(i int) bool {
		return less(obs, cur.items[i])
	})

	var items []domain.Observation
	if idx == len(cur.items) {
		// Slots past len(cur.items) are invisible to existing readers.
		items = append(cur.items, obs)
	} else {
		items = make([]domain.Observation, 0, len(cur.items)+1)
		items = append(items, cur.items[:idx]...)
		items = append(items, obs)
		items = append(items, cur.items[idx:]...)
	}

	m.snap.Store(&snapshot{
		items:   items,
		maxSpan: max(cur.maxSpan, obs.Duration()),
	})
	return obs, nil
}

// Query yields the observations intersecting r in start order. Each range
// over the returned sequence reads the snapshot current at that moment.
func (m *Memory) Query(ctx context.Context, r domain.TimeRange) iter.Seq2[domain.Observation, error] {
	return func(yield func(domain.Observation, error) bool) {
		if err := r.Validate(); err != nil {
			yield(domain.Observation{}, err)
			return
		}

		snap := m.snap.Load()
		items := snap.items

		// Nothing starting before r.Start-maxSpan can reach into r.
		lo := sort.Search(len(items), func(i int) bool {
			return items[i].Start.After(r.Start.Add(-snap.maxSpan))
		})
		hi := sort.Search(len(items), func(i int) bool {
			return !items[i].Start.Before(r.End)
		})

		for i := lo; i < hi; i++ {
			if i%1024 == 0 {
				if err := ctx.Err(); err != nil {
					yield(domain.Observation{}, err)
					return
				}
			}
			if !items[i].End.After(r.Start) {
				continue
			}
			if !yield(items[i], nil) {
				return
			}
		}
	}
}

// PurgeBefore removes every observation that ended at or before t.
func (m *Memory) PurgeBefore(ctx context.Context, t time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.snap.Load()
	kept := make([]domain.Observation, 0, len(cur.items))
	var span time.Duration
	for _, o := range cur.items {
		if !o.End.After(t) {
			continue
		}
		kept = append(kept, o)
		span = max(span, o.Duration())
	}

	removed := int64(len(cur.items) - len(kept))
	if removed == 0 {
		return 0, nil
	}
	m.snap.Store(&snapshot{items: slices.Clip(kept), maxSpan: span})
	return removed, nil
}

func less(a, b domain.Observation) bool {
	if !a.Start.Equal(b.Start) {
		return a.Start.Before(b.Start)
	}
	if !a.End.Equal(b.End) {
		return a.End.Before(b.End)
	}
	return a.ID < b.ID
}
