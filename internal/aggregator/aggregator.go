// Package aggregator folds classified observations into time buckets,
// category breakdowns, disruptor rankings, timelines and heatmaps.
package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/emiliopalmerini/mfocus/internal/domain"
	"github.com/emiliopalmerini/mfocus/internal/ports"
)

// PercentEpsilon is the tolerance on the sum of category percentages.
const PercentEpsilon = 0.01

// cancelCheckInterval is how many events are folded between context checks.
const cancelCheckInterval = 1024

// Classifier resolves categories. Resolver must return a function bound to a
// single rule table.
type Classifier interface {
	Resolver() func(domain.Observation) domain.Category
	CategorySet() *domain.CategorySet
}

// Aggregator answers read-only aggregation queries. It holds no mutable state
// and is safe for concurrent use.
type Aggregator struct {
	store      ports.ObservationReader
	classifier Classifier
	loc        *time.Location
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLocation sets the time zone used for window boundaries.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// New creates an aggregator over store. Window boundaries default to time.Local.
func New(store ports.ObservationReader, classifier Classifier, opts ...Option) *Aggregator {
	a := &Aggregator{store: store, classifier: classifier, loc: time.Local}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Location returns the time zone used for window boundaries.
func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// fold streams the classified events of r, each clipped to r. Events with no
// overlap are dropped.
func (a *Aggregator) fold(ctx context.Context, r domain.TimeRange, fn func(ev domain.ClassifiedEvent, clipped domain.TimeRange)) error {
	if err := r.Validate(); err != nil {
		return err
	}
	resolve := a.classifier.Resolver()

	n := 0
	for obs, err := range a.store.Query(ctx, r) {
		if err != nil {
			return fmt.Errorf("querying observations: %w", err)
		}
		n++
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		clipped, ok := obs.Clip(r)
		if !ok {
			continue
		}
		fn(domain.ClassifiedEvent{Observation: obs, Category: resolve(obs)}, clipped)
	}
	return ctx.Err()
}
