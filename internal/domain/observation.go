package domain

import (
	"fmt"
	"time"
)

// Observation is a raw activity interval tied to a source identifier
// (window title, URL, application name).
type Observation struct {
	ID     string
	Start  time.Time
	End    time.Time
	Source string
	Title  string
}

// Validate checks the half-open interval [Start, End).
func (o Observation) Validate() error {
	if !o.End.After(o.Start) {
		return fmt.Errorf("%w: %s has start %s and end %s",
			ErrInvalidInterval, o.Source, o.Start.Format(time.RFC3339), o.End.Format(time.RFC3339))
	}
	return nil
}

// Duration returns the length of the observation.
func (o Observation) Duration() time.Duration {
	return o.End.Sub(o.Start)
}

// Clip returns the part of the observation inside r and whether any of it remains.
func (o Observation) Clip(r TimeRange) (TimeRange, bool) {
	return TimeRange{Start: o.Start, End: o.End}.Intersect(r)
}

// ClassifiedEvent is an observation paired with its resolved category.
// It is derived on demand and never stored.
type ClassifiedEvent struct {
	Observation
	Category Category
}
