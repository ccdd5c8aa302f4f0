package ports

import (
	"context"
	"iter"
	"time"

	"github.com/emiliopalmerini/mfocus/internal/domain"
)

// ObservationReader streams observations intersecting a range, ordered by
// start ascending. An invalid range yields a single domain.ErrInvalidRange.
// The returned sequence may be ranged over more than once.
type ObservationReader interface {
	Query(ctx context.Context, r domain.TimeRange) iter.Seq2[domain.Observation, error]
}

// ObservationStore is the append-only observation log.
type ObservationStore interface {
	ObservationReader
	// Append validates and stores obs, assigning an ID when empty.
	Append(ctx context.Context, obs domain.Observation) (domain.Observation, error)
	// PurgeBefore deletes every observation with End <= t and returns how
	// many were removed. It cannot be undone.
	PurgeBefore(ctx context.Context, t time.Time) (int64, error)
}
