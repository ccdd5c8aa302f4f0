// Package retention purges observations older than the retention window on
// a cron schedule.
package retention

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Purger deletes observations that ended at or before a cutoff.
type Purger interface {
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// Job runs Purger on a five-field cron schedule
// (minute hour day-of-month month day-of-week).
type Job struct {
	purger   Purger
	schedule cron.Schedule
	spec     string
	keep     time.Duration
	loc      *time.Location
	log      zerolog.Logger
	now      func() time.Time
}

// Option configures a Job.
type Option func(*Job)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(j *Job) { j.now = now }
}

// WithLocation evaluates the schedule in loc.
func WithLocation(loc *time.Location) Option {
	return func(j *Job) {
		if loc != nil {
			j.loc = loc
		}
	}
}

// New parses spec and returns a job that keeps the last keep of history.
func New(purger Purger, spec string, keep time.Duration, log zerolog.Logger, opts ...Option) (*Job, error) {
	spec = strings.TrimSpace(spec)
	if keep <= 0 {
		return nil, fmt.Errorf("retention window must be positive, got %s", keep)
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid retention schedule %q: %w", spec, err)
	}

	j := &Job{
		purger:   purger,
		schedule: sched,
		spec:     spec,
		keep:     keep,
		loc:      time.Local,
		log:      log.With().Str("component", "retention").Logger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Cutoff returns the purge boundary for a run at now.
func (j *Job) Cutoff(now time.Time) time.Time {
	return now.Add(-j.keep)
}

// Next returns the first scheduled run after now.
func (j *Job) Next(now time.Time) time.Time {
	return j.schedule.Next(now.In(j.loc))
}

// RunOnce purges everything older than the retention window.
func (j *Job) RunOnce(ctx context.Context) (int64, error) {
	cutoff := j.Cutoff(j.now())
	n, err := j.purger.Purge(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	j.log.Info().Int64("removed", n).Time("cutoff", cutoff).Msg("retention purge complete")
	return n, nil
}

// Run blocks, purging at every scheduled time until ctx is done.
func (j *Job) Run(ctx context.Context) error {
	j.log.Info().Str("schedule", j.spec).Dur("keep", j.keep).Msg("retention scheduled")

	for {
		now := j.now()
		next := j.Next(now)
		j.log.Debug().Time("next", next).Msg("next retention run")

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if _, err := j.RunOnce(ctx); err != nil {
			j.log.Error().Err(err).Msg("retention purge failed")
		}
	}
}
