// Package analytics is the application service the CLI, dashboard and HTTP
// API share. It ties the observation store, classifier and aggregator
// together and owns rule updates and preferences.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/mfocus/internal/aggregator"
	"github.com/emiliopalmerini/mfocus/internal/domain"
	"github.com/emiliopalmerini/mfocus/internal/ports"
	"github.com/emiliopalmerini/mfocus/internal/util"
)

// Service provides time-tracking analytics.
type Service struct {
	store   ports.ObservationStore
	rules   RuleTable
	agg     *aggregator.Aggregator
	repo    ports.RuleRepository
	prefs   ports.PreferenceRepository
	metrics ports.MetricsExporter
	log     zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRuleRepository persists rule updates. Without one, updates only
// affect the running process.
func WithRuleRepository(repo ports.RuleRepository) Option {
	return func(s *Service) { s.repo = repo }
}

// WithPreferences sets the preference store. Defaults to MemoryPreferences.
func WithPreferences(prefs ports.PreferenceRepository) Option {
	return func(s *Service) {
		if prefs != nil {
			s.prefs = prefs
		}
	}
}

// WithMetrics sets the metrics exporter.
func WithMetrics(m ports.MetricsExporter) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithLocation sets the time zone for window boundaries.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.agg = aggregator.New(s.store, s.rules, aggregator.WithLocation(loc))
		}
	}
}

// NewService creates a new analytics service
func NewService(store ports.ObservationStore, rules RuleTable, opts ...Option) *Service {
	s := &Service{
		store:   store,
		rules:   rules,
		agg:     aggregator.New(store, rules),
		prefs:   NewMemoryPreferences(),
		metrics: nopMetrics{},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the time zone used for window boundaries.
func (s *Service) Location() *time.Location {
	return s.agg.Location()
}

func (s *Service) observe(ctx context.Context, op string, start time.Time, err error) {
	elapsed := time.Since(start)
	s.metrics.QueryCompleted(ctx, op, elapsed, err)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.Debug().Err(err).Str("op", op).Dur("elapsed", elapsed).Msg("query failed")
	}
}

// Overview returns per-window buckets over r.
func (s *Service) Overview(ctx context.Context, r domain.TimeRange, g domain.Granularity) (ov domain.Overview, err error) {
	defer func(start time.Time) { s.observe(ctx, "overview", start, err) }(time.Now())
	return s.agg.Overview(ctx, r, g)
}

// CategoryBreakdown returns category totals over r.
func (s *Service) CategoryBreakdown(ctx context.Context, r domain.TimeRange) (out []domain.CategoryShare, err error) {
	defer func(start time.Time) { s.observe(ctx, "categories", start, err) }(time.Now())
	return s.agg.CategoryBreakdown(ctx, r)
}

// TopDisruptors ranks sources over r. With distractionOnly, the saved
// distraction sites count as distractions and whitelisted sites are dropped.
func (s *Service) TopDisruptors(ctx context.Context, r domain.TimeRange, limit int, distractionOnly bool) (out []domain.Disruptor, err error) {
	defer func(start time.Time) { s.observe(ctx, "disruptors", start, err) }(time.Now())

	opts := aggregator.DisruptorOptions{Limit: limit, DistractionOnly: distractionOnly}
	if distractionOnly {
		settings, err := s.prefs.Settings(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		opts.Include = settings.DistractionSites
		opts.Exclude = settings.WhitelistSites
	}
	return s.agg.TopDisruptors(ctx, r, opts)
}

// DailyTimeline returns the gap-filled timeline of the local day containing day.
func (s *Service) DailyTimeline(ctx context.Context, day time.Time) (out []domain.TimelineSegment, err error) {
	defer func(start time.Time) { s.observe(ctx, "timeline", start, err) }(time.Now())
	return s.agg.DailyTimeline(ctx, day)
}

// Heatmap returns hour-of-day intensity for the days ending with last.
// An empty category covers all tracked time.
func (s *Service) Heatmap(ctx context.Context, last time.Time, days int, category string) (out []domain.HeatmapDay, err error) {
	defer func(start time.Time) { s.observe(ctx, "heatmap", start, err) }(time.Now())
	if category != "" {
		if _, ok := s.rules.CategorySet().Get(category); !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
		}
	}
	return s.agg.Heatmap(ctx, last, days, category)
}

// WeeklyBreakdown returns day buckets grouped by week over r.
func (s *Service) WeeklyBreakdown(ctx context.Context, r domain.TimeRange) (out []domain.WeekBreakdown, err error) {
	defer func(start time.Time) { s.observe(ctx, "weeks", start, err) }(time.Now())
	return s.agg.WeeklyBreakdown(ctx, r)
}

// Dashboard computes the dashboard views concurrently.
func (s *Service) Dashboard(ctx context.Context, q DashboardQuery) (Dashboard, error) {
	if err := q.Range.Validate(); err != nil {
		return Dashboard{}, err
	}
	if q.Day.IsZero() {
		q.Day = q.Range.Start
	}
	if q.Granularity == "" {
		q.Granularity = util.DefaultGranularity(q.Range)
	}

	d := Dashboard{Range: q.Range}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Overview, err = s.Overview(gctx, q.Range, q.Granularity)
		return err
	})
	g.Go(func() (err error) {
		d.Categories, err = s.CategoryBreakdown(gctx, q.Range)
		return err
	})
	g.Go(func() (err error) {
		d.Disruptors, err = s.TopDisruptors(gctx, q.Range, q.DisruptorLimit, true)
		return err
	})
	g.Go(func() (err error) {
		d.Timeline, err = s.DailyTimeline(gctx, q.Day)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

// Record appends an observation from the capture process. It fails with
// domain.ErrTrackingDisabled while tracking is paused.
func (s *Service) Record(ctx context.Context, obs domain.Observation) (domain.Observation, error) {
	enabled, err := s.prefs.Tracking(ctx)
	if err != nil {
		return domain.Observation{}, fmt.Errorf("failed to read tracking state: %w", err)
	}
	if !enabled {
		return domain.Observation{}, domain.ErrTrackingDisabled
	}
	return s.append(ctx, obs)
}

func (s *Service) append(ctx context.Context, obs domain.Observation) (domain.Observation, error) {
	stored, err := s.store.Append(ctx, obs)
	if err != nil {
		return domain.Observation{}, err
	}
	s.metrics.ObservationAppended(ctx, s.rules.ClassifySource(stored.Source).Name, stored.Duration())
	return stored, nil
}

// Import appends every observation in seq regardless of the tracking
// switch. It stops at the first error and reports how many were stored.
func (s *Service) Import(ctx context.Context, seq iter.Seq2[domain.Observation, error]) (int, error) {
	n := 0
	for obs, err := range seq {
		if err != nil {
			return n, err
		}
		if _, err := s.append(ctx, obs); err != nil {
			return n, fmt.Errorf("observation %d: %w", n+1, err)
		}
		n++
	}
	s.log.Info().Int("count", n).Msg("observations imported")
	return n, nil
}

// Observations streams raw observations intersecting r.
func (s *Service) Observations(ctx context.Context, r domain.TimeRange) iter.Seq2[domain.Observation, error] {
	return s.store.Query(ctx, r)
}

// Purge deletes observations that ended at or before the cutoff.
func (s *Service) Purge(ctx context.Context, before time.Time) (int64, error) {
	n, err := s.store.PurgeBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge observations: %w", err)
	}
	return n, nil
}

// Categories returns the configured categories.
func (s *Service) Categories() []domain.Category {
	return s.rules.CategorySet().All()
}

// Classify resolves the category of a source with the current rules.
func (s *Service) Classify(source string) domain.Category {
	return s.rules.ClassifySource(source)
}

// Rules returns the rule table in effect.
func (s *Service) Rules() domain.RuleTable {
	return s.rules.Table()
}

// UpdateRules replaces the rule table if it is still at expectedVersion.
// Concurrent writers racing on the same version see exactly one success;
// the others get domain.ErrRuleTableConflict.
func (s *Service) UpdateRules(ctx context.Context, expectedVersion uint64, rules []domain.Rule) (domain.RuleTable, error) {
	table, err := s.updateRules(ctx, expectedVersion, rules)
	switch {
	case err == nil:
		s.metrics.RulesSwapped(ctx, OutcomeApplied)
		s.log.Info().Uint64("version", table.Version).Int("rules", len(table.Rules)).Msg("rule table replaced")
	case errors.Is(err, domain.ErrRuleTableConflict):
		s.metrics.RulesSwapped(ctx, OutcomeConflict)
	case errors.Is(err, domain.ErrInvalidRule), errors.Is(err, domain.ErrUnknownCategory):
		s.metrics.RulesSwapped(ctx, OutcomeInvalid)
	default:
		s.metrics.RulesSwapped(ctx, OutcomeFailed)
	}
	return table, err
}

func (s *Service) updateRules(ctx context.Context, expectedVersion uint64, rules []domain.Rule) (domain.RuleTable, error) {
	rules, err := s.rules.Validate(rules)
	if err != nil {
		return domain.RuleTable{}, err
	}
	if s.repo == nil {
		return s.rules.Swap(expectedVersion, rules)
	}
	if current := s.rules.Table().Version; current != expectedVersion {
		return domain.RuleTable{}, fmt.Errorf("%w: expected version %d, current %d",
			domain.ErrRuleTableConflict, expectedVersion, current)
	}

	stored, err := s.repo.Replace(ctx, expectedVersion, rules)
	if err != nil {
		return domain.RuleTable{}, err
	}
	return s.rules.Install(expectedVersion, stored.Version, stored.Rules)
}

// Tracking reports whether Record accepts observations.
func (s *Service) Tracking(ctx context.Context) (bool, error) {
	return s.prefs.Tracking(ctx)
}

// SetTracking pauses or resumes recording.
func (s *Service) SetTracking(ctx context.Context, enabled bool) error {
	if err := s.prefs.SetTracking(ctx, enabled); err != nil {
		return fmt.Errorf("failed to save tracking state: %w", err)
	}
	s.log.Info().Bool("enabled", enabled).Msg("tracking toggled")
	return nil
}

// Settings returns the saved distraction and whitelist sites.
func (s *Service) Settings(ctx context.Context) (domain.Settings, error) {
	return s.prefs.Settings(ctx)
}

// SaveSettings normalizes and stores site settings.
func (s *Service) SaveSettings(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	settings = settings.Normalize()
	if err := s.prefs.SaveSettings(ctx, settings); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	return settings, nil
}

type nopMetrics struct{}

func (nopMetrics) ObservationAppended(context.Context, string, time.Duration)  {}
func (nopMetrics) QueryCompleted(context.Context, string, time.Duration, error) {}
func (nopMetrics) RulesSwapped(context.Context, string)                         {}
func (nopMetrics) Close(context.Context) error                                  { return nil }
