package analytics_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/emiliopalmerini/mfocus/internal/analytics"
	"github.com/emiliopalmerini/mfocus/internal/classifier"
	"github.com/emiliopalmerini/mfocus/internal/domain"
	"github.com/emiliopalmerini/mfocus/internal/eventstore"
)

var base = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func at(sec int) time.Time { return base.Add(time.Duration(sec) * time.Second) }

func newClassifier(t *testing.T) *classifier.Classifier {
	t.Helper()
	set, err := domain.NewCategorySet([]domain.Category{
		{Name: "Video Streaming", Color: "#F59E0B", Distraction: true},
		{Name: "Coding/Programming", Color: "#2563EB"},
	})
	if err != nil {
		t.Fatalf("NewCategorySet() error: %v", err)
	}
	c, err := classifier.New(set, 1, []domain.Rule{
		{Pattern: "youtube", Category: "Video Streaming"},
		{Pattern: "github", Category: "Coding/Programming"},
	})
	if err != nil {
		t.Fatalf("classifier.New() error: %v", err)
	}
	return c
}

type fakeRuleRepo struct {
	mu      sync.Mutex
	version uint64
	rules   []domain.Rule
	err     error
}

func (f *fakeRuleRepo) Load(context.Context) (domain.RuleTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.RuleTable{Version: f.version, Rules: f.rules}, nil
}

func (f *fakeRuleRepo) Replace(_ context.Context, expected uint64, rules []domain.Rule) (domain.RuleTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.RuleTable{}, f.err
	}
	if f.version != expected {
		return domain.RuleTable{}, domain.ErrRuleTableConflict
	}
	f.version++
	f.rules = rules
	return domain.RuleTable{Version: f.version, Rules: rules}, nil
}

type recordingMetrics struct {
	mu       sync.Mutex
	appended map[string]time.Duration
	queries  []string
	swaps    []string
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{appended: map[string]time.Duration{}}
}

func (m *recordingMetrics) ObservationAppended(_ context.Context, category string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appended[category] += d
}

func (m *recordingMetrics) QueryCompleted(_ context.Context, op string, _ time.Duration, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, op)
}

func (m *recordingMetrics) RulesSwapped(_ context.Context, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.swaps = append(m.swaps, outcome)
}

func (m *recordingMetrics) Close(context.Context) error { return nil }

func newService(t *testing.T, opts ...analytics.Option) (*analytics.Service, *eventstore.Memory) {
	t.Helper()
	store := eventstore.NewMemory()
	opts = append([]analytics.Option{analytics.WithLocation(time.UTC)}, opts...)
	return analytics.NewService(store, newClassifier(t), opts...), store
}

func TestService_RecordAndOverview(t *testing.T) {
	ctx := context.Background()
	metrics := newRecordingMetrics()
	svc, _ := newService(t, analytics.WithMetrics(metrics))

	for _, obs := range []domain.Observation{
		{Start: at(0), End: at(3600), Source: "youtube.com"},
		{Start: at(3600), End: at(7200), Source: "github.com"},
	} {
		if _, err := svc.Record(ctx, obs); err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}

	ov, err := svc.Overview(ctx, domain.TimeRange{Start: at(0), End: at(7200)}, domain.GranularityHour)
	if err != nil {
		t.Fatalf("Overview() error: %v", err)
	}
	if ov.Total != 2*time.Hour {
		t.Errorf("Total = %v, want 2h", ov.Total)
	}
	want := []map[string]time.Duration{
		{"Video Streaming": time.Hour},
		{"Coding/Programming": time.Hour},
	}
	for i, b := range ov.Buckets {
		if diff := cmp.Diff(want[i], b.PerCategory); diff != "" {
			t.Errorf("bucket %d mismatch (-want +got):\n%s", i, diff)
		}
	}

	wantAppended := map[string]time.Duration{"Video Streaming": time.Hour, "Coding/Programming": time.Hour}
	if diff := cmp.Diff(wantAppended, metrics.appended); diff != "" {
		t.Errorf("appended metrics mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"overview"}, metrics.queries); diff != "" {
		t.Errorf("query metrics mismatch (-want +got):\n%s", diff)
	}
}

func TestService_RecordInvalidInterval(t *testing.T) {
	svc, store := newService(t)
	_, err := svc.Record(context.Background(), domain.Observation{Start: at(10), End: at(10), Source: "x"})
	if !errors.Is(err, domain.ErrInvalidInterval) {
		t.Fatalf("Record() error = %v, want ErrInvalidInterval", err)
	}
	if store.Len() != 0 {
		t.Errorf("store has %d observations, want 0", store.Len())
	}
}

func TestService_TrackingDisabled(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	if err := svc.SetTracking(ctx, false); err != nil {
		t.Fatalf("SetTracking() error: %v", err)
	}
	_, err := svc.Record(ctx, domain.Observation{Start: at(0), End: at(60), Source: "github.com"})
	if !errors.Is(err, domain.ErrTrackingDisabled) {
		t.Fatalf("Record() error = %v, want ErrTrackingDisabled", err)
	}

	seq := func(yield func(domain.Observation, error) bool) {
		yield(domain.Observation{Start: at(0), End: at(60), Source: "github.com"}, nil)
	}
	n, err := svc.Import(ctx, seq)
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if n != 1 || store.Len() != 1 {
		t.Errorf("Import() stored %d (store len %d), want 1", n, store.Len())
	}
}

func TestService_ImportStopsOnError(t *testing.T) {
	svc, store := newService(t)
	boom := errors.New("bad line")
	seq := func(yield func(domain.Observation, error) bool) {
		if !yield(domain.Observation{Start: at(0), End: at(60), Source: "a"}, nil) {
			return
		}
		if !yield(domain.Observation{}, boom) {
			return
		}
		yield(domain.Observation{Start: at(60), End: at(120), Source: "b"}, nil)
	}

	n, err := svc.Import(context.Background(), seq)
	if !errors.Is(err, boom) {
		t.Fatalf("Import() error = %v, want %v", err, boom)
	}
	if n != 1 || store.Len() != 1 {
		t.Errorf("Import() = %d (store len %d), want 1", n, store.Len())
	}
}

func TestService_TopDisruptorsUsesSettings(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	for i, src := range []string{"youtube.com", "reddit.com", "reddit.com", "github.com", "youtube.com/kids"} {
		obs := domain.Observation{Start: at(i * 100), End: at(i*100 + 50), Source: src}
		if _, err := svc.Record(ctx, obs); err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}
	if _, err := svc.SaveSettings(ctx, domain.Settings{
		DistractionSites: []string{" Reddit.com "},
		WhitelistSites:   []string{"youtube.com/kids"},
	}); err != nil {
		t.Fatalf("SaveSettings() error: %v", err)
	}

	got, err := svc.TopDisruptors(ctx, domain.TimeRange{Start: at(0), End: at(1000)}, 10, true)
	if err != nil {
		t.Fatalf("TopDisruptors() error: %v", err)
	}
	var sources []string
	for _, d := range got {
		sources = append(sources, d.Source)
	}
	if diff := cmp.Diff([]string{"reddit.com", "youtube.com"}, sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}

	all, err := svc.TopDisruptors(ctx, domain.TimeRange{Start: at(0), End: at(1000)}, 10, false)
	if err != nil {
		t.Fatalf("TopDisruptors() error: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("unfiltered ranking has %d sources, want 4", len(all))
	}
}

func TestService_HeatmapUnknownCategory(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Heatmap(context.Background(), base, 7, "Knitting")
	if !errors.Is(err, domain.ErrUnknownCategory) {
		t.Fatalf("Heatmap() error = %v, want ErrUnknownCategory", err)
	}
}

func TestService_UpdateRulesInMemory(t *testing.T) {
	ctx := context.Background()
	metrics := newRecordingMetrics()
	svc, _ := newService(t, analytics.WithMetrics(metrics))

	rules := []domain.Rule{{Pattern: "github", Category: "Video Streaming"}}
	table, err := svc.UpdateRules(ctx, 1, rules)
	if err != nil {
		t.Fatalf("UpdateRules() error: %v", err)
	}
	if table.Version != 2 {
		t.Errorf("Version = %d, want 2", table.Version)
	}
	if got := svc.Classify("github.com").Name; got != "Video Streaming" {
		t.Errorf("Classify() = %q after update, want Video Streaming", got)
	}

	if _, err := svc.UpdateRules(ctx, 1, rules); !errors.Is(err, domain.ErrRuleTableConflict) {
		t.Errorf("stale UpdateRules() error = %v, want ErrRuleTableConflict", err)
	}
	if _, err := svc.UpdateRules(ctx, 2, []domain.Rule{{Pattern: "x", Category: "Nope"}}); !errors.Is(err, domain.ErrUnknownCategory) {
		t.Errorf("invalid UpdateRules() error = %v, want ErrUnknownCategory", err)
	}

	want := []string{analytics.OutcomeApplied, analytics.OutcomeConflict, analytics.OutcomeInvalid}
	if diff := cmp.Diff(want, metrics.swaps); diff != "" {
		t.Errorf("swap outcomes mismatch (-want +got):\n%s", diff)
	}
}

func TestService_UpdateRulesPersisted(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRuleRepo{version: 1}
	svc, _ := newService(t, analytics.WithRuleRepository(repo))

	rules := []domain.Rule{{Pattern: "youtube", Category: "Coding/Programming"}}
	table, err := svc.UpdateRules(ctx, 1, rules)
	if err != nil {
		t.Fatalf("UpdateRules() error: %v", err)
	}
	if table.Version != 2 || repo.version != 2 {
		t.Errorf("versions = %d (repo %d), want 2", table.Version, repo.version)
	}
	if got := svc.Rules().Version; got != 2 {
		t.Errorf("Rules().Version = %d, want 2", got)
	}

	repo.err = errors.New("disk full")
	if _, err := svc.UpdateRules(ctx, 2, rules); err == nil {
		t.Fatal("UpdateRules() succeeded with failing repository")
	}
	if got := svc.Rules().Version; got != 2 {
		t.Errorf("Rules().Version = %d after failed update, want 2", got)
	}
}

func TestService_UpdateRulesConcurrent(t *testing.T) {
	svc, _ := newService(t, analytics.WithRuleRepository(&fakeRuleRepo{version: 1}))

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.UpdateRules(context.Background(), 1, []domain.Rule{{Pattern: "a", Category: "Video Streaming"}})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case !errors.Is(err, domain.ErrRuleTableConflict):
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("%d writers succeeded, want exactly 1", ok)
	}
}

func TestService_Dashboard(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	if _, err := svc.Record(ctx, domain.Observation{Start: at(3600), End: at(7200), Source: "youtube.com"}); err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	day := domain.Day(base, time.UTC)
	d, err := svc.Dashboard(ctx, analytics.DashboardQuery{Range: day, DisruptorLimit: 5})
	if err != nil {
		t.Fatalf("Dashboard() error: %v", err)
	}
	if d.Overview.Granularity != domain.GranularityHour || len(d.Overview.Buckets) != 24 {
		t.Errorf("overview = %s with %d buckets, want hour with 24", d.Overview.Granularity, len(d.Overview.Buckets))
	}
	if len(d.Categories) != 1 || d.Categories[0].Percent != 100 {
		t.Errorf("categories = %+v, want one at 100%%", d.Categories)
	}
	if len(d.Disruptors) != 1 || d.Disruptors[0].Source != "youtube.com" {
		t.Errorf("disruptors = %+v, want youtube.com", d.Disruptors)
	}
	if len(d.Timeline) != 3 {
		t.Errorf("timeline has %d segments, want 3", len(d.Timeline))
	}

	if _, err := svc.Dashboard(ctx, analytics.DashboardQuery{Range: domain.TimeRange{Start: base, End: base}}); !errors.Is(err, domain.ErrInvalidRange) {
		t.Errorf("Dashboard(empty) error = %v, want ErrInvalidRange", err)
	}
}

func TestService_Purge(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	for _, obs := range []domain.Observation{
		{Start: at(0), End: at(60), Source: "a"},
		{Start: at(100), End: at(200), Source: "b"},
	} {
		if _, err := svc.Record(ctx, obs); err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}
	n, err := svc.Purge(ctx, at(60))
	if err != nil {
		t.Fatalf("Purge() error: %v", err)
	}
	if n != 1 || store.Len() != 1 {
		t.Errorf("Purge() = %d (store len %d), want 1", n, store.Len())
	}
}
