package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/emiliopalmerini/mfocus/internal/adapters/otel"
	"github.com/emiliopalmerini/mfocus/internal/adapters/turso"
	"github.com/emiliopalmerini/mfocus/internal/analytics"
	"github.com/emiliopalmerini/mfocus/internal/classifier"
	"github.com/emiliopalmerini/mfocus/internal/domain"
	"github.com/emiliopalmerini/mfocus/internal/eventstore"
	"github.com/emiliopalmerini/mfocus/internal/infrastructure/config"
	"github.com/emiliopalmerini/mfocus/internal/infrastructure/database"
	"github.com/emiliopalmerini/mfocus/internal/logger"
	"github.com/emiliopalmerini/mfocus/internal/migrate"
	"github.com/emiliopalmerini/mfocus/internal/ports"
	"github.com/emiliopalmerini/mfocus/internal/rules"
)

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	Config   *config.Config
	Log      zerolog.Logger
	Location *time.Location
	// DB is nil when observations come from a JSONL file.
	DB          *database.Client
	Repos       *turso.Repositories
	Store       ports.ObservationStore
	Classifier  *classifier.Classifier
	Service     *analytics.Service
	Metrics     ports.MetricsExporter
	Rules       rules.File
	InputFile   string
	Preferences ports.PreferenceRepository
}

// AppOptions selects how the AppContext is built.
type AppOptions struct {
	// Input analyzes a JSONL file in memory instead of the database.
	Input string
}

// NewAppContext creates an AppContext with all dependencies initialized.
func NewAppContext(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts AppOptions) (*AppContext, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	file, err := rules.Load(cfg.RulesFile)
	if err != nil {
		return nil, err
	}
	categories, err := file.CategorySet()
	if err != nil {
		return nil, err
	}

	a := &AppContext{
		Config:    cfg,
		Log:       log,
		Location:  loc,
		Rules:     file,
		InputFile: opts.Input,
		Metrics:   newMetrics(ctx, cfg, log),
	}

	svcOpts := []analytics.Option{
		analytics.WithLocation(loc),
		analytics.WithMetrics(a.Metrics),
		analytics.WithLogger(logger.Named(log, "analytics")),
	}

	if opts.Input != "" {
		err = a.openFile(ctx, categories)
	} else {
		err = a.openDatabase(ctx, categories)
	}
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if a.Repos != nil {
		svcOpts = append(svcOpts, analytics.WithRuleRepository(a.Repos.Rules))
	}

	svcOpts = append(svcOpts, analytics.WithPreferences(a.Preferences))
	a.Service = analytics.NewService(a.Store, a.Classifier, svcOpts...)
	return a, nil
}

func (a *AppContext) openFile(ctx context.Context, categories *domain.CategorySet) error {
	store, err := eventstore.OpenJSONL(ctx, a.InputFile)
	if err != nil {
		return err
	}
	a.Store = store
	a.Preferences = analytics.NewMemoryPreferences()
	a.Classifier, err = classifier.New(categories, 1, a.Rules.Rules)
	return err
}

func (a *AppContext) openDatabase(ctx context.Context, categories *domain.CategorySet) error {
	db, err := database.Open(a.Config.Database, database.Options{Ping: true})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	a.DB = db

	if err := migrate.RunAll(ctx, db.DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	a.Repos = turso.NewRepositories(db.DB)
	a.Store = a.Repos.Observations
	a.Preferences = a.Repos.Preferences

	table, err := seedRules(ctx, a.Repos.Rules, a.Rules.Rules)
	if err != nil {
		return err
	}
	a.Classifier, err = classifier.New(categories, table.Version, table.Rules)
	if err != nil {
		return fmt.Errorf("stored rules do not match the configured categories: %w", err)
	}
	return nil
}

// seedRules returns the stored rule table, storing defaults first when the
// database has none.
func seedRules(ctx context.Context, repo ports.RuleRepository, defaults []domain.Rule) (domain.RuleTable, error) {
	table, err := repo.Load(ctx)
	if err != nil {
		return domain.RuleTable{}, fmt.Errorf("failed to load rules: %w", err)
	}
	if table.Version > 0 {
		return table, nil
	}

	table, err = repo.Replace(ctx, 0, defaults)
	if errors.Is(err, domain.ErrRuleTableConflict) {
		// another process seeded first
		return repo.Load(ctx)
	}
	if err != nil {
		return domain.RuleTable{}, fmt.Errorf("failed to seed rules: %w", err)
	}
	return table, nil
}

func newMetrics(ctx context.Context, cfg *config.Config, log zerolog.Logger) ports.MetricsExporter {
	if !cfg.Otel.Enabled {
		return otel.NewNoOpExporter()
	}
	exp, err := otel.NewExporter(ctx, otel.FromConfig(cfg.Otel))
	if err != nil {
		log.Warn().Err(err).Msg("metrics disabled")
		return otel.NewNoOpExporter()
	}
	return exp
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	if a.Metrics != nil {
		errs = append(errs, a.Metrics.Close(ctx))
	}
	if a.DB != nil {
		if a.DB.Replica() {
			if err := a.DB.Sync(); err != nil {
				a.Log.Warn().Err(err).Msg("failed to sync replica")
			}
		}
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

// writable reports an error for commands that would change a JSONL snapshot.
func (a *AppContext) writable() error {
	if a.InputFile != "" {
		return fmt.Errorf("--input data is read-only; import it with `mfocus import %s`", a.InputFile)
	}
	return nil
}
