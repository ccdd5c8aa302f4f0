package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mfocus/internal/infrastructure/database"
	"github.com/emiliopalmerini/mfocus/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run database migrations",
	Long: `Run database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  mfocus migrate      # Run all pending migrations
  mfocus migrate 2    # Migrate to version 2
  mfocus migrate 0    # Rollback all migrations`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{annotationNoApp: "true"},
	RunE:        runMigrate,
}

var migrateStatusCmd = &cobra.Command{
	Use:         "status",
	Short:       "Show the current schema version",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoApp: "true"},
	RunE:        runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

func openMigrator() (*database.Client, *migrate.Migrator, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg.Database, database.Options{Ping: true})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, migrate.New(db.DB, log), nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	target := 0
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return fmt.Errorf("invalid version number: %s", args[0])
		}
		target = v
	}

	db, m, err := openMigrator()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := m.EnsureTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	current, dirty, err := m.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in dirty state at version %d, manual intervention required", current)
	}
	fmt.Fprintf(out, "Current version: %d\n", current)

	var count int
	switch {
	case len(args) == 0:
		count, err = m.Up(ctx, 0)
	case target > current:
		count, err = m.Up(ctx, target)
	case target < current:
		count, err = m.Down(ctx, target)
	default:
		fmt.Fprintln(out, "Already at target version")
		return nil
	}

	if db.Replica() {
		if serr := db.Sync(); serr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to sync migrations to remote: %v\n", serr)
		}
	}
	if err != nil {
		return err
	}

	if count == 0 {
		fmt.Fprintln(out, "No migrations to run")
		return nil
	}
	version, _, err := m.Version(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated to version %d (%d migrations applied)\n", version, count)
	return nil
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	db, m, err := openMigrator()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if err := m.EnsureTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	version, dirty, err := m.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	all, err := migrate.Load()
	if err != nil {
		return err
	}
	latest := 0
	if len(all) > 0 {
		latest = all[len(all)-1].Version
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Version: %d of %d\n", version, latest)
	if dirty {
		fmt.Fprintln(out, "State:   dirty (a migration failed part way)")
	} else {
		fmt.Fprintln(out, "State:   clean")
	}
	return nil
}
