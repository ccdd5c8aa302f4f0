package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mfocus/internal/infrastructure/config"
	"github.com/emiliopalmerini/mfocus/internal/logger"
)

// annotationNoApp marks commands that build their own dependencies.
const annotationNoApp = "mfocus/no-app"

var rootCmd = &cobra.Command{
	Use:   "mfocus",
	Short: "Time-tracking analytics: where did the day go",
	Long: `mfocus stores activity observations (window and site focus intervals),
classifies them into categories with an ordered rule table, and reports
tracked time per hour, day, week or month along with category breakdowns,
top disruptors, daily timelines and heatmaps.

Observations live in a local libsql database (optionally an embedded replica of
a Turso primary). Pass --input to analyze a JSONL file without touching it.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupApp,
}

// app is built before every command that needs it.
var app *AppContext

var (
	inputFile string
	logLevel  string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&inputFile, "input", "i", "", "Analyze observations from a JSONL file instead of the database")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error, off); overrides MFOCUS_LOG_LEVEL")
}

func setupApp(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[annotationNoApp] == "true" {
		return nil
	}
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := NewAppContext(cmd.Context(), cfg, log, AppOptions{Input: inputFile})
	if err != nil {
		return err
	}
	app = a
	return nil
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	log := logger.New(logger.Options{
		Level:   level,
		Format:  cfg.Log.Format,
		Service: "mfocus",
	})
	return cfg, log, nil
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if app != nil {
		if cerr := app.Close(); cerr != nil {
			fmt.Fprintln(os.Stderr, "warning:", cerr)
		}
		app = nil
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
