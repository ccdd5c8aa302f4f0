package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mfocus/internal/domain"
	"github.com/emiliopalmerini/mfocus/internal/eventstore"
	"github.com/emiliopalmerini/mfocus/internal/util"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record one activity observation",
	Long: `Record a focus interval for a source such as a window title or URL.

Recording is refused while tracking is off (see mfocus tracking).

Examples:
  mfocus record --source "https://github.com/x/y" --start "2025-03-10 09:00" --end "2025-03-10 09:45"
  mfocus record --source "YouTube - Music" --start "2025-03-10 12:00" --duration 15m`,
	Args: cobra.NoArgs,
	RunE: runRecord,
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import observations from JSONL",
	Long: `Import observations, one JSON object per line:

  {"start":"2025-03-10T09:00:00Z","end":"2025-03-10T09:45:00Z","source":"github.com","title":"PR review"}
  {"start":"2025-03-10T10:00:00Z","duration_seconds":300,"source":"youtube.com"}

Reads stdin when the file is "-" or omitted. Imports ignore the tracking switch.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export observations as JSONL",
	Long: `Write the observations intersecting a range as JSONL.

Examples:
  mfocus export --period month > march.jsonl
  mfocus export --from 2025-01-01 --to 2025-04-01 -o q1.jsonl`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete old observations",
	Long: `Delete every observation that ended before a cutoff. This cannot be undone.

Without --before, the cutoff is MFOCUS_RETENTION_DAYS days ago.

Examples:
  mfocus purge --before 2024-01-01
  mfocus purge --older-than 90`,
	Args: cobra.NoArgs,
	RunE: runPurge,
}

// Flags
var (
	recordSource   string
	recordTitle    string
	recordStart    string
	recordEnd      string
	recordDuration time.Duration
	exportRange    rangeFlags
	exportOutput   string
	purgeBefore    string
	purgeOlderThan int
)

func init() {
	rootCmd.AddCommand(recordCmd, importCmd, exportCmd, purgeCmd)

	recordCmd.Flags().StringVarP(&recordSource, "source", "s", "", "Source identifier (window title, URL)")
	recordCmd.Flags().StringVar(&recordTitle, "title", "", "Optional display title")
	recordCmd.Flags().StringVar(&recordStart, "start", "", "Start time")
	recordCmd.Flags().StringVar(&recordEnd, "end", "", "End time (exclusive)")
	recordCmd.Flags().DurationVar(&recordDuration, "duration", 0, "Duration, instead of --end")
	_ = recordCmd.MarkFlagRequired("source")
	_ = recordCmd.MarkFlagRequired("start")
	recordCmd.MarkFlagsMutuallyExclusive("end", "duration")

	exportRange.register(exportCmd, "month")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")

	purgeCmd.Flags().StringVar(&purgeBefore, "before", "", "Delete observations that ended before this date")
	purgeCmd.Flags().IntVar(&purgeOlderThan, "older-than", 0, "Delete observations older than this many days")
	purgeCmd.MarkFlagsMutuallyExclusive("before", "older-than")
}

func runRecord(cmd *cobra.Command, args []string) error {
	if err := app.writable(); err != nil {
		return err
	}
	start, err := util.ParseTime(recordStart, app.Location)
	if err != nil {
		return err
	}
	var end time.Time
	switch {
	case recordEnd != "":
		if end, err = util.ParseTime(recordEnd, app.Location); err != nil {
			return err
		}
	case recordDuration > 0:
		end = start.Add(recordDuration)
	default:
		return fmt.Errorf("either --end or --duration is required")
	}

	obs, err := app.Service.Record(cmd.Context(), domain.Observation{
		Start:  start,
		End:    end,
		Source: recordSource,
		Title:  recordTitle,
	})
	if err != nil {
		return err
	}

	category := app.Service.Classify(obs.Source)
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s of %s as %s (%s)\n", util.FormatDuration(obs.Duration()), obs.Source, category.Name, obs.ID)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	if err := app.writable(); err != nil {
		return err
	}
	var r io.Reader = cmd.InOrStdin()
	name := "stdin"
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()
		r, name = f, args[0]
	}

	n, err := app.Service.Import(cmd.Context(), eventstore.ReadJSONL(r))
	if err != nil {
		return fmt.Errorf("import stopped after %d observations: %w", n, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d observations from %s\n", n, name)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	r, err := exportRange.resolve(now(), app.Location)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOutput, err)
		}
		defer f.Close()
		w = f
	}

	n, err := eventstore.WriteJSONL(w, app.Service.Observations(cmd.Context(), r))
	if err != nil {
		return err
	}
	if exportOutput != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d observations to %s\n", n, exportOutput)
	}
	return nil
}

func runPurge(cmd *cobra.Command, args []string) error {
	if err := app.writable(); err != nil {
		return err
	}
	cutoff, err := purgeCutoff()
	if err != nil {
		return err
	}

	n, err := app.Service.Purge(cmd.Context(), cutoff)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d observations that ended before %s\n", n, util.FormatDateTime(cutoff))
	return nil
}

func purgeCutoff() (time.Time, error) {
	switch {
	case purgeBefore != "":
		return util.ParseTime(purgeBefore, app.Location)
	case purgeOlderThan > 0:
		return now().AddDate(0, 0, -purgeOlderThan), nil
	case purgeOlderThan < 0:
		return time.Time{}, fmt.Errorf("--older-than must be positive")
	}
	keep := app.Config.RetentionWindow()
	if keep <= 0 {
		return time.Time{}, fmt.Errorf("retention is disabled; pass --before or --older-than")
	}
	return now().Add(-keep), nil
}
