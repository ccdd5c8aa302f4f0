package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mfocus/internal/domain"
	"github.com/emiliopalmerini/mfocus/internal/util"
)

// now is the clock reports resolve periods against.
var now = time.Now

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show tracked time per window",
	Long: `Show tracked time split into hour, day, week or month windows.

Every window in the range is listed, including empty ones.

Examples:
  mfocus overview                          # Today, hourly
  mfocus overview --period week            # This week, daily
  mfocus overview -p 30d -g week           # Last 30 days, weekly
  mfocus overview --from 2025-03-01 --to 2025-04-01 --json`,
	RunE: runOverview,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Show tracked time per category",
	Long: `Show the category breakdown for a range, largest first.

Examples:
  mfocus categories                # Today
  mfocus categories --period month`,
	RunE: runCategories,
}

var disruptorsCmd = &cobra.Command{
	Use:   "disruptors",
	Short: "Rank the sources that interrupted you most",
	Long: `Rank sources by how often they appeared, then by time spent.

By default only distraction categories and your distraction sites are
listed, and whitelisted sites are skipped. Use --all to rank every source.

Examples:
  mfocus disruptors --period week
  mfocus disruptors --all --limit 20`,
	RunE: runDisruptors,
}

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show one day as category segments",
	Long: `Show the day as consecutive segments covering all 24 hours.
Untracked time is reported as Idle.

Examples:
  mfocus timeline                  # Today
  mfocus timeline --day 2025-03-10`,
	RunE: runTimeline,
}

var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Show hour-of-day activity over recent days",
	Long: `Show how much of each hour was tracked over the last days.

Examples:
  mfocus heatmap                         # Last 7 days
  mfocus heatmap --days 14 --category "Social Media"`,
	RunE: runHeatmap,
}

var weeksCmd = &cobra.Command{
	Use:   "weeks",
	Short: "Show daily totals grouped by week",
	Long: `Show day totals grouped into Monday-based weeks.

Examples:
  mfocus weeks                     # This month
  mfocus weeks --period 90d`,
	RunE: runWeeks,
}

// Flags
var (
	overviewRange   rangeFlags
	overviewGran    domain.Granularity
	overviewJSON    bool
	categoriesRange rangeFlags
	categoriesJSON  bool
	disruptorsRange rangeFlags
	disruptorsLimit int
	disruptorsAll   bool
	disruptorsJSON  bool
	timelineDay     string
	timelineJSON    bool
	heatmapDay      string
	heatmapDays     int
	heatmapCategory string
	heatmapJSON     bool
	weeksRange      rangeFlags
	weeksJSON       bool
)

func init() {
	rootCmd.AddCommand(overviewCmd, categoriesCmd, disruptorsCmd, timelineCmd, heatmapCmd, weeksCmd)

	overviewRange.register(overviewCmd, "today")
	overviewCmd.Flags().VarP(&overviewGran, "granularity", "g", "Window size: hour, day, week, month (default depends on the range)")
	overviewCmd.Flags().BoolVar(&overviewJSON, "json", false, "Print JSON")

	categoriesRange.register(categoriesCmd, "today")
	categoriesCmd.Flags().BoolVar(&categoriesJSON, "json", false, "Print JSON")

	disruptorsRange.register(disruptorsCmd, "today")
	disruptorsCmd.Flags().IntVarP(&disruptorsLimit, "limit", "n", 10, "Maximum number of sources")
	disruptorsCmd.Flags().BoolVar(&disruptorsAll, "all", false, "Rank every source, not only distractions")
	disruptorsCmd.Flags().BoolVar(&disruptorsJSON, "json", false, "Print JSON")

	timelineCmd.Flags().StringVarP(&timelineDay, "day", "d", "", "Day to show (YYYY-MM-DD, default today)")
	timelineCmd.Flags().BoolVar(&timelineJSON, "json", false, "Print JSON")

	heatmapCmd.Flags().StringVarP(&heatmapDay, "day", "d", "", "Last day to include (YYYY-MM-DD, default today)")
	heatmapCmd.Flags().IntVar(&heatmapDays, "days", 7, "Number of days")
	heatmapCmd.Flags().StringVarP(&heatmapCategory, "category", "c", "", "Restrict to one category")
	heatmapCmd.Flags().BoolVar(&heatmapJSON, "json", false, "Print JSON")

	weeksRange.register(weeksCmd, "month")
	weeksCmd.Flags().BoolVar(&weeksJSON, "json", false, "Print JSON")
}

func dayFlag(s string) (time.Time, error) {
	if s == "" {
		return now(), nil
	}
	return util.ParseDate(s, app.Location)
}

func runOverview(cmd *cobra.Command, args []string) error {
	r, err := overviewRange.resolve(now(), app.Location)
	if err != nil {
		return err
	}
	g := overviewGran
	if g == "" {
		g = util.DefaultGranularity(r)
	}

	ov, err := app.Service.Overview(cmd.Context(), r, g)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if overviewJSON {
		return printJSON(out, ov)
	}

	printRange(out, r)
	var peak time.Duration
	for _, b := range ov.Buckets {
		peak = max(peak, b.Total)
	}
	for _, b := range ov.Buckets {
		frac := 0.0
		if peak > 0 {
			frac = float64(b.Total) / float64(peak)
		}
		fmt.Fprintf(out, "%-16s  %s  %8s\n", windowLabel(b.WindowStart.In(app.Location), g), bar(frac, 30), util.FormatDuration(b.Total))
	}
	fmt.Fprintf(out, "\nTotal tracked: %s across %d %s windows\n", util.FormatDuration(ov.Total), len(ov.Buckets), g)
	return nil
}

func windowLabel(t time.Time, g domain.Granularity) string {
	switch g {
	case domain.GranularityHour:
		return t.Format("Mon 02 15:04")
	case domain.GranularityDay:
		return t.Format("Mon 2006-01-02")
	case domain.GranularityWeek:
		return "week of " + t.Format("01-02")
	default:
		return t.Format("January 2006")
	}
}

func runCategories(cmd *cobra.Command, args []string) error {
	r, err := categoriesRange.resolve(now(), app.Location)
	if err != nil {
		return err
	}
	shares, err := app.Service.CategoryBreakdown(cmd.Context(), r)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if categoriesJSON {
		return printJSON(out, shares)
	}

	printRange(out, r)
	if len(shares) == 0 {
		fmt.Fprintln(out, "No activity tracked.")
		return nil
	}
	for _, s := range shares {
		mark := " "
		if s.Category.Distraction {
			mark = "!"
		}
		fmt.Fprintf(out, "%s %-26s %s %8s %7s\n", mark, s.Category.Name, bar(s.Percent/100, 25), util.FormatDuration(s.Total), util.FormatPercent(s.Percent))
	}
	return nil
}

func runDisruptors(cmd *cobra.Command, args []string) error {
	r, err := disruptorsRange.resolve(now(), app.Location)
	if err != nil {
		return err
	}
	ranking, err := app.Service.TopDisruptors(cmd.Context(), r, disruptorsLimit, !disruptorsAll)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if disruptorsJSON {
		return printJSON(out, ranking)
	}

	printRange(out, r)
	if len(ranking) == 0 {
		fmt.Fprintln(out, "No disruptors.")
		return nil
	}
	fmt.Fprintf(out, "%-3s %-40s %-22s %6s %9s\n", "#", "SOURCE", "CATEGORY", "TIMES", "TIME")
	for i, d := range ranking {
		fmt.Fprintf(out, "%-3d %-40s %-22s %6d %9s\n", i+1, truncate(d.Source, 40), truncate(d.Category.Name, 22), d.Occurrences, util.FormatDuration(d.Total))
	}
	return nil
}

func runTimeline(cmd *cobra.Command, args []string) error {
	day, err := dayFlag(timelineDay)
	if err != nil {
		return err
	}
	segments, err := app.Service.DailyTimeline(cmd.Context(), day)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if timelineJSON {
		return printJSON(out, segments)
	}

	fmt.Fprintf(out, "Timeline for %s\n\n", util.FormatDateISO(day.In(app.Location)))
	for _, s := range segments {
		fmt.Fprintf(out, "%s–%s  %-26s %8s\n", util.FormatOffset(s.StartOffset), util.FormatOffset(s.EndOffset), s.Category.Name, util.FormatDuration(s.Duration()))
	}
	return nil
}

func runHeatmap(cmd *cobra.Command, args []string) error {
	last, err := dayFlag(heatmapDay)
	if err != nil {
		return err
	}
	days, err := app.Service.Heatmap(cmd.Context(), last, heatmapDays, heatmapCategory)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if heatmapJSON {
		return printJSON(out, days)
	}

	fmt.Fprintf(out, "%-15s%s\n", "", "0     6     12    18")
	for _, d := range days {
		var b strings.Builder
		for _, c := range d.Cells {
			b.WriteRune(heatGlyph(c.Intensity))
		}
		fmt.Fprintf(out, "%-15s%s\n", d.Day.Format("Mon 2006-01-02"), b.String())
	}
	fmt.Fprintln(out, "\n  · none  ░ low  ▒ medium  ▓ high  █ full")
	return nil
}

// heatGlyph shades an intensity; the cut points are display choices.
func heatGlyph(intensity float64) rune {
	switch {
	case intensity <= 0:
		return '·'
	case intensity < 0.3:
		return '░'
	case intensity <= 0.6:
		return '▒'
	case intensity < 1:
		return '▓'
	default:
		return '█'
	}
}

func runWeeks(cmd *cobra.Command, args []string) error {
	r, err := weeksRange.resolve(now(), app.Location)
	if err != nil {
		return err
	}
	weeks, err := app.Service.WeeklyBreakdown(cmd.Context(), r)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if weeksJSON {
		return printJSON(out, weeks)
	}

	printRange(out, r)
	for _, w := range weeks {
		fmt.Fprintf(out, "Week of %s  %s\n", util.FormatDateISO(w.WeekStart.In(app.Location)), util.FormatDuration(w.Total))
		for _, d := range w.Days {
			fmt.Fprintf(out, "  %s  %8s\n", d.WindowStart.In(app.Location).Format("Mon 01-02"), util.FormatDuration(d.Total))
		}
	}
	return nil
}
