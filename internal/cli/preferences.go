package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mfocus/internal/domain"
)

var trackingCmd = &cobra.Command{
	Use:       "tracking [on|off|status]",
	Short:     "Pause or resume recording",
	Long:      `Show or change whether mfocus record accepts observations.`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off", "status"},
	RunE:      runTracking,
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change distraction and whitelist sites",
	Long: `Distraction sites are always ranked as disruptors whatever their category.
Whitelisted sites are never ranked. Both match as case-insensitive substrings.

Examples:
  mfocus settings
  mfocus settings --distraction reddit.com,news.ycombinator.com
  mfocus settings --whitelist youtube.com/kids --distraction ""`,
	Args: cobra.NoArgs,
	RunE: runSettings,
}

var (
	settingsDistraction []string
	settingsWhitelist   []string
)

func init() {
	rootCmd.AddCommand(trackingCmd, settingsCmd)

	settingsCmd.Flags().StringSliceVar(&settingsDistraction, "distraction", nil, "Replace the distraction sites (comma separated)")
	settingsCmd.Flags().StringSliceVar(&settingsWhitelist, "whitelist", nil, "Replace the whitelisted sites (comma separated)")
}

func runTracking(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	action := "status"
	if len(args) == 1 {
		action = args[0]
	}
	if action != "status" {
		if err := app.writable(); err != nil {
			return err
		}
		if err := app.Service.SetTracking(ctx, action == "on"); err != nil {
			return err
		}
	}

	enabled, err := app.Service.Tracking(ctx)
	if err != nil {
		return err
	}
	if enabled {
		fmt.Fprintln(out, "Tracking is on")
	} else {
		fmt.Fprintln(out, "Tracking is off")
	}
	return nil
}

func runSettings(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	settings, err := app.Service.Settings(ctx)
	if err != nil {
		return err
	}

	distraction, whitelist := cmd.Flags().Changed("distraction"), cmd.Flags().Changed("whitelist")
	if distraction || whitelist {
		if err := app.writable(); err != nil {
			return err
		}
		if distraction {
			settings.DistractionSites = settingsDistraction
		}
		if whitelist {
			settings.WhitelistSites = settingsWhitelist
		}
		if settings, err = app.Service.SaveSettings(ctx, settings); err != nil {
			return err
		}
	}

	printSettings(cmd, settings)
	return nil
}

func printSettings(cmd *cobra.Command, s domain.Settings) {
	out := cmd.OutOrStdout()
	list := func(sites []string) string {
		if len(sites) == 0 {
			return "(none)"
		}
		return strings.Join(sites, ", ")
	}
	fmt.Fprintf(out, "Distraction sites: %s\n", list(s.DistractionSites))
	fmt.Fprintf(out, "Whitelisted sites: %s\n", list(s.WhitelistSites))
}
