package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	analyticstui "github.com/emiliopalmerini/mfocus/internal/analytics/inbound/tui"
	apptui "github.com/emiliopalmerini/mfocus/internal/app/tui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive terminal dashboard",
	Long: `Open the terminal dashboard with overview, categories, disruptors,
timeline and heatmap screens.

Keys: 1-5 switch screens, d/w/m pick today, this week or this month, q quits.`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

var dashboardPeriod string

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().StringVarP(&dashboardPeriod, "period", "p", "today", "Starting period (today, week, month, Nd)")
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	period, err := analyticstui.NewPeriod(dashboardPeriod, now(), app.Location)
	if err != nil {
		return err
	}

	program := tea.NewProgram(apptui.NewApp(app.Service, period, now),
		tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
