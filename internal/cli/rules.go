package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mfocus/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage classification rules",
	Long: `Rules map sources to categories. They are evaluated in order and the
first match wins; unmatched sources fall into Other. Patterns match
case-insensitively, either as a substring or as a regular expression.`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the rule table in effect",
	Args:  cobra.NoArgs,
	RunE:  runRulesList,
}

var rulesApplyCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Replace the rule table from a YAML file",
	Long: `Replace the whole rule table with the rules in a YAML file.

The update is rejected if the table changed since --expected-version
(default: the version currently loaded).

Example file:
  rules:
    - pattern: github.com/.*/pull/
      kind: regex
      category: Code Review
    - pattern: youtube
      category: Video Streaming`,
	Args: cobra.ExactArgs(1),
	RunE: runRulesApply,
}

var rulesTestCmd = &cobra.Command{
	Use:   "test <source>...",
	Short: "Show which category each source falls into",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRulesTest,
}

var rulesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print categories and the current rules as YAML",
	Args:  cobra.NoArgs,
	RunE:  runRulesExport,
}

var rulesExpectedVersion int64

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesApplyCmd, rulesTestCmd, rulesExportCmd)

	rulesApplyCmd.Flags().Int64Var(&rulesExpectedVersion, "expected-version", -1, "Version the update is based on (default: current)")
}

func runRulesList(cmd *cobra.Command, args []string) error {
	table := app.Service.Rules()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Rule table version %d (%d rules)\n\n", table.Version, len(table.Rules))
	for i, r := range table.Rules {
		fmt.Fprintf(out, "%3d. %-9s %-40s → %s\n", i+1, r.Kind, truncate(r.Pattern, 40), r.Category)
	}
	fmt.Fprintf(out, "%3s  %-9s %-40s → %s\n", "", "", "(no match)", "Other")
	return nil
}

func runRulesApply(cmd *cobra.Command, args []string) error {
	if err := app.writable(); err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	file, err := rules.Parse(data)
	if err != nil {
		return err
	}

	expected := app.Service.Rules().Version
	if rulesExpectedVersion >= 0 {
		expected = uint64(rulesExpectedVersion)
	}

	table, err := app.Service.UpdateRules(cmd.Context(), expected, file.Rules)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rule table updated to version %d (%d rules)\n", table.Version, len(table.Rules))
	return nil
}

func runRulesTest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, source := range args {
		c := app.Service.Classify(source)
		flag := ""
		if c.Distraction {
			flag = " (distraction)"
		}
		fmt.Fprintf(out, "%s → %s%s\n", source, c.Name, flag)
	}
	return nil
}

func runRulesExport(cmd *cobra.Command, args []string) error {
	data, err := rules.Marshal(rules.File{
		Categories: app.Rules.Categories,
		Rules:      app.Service.Rules().Rules,
	})
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
