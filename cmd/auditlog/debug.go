package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/policy"
	"github.com/DikshantJo/code-review-sub002/pkg/cli"
)

var debugFlags struct {
	format     string
	level      string
	debugMode  bool
	categories []string
}

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Inspect the log policy",
	Long: `Inspect which events the configured log policy records.

Subcommands:
  show  - Print the configured policy
  test  - Print the verdict of every level for a category`,
}

var debugShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the configured log policy",
	Args:  cobra.NoArgs,
	RunE:  showDebugPolicy,
}

var debugTestCmd = &cobra.Command{
	Use:   "test CATEGORY",
	Short: "Test the log policy against a category",
	Long: `Print, for each level, whether an event of CATEGORY would be recorded.

The flags adjust the configured policy for this test only.

Examples:
  # Test the configured policy
  auditlog debug test ai-review

  # Test with debug mode on and a narrowed allow-list
  auditlog debug test github-api --debug-mode --category ai-review`,
	Args: cobra.ExactArgs(1),
	RunE: testDebugPolicy,
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugShowCmd, debugTestCmd)

	debugCmd.PersistentFlags().StringVar(&debugFlags.format, "format", "text", "output format: text, json")
	debugTestCmd.Flags().StringVar(&debugFlags.level, "level", "", "override the level threshold")
	debugTestCmd.Flags().BoolVar(&debugFlags.debugMode, "debug-mode", false, "enable debug mode for the test")
	debugTestCmd.Flags().StringSliceVar(&debugFlags.categories, "category", nil, "replace the category allow-list")
}

type policyView struct {
	policy.DebugPolicy
}

func (v policyView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Level: %s\n", v.Level)
	fmt.Fprintf(&sb, "Debug mode: %v\n", v.DebugMode)
	fmt.Fprintf(&sb, "Categories: %s", strings.Join(v.Categories, ", "))
	for _, f := range v.Filters {
		fmt.Fprintf(&sb, "\nFilter: %s %q", f.Type, f.Pattern)
	}
	return sb.String()
}

type testView struct {
	policy.TestResult
}

func (v testView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Category: %s\n", v.Category)
	sb.WriteString(policyView{v.Policy}.String())
	sb.WriteString("\n")
	for _, level := range audit.Levels {
		mark := "✗"
		if v.Levels[level] {
			mark = "✓"
		}
		fmt.Fprintf(&sb, "\n  %s %s", mark, level)
	}
	return sb.String()
}

func showDebugPolicy(cmd *cobra.Command, args []string) error {
	formatter, err := cli.NewFormatter(cli.OutputFormat(debugFlags.format))
	if err != nil {
		return err
	}
	return formatter.FormatTo(cmd.OutOrStdout(), policyView{policy.NewFilter(appConfig.Debug).Snapshot()})
}

func testDebugPolicy(cmd *cobra.Command, args []string) error {
	formatter, err := cli.NewFormatter(cli.OutputFormat(debugFlags.format))
	if err != nil {
		return err
	}

	filter := policy.NewFilter(appConfig.Debug)

	var update policy.PolicyUpdate
	if debugFlags.level != "" {
		level, err := audit.ParseLevel(debugFlags.level)
		if err != nil {
			return cli.NewConfigError("level", err.Error())
		}
		update.Level = &level
	}
	if debugFlags.debugMode {
		update.DebugMode = &debugFlags.debugMode
	}
	update.Categories = debugFlags.categories
	filter.Configure(update)

	return formatter.FormatTo(cmd.OutOrStdout(), testView{filter.Test(args[0])})
}
