package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
	"github.com/DikshantJo/code-review-sub002/pkg/cli"
)

var cleanupFlags struct {
	retention []string
	format    string
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete log files past their retention window",
	Long: `Delete every log file older than its category's retention window.

Today's active file of each category is never deleted, and categories
without a window keep all of their files. A file that cannot be removed is
reported and the remaining files are still processed.

Examples:
  # Apply the configured retention policy
  auditlog cleanup

  # Keep error logs for one week only
  auditlog cleanup --retention error_logs=7`,
	Args: cobra.NoArgs,
	RunE: cleanupLogs,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().StringArrayVar(&cleanupFlags.retention, "retention", nil, "override a retention window as category=days (repeatable)")
	cleanupCmd.Flags().StringVar(&cleanupFlags.format, "format", "text", "output format: text, json")
}

type cleanupView struct {
	audit.CleanupResult
}

func (v cleanupView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Files removed: %d\n", v.FilesRemoved)
	fmt.Fprintf(&sb, "Space freed: %s", cli.FormatBytes(v.SpaceFreed))
	for _, e := range v.Errors {
		fmt.Fprintf(&sb, "\n  ✗ %s", e)
	}
	return sb.String()
}

func cleanupLogs(cmd *cobra.Command, args []string) error {
	formatter, err := cli.NewFormatter(cli.OutputFormat(cleanupFlags.format))
	if err != nil {
		return err
	}
	overrides, err := parseRetention(cleanupFlags.retention)
	if err != nil {
		return cli.NewConfigError("retention", err.Error())
	}

	l, err := openLedger(appConfig, nil)
	if err != nil {
		return cli.NewCommandError("cleanup", err)
	}
	defer l.Close()

	l.SetDataRetentionPolicy(overrides)
	result := l.PerformDataRetentionCleanup(commandContext(cmd))

	if err := formatter.FormatTo(cmd.OutOrStdout(), cleanupView{result}); err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		return cli.NewCommandError("cleanup", fmt.Errorf("%d file(s) could not be removed", len(result.Errors)))
	}
	return nil
}
