package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/export"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/integrity"
	"github.com/DikshantJo/code-review-sub002/pkg/cli"
)

var reportFlags struct {
	period     string
	frameworks []string
	format     string
	pretty     bool
	output     string
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a compliance report",
	Long: `Summarize the compliance of persisted records.

A record is compliant when it carries no validation errors. Each framework
sub-report is compliant when every record that evaluated the framework
found it compliant.

Period Format:
  RFC3339 interval "start/end"; either bound may be omitted.
  The start is inclusive and the end exclusive.

Examples:
  # Report on June 2024
  auditlog report --period 2024-06-01T00:00:00Z/2024-07-01T00:00:00Z

  # Report on SOX only, as CSV
  auditlog report --framework sox --format csv --output report.csv`,
	Args: cobra.NoArgs,
	RunE: generateReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportFlags.period, "period", "", "record period (RFC3339 interval: start/end)")
	reportCmd.Flags().StringSliceVar(&reportFlags.frameworks, "framework", nil, "frameworks to report on (default: enabled frameworks)")
	reportCmd.Flags().StringVar(&reportFlags.format, "format", "text", "output format: text, json, csv")
	reportCmd.Flags().BoolVar(&reportFlags.pretty, "pretty", true, "indent JSON output")
	reportCmd.Flags().StringVarP(&reportFlags.output, "output", "o", "", "output file (default: stdout)")
}

func generateReport(cmd *cobra.Command, args []string) error {
	period, err := parsePeriod(reportFlags.period)
	if err != nil {
		return cli.NewConfigError("period", err.Error())
	}

	var frameworks []audit.Framework
	for _, name := range reportFlags.frameworks {
		f := audit.Framework(strings.ToLower(strings.TrimSpace(name)))
		if !f.Valid() {
			return cli.NewConfigError("framework", fmt.Sprintf("unknown framework %q", name))
		}
		frameworks = append(frameworks, f)
	}

	var exporter export.Exporter
	if reportFlags.format != "text" {
		if exporter, err = export.New(reportFlags.format, reportFlags.pretty); err != nil {
			return cli.NewConfigError("format", err.Error())
		}
	}

	l, err := openLedger(appConfig, nil)
	if err != nil {
		return cli.NewCommandError("report", err)
	}
	defer l.Close()

	ctx := commandContext(cmd)
	report := l.GenerateComplianceReport(ctx, integrity.ReportOptions{
		Period:     period,
		Frameworks: frameworks,
	})

	w, closeOutput, err := outputWriter(cmd, reportFlags.output)
	if err != nil {
		return cli.NewCommandError("report", err)
	}
	defer closeOutput()

	if exporter != nil {
		if err := exporter.ExportReport(ctx, report, w); err != nil {
			return cli.NewCommandError("report", err)
		}
		return closeOutput()
	}

	writeReportText(w, report)
	return closeOutput()
}

func writeReportText(w io.Writer, report *audit.ComplianceReport) {
	fmt.Fprintln(w, "Compliance Report")
	fmt.Fprintln(w, "=================")
	fmt.Fprintf(w, "Generated: %s\n", audit.FormatTimestamp(report.GeneratedAt))
	fmt.Fprintf(w, "Period: %s to %s\n", periodBound(report.Period.Start), periodBound(report.Period.End))
	fmt.Fprintln(w)

	s := report.Summary
	fmt.Fprintf(w, "Total events: %d\n", s.TotalEvents)
	fmt.Fprintf(w, "Compliant: %d\n", s.CompliantEvents)
	fmt.Fprintf(w, "Non-compliant: %d\n", s.NonCompliantEvents)
	fmt.Fprintf(w, "Compliance rate: %.2f%%\n", s.ComplianceRate)

	if len(report.Frameworks) > 0 {
		names := make([]string, 0, len(report.Frameworks))
		for f := range report.Frameworks {
			names = append(names, string(f))
		}
		sort.Strings(names)

		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FRAMEWORK\tEVALUATED\tCOMPLIANT\tSTATUS")
		for _, name := range names {
			fr := report.Frameworks[audit.Framework(name)]
			status := "✓ compliant"
			if !fr.Compliant {
				status = "✗ non-compliant"
			}
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", name, fr.EventsEvaluated, fr.CompliantEvents, status)
		}
		tw.Flush()
	}

	if len(report.Errors) > 0 {
		fmt.Fprintf(w, "\nUnreadable lines: %d\n", len(report.Errors))
	}
}
