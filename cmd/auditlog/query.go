package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
	"github.com/DikshantJo/code-review-sub002/pkg/cli"
)

var queryFlags struct {
	period     string
	eventType  string
	level      string
	category   string
	compliance string
	limit      int
	offset     int
	count      bool
	format     string
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the record index",
	Long: `Query the SQLite record index maintained while events are logged.

The index must be enabled (index.enabled: true). Results are ordered by
timestamp, newest first.

Examples:
  # Show the latest errors
  auditlog query --level error --limit 20

  # Count non-compliant events in June 2024
  auditlog query --compliance invalid --count \
    --period 2024-06-01T00:00:00Z/2024-07-01T00:00:00Z`,
	Args: cobra.NoArgs,
	RunE: queryIndex,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVar(&queryFlags.period, "period", "", "record period (RFC3339 interval: start/end)")
	queryCmd.Flags().StringVar(&queryFlags.eventType, "event-type", "", "filter by event type")
	queryCmd.Flags().StringVar(&queryFlags.level, "level", "", "filter by level")
	queryCmd.Flags().StringVar(&queryFlags.category, "category", "", "filter by file category")
	queryCmd.Flags().StringVar(&queryFlags.compliance, "compliance", "", "filter by compliance: valid, invalid")
	queryCmd.Flags().IntVar(&queryFlags.limit, "limit", 100, "max results")
	queryCmd.Flags().IntVar(&queryFlags.offset, "offset", 0, "pagination offset")
	queryCmd.Flags().BoolVar(&queryFlags.count, "count", false, "print only the number of matching entries")
	queryCmd.Flags().StringVar(&queryFlags.format, "format", "table", "output format: text, json, csv, table")
}

// indexRows renders index entries as rows.
type indexRows []*audit.IndexEntry

func (r indexRows) Headers() []string {
	return []string{"timestamp", "audit_id", "event_type", "level", "category", "chain_index", "compliance_valid"}
}

func (r indexRows) Rows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, e := range r {
		rows = append(rows, []string{
			audit.FormatTimestamp(e.Timestamp),
			e.AuditID,
			e.EventType,
			string(e.Level),
			string(e.Category),
			strconv.FormatInt(e.ChainIndex, 10),
			strconv.FormatBool(e.ComplianceValid),
		})
	}
	return rows
}

func buildIndexQuery() (*audit.IndexQuery, error) {
	period, err := parsePeriod(queryFlags.period)
	if err != nil {
		return nil, cli.NewConfigError("period", err.Error())
	}

	q := &audit.IndexQuery{
		StartTime: period.Start,
		EndTime:   period.End,
		EventType: queryFlags.eventType,
		Limit:     queryFlags.limit,
		Offset:    queryFlags.offset,
	}
	if queryFlags.level != "" {
		level, err := audit.ParseLevel(queryFlags.level)
		if err != nil {
			return nil, cli.NewConfigError("level", err.Error())
		}
		q.Level = level
	}
	if queryFlags.category != "" {
		c := audit.Category(queryFlags.category)
		if !c.Valid() {
			return nil, cli.NewConfigError("category", fmt.Sprintf("unknown log category %q", queryFlags.category))
		}
		q.Category = c
	}
	switch queryFlags.compliance {
	case "":
	case "valid", "invalid":
		valid := queryFlags.compliance == "valid"
		q.ComplianceValid = &valid
	default:
		return nil, cli.NewConfigError("compliance", "expected valid or invalid")
	}
	return q, nil
}

func queryIndex(cmd *cobra.Command, args []string) error {
	if !appConfig.Index.Enabled {
		return cli.NewConfigError("index.enabled", "the record index is disabled")
	}

	q, err := buildIndexQuery()
	if err != nil {
		return err
	}
	formatter, err := cli.NewFormatter(cli.OutputFormat(queryFlags.format))
	if err != nil {
		return err
	}

	idx, err := openIndex(appConfig)
	if err != nil {
		return cli.NewCommandError("query", err)
	}
	defer idx.Close()

	ctx := commandContext(cmd)
	if queryFlags.count {
		n, err := idx.Count(ctx, q)
		if err != nil {
			return cli.NewCommandError("query", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	}

	entries, err := idx.Query(ctx, q)
	if err != nil {
		return cli.NewCommandError("query", err)
	}
	if queryFlags.format == string(cli.FormatJSON) {
		return formatter.FormatTo(cmd.OutOrStdout(), map[string]any{
			"total_entries": len(entries),
			"entries":       entries,
		})
	}
	return formatter.FormatTo(cmd.OutOrStdout(), indexRows(entries))
}
