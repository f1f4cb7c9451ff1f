package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/ledger"
	"github.com/DikshantJo/code-review-sub002/pkg/cli"
	"github.com/DikshantJo/code-review-sub002/pkg/telemetry/logging"
)

var logFlags struct {
	level    string
	data     string
	fields   []string
	file     string
	format   string
	progress bool
}

var logCmd = &cobra.Command{
	Use:   "log [EVENT_TYPE]",
	Short: "Record audit events",
	Long: `Record one event, or every event of a JSON Lines file.

Each line of an events file is an object with the keys event_type, level,
data and context ("context" holds the caller fields such as user and
repository). Missing levels default to info.

Examples:
  # Record a review with caller context
  auditlog log ai_review_completed --data '{"files": 3}' \
    --field user=alice --field repository=org/repo

  # Record an error event
  auditlog log github_api_error --level error --field repository=org/repo

  # Import events from a file
  auditlog log --file events.jsonl`,
	Args: cobra.MaximumNArgs(1),
	RunE: logEvents,
}

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().StringVarP(&logFlags.level, "level", "l", string(audit.LevelInfo), "event level: error, warn, info, debug, trace")
	logCmd.Flags().StringVarP(&logFlags.data, "data", "d", "", "event payload as a JSON object")
	logCmd.Flags().StringArrayVarP(&logFlags.fields, "field", "f", nil, "context field as key=value (repeatable)")
	logCmd.Flags().StringVar(&logFlags.file, "file", "", "JSON Lines file of events to import")
	logCmd.Flags().StringVar(&logFlags.format, "format", "text", "output format: text, json")
	logCmd.Flags().BoolVar(&logFlags.progress, "progress", true, "show import progress on stderr")
}

// eventLine is one line of an events file.
type eventLine struct {
	EventType string       `json:"event_type"`
	Level     audit.Level  `json:"level"`
	Data      audit.Fields `json:"data"`
	Context   audit.Fields `json:"context"`
}

// importSummary is the result of importing an events file.
type importSummary struct {
	Total        int      `json:"total"`
	Logged       int      `json:"logged"`
	Filtered     int      `json:"filtered"`
	Failed       int      `json:"failed"`
	NonCompliant int      `json:"non_compliant"`
	Errors       []string `json:"errors"`
}

func (s importSummary) String() string {
	return fmt.Sprintf("Events: %d\nLogged: %d\nFiltered: %d\nFailed: %d\nNon-compliant: %d",
		s.Total, s.Logged, s.Filtered, s.Failed, s.NonCompliant)
}

func logEvents(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (logFlags.file == "") {
		return cli.NewConfigError("log", "give either EVENT_TYPE or --file")
	}

	formatter, err := cli.NewFormatter(cli.OutputFormat(logFlags.format))
	if err != nil {
		return err
	}

	l, err := openLedger(appConfig, nil)
	if err != nil {
		return cli.NewCommandError("log", err)
	}
	defer l.Close()

	if logFlags.file != "" {
		summary, err := importEvents(cmd, l, logFlags.file)
		if err != nil {
			return cli.NewCommandError("log", err)
		}
		if err := formatter.FormatTo(cmd.OutOrStdout(), summary); err != nil {
			return err
		}
		if summary.Failed > 0 {
			return cli.NewCommandError("log", fmt.Errorf("%d event(s) could not be written", summary.Failed))
		}
		return nil
	}

	level, err := audit.ParseLevel(logFlags.level)
	if err != nil {
		return cli.NewConfigError("level", err.Error())
	}
	data, err := parseData(logFlags.data)
	if err != nil {
		return cli.NewConfigError("data", err.Error())
	}
	fields, err := parseFields(logFlags.fields)
	if err != nil {
		return cli.NewConfigError("field", err.Error())
	}

	result := l.LogEvent(eventContext(commandContext(cmd), fields), args[0], data, level, fields)
	if err := formatter.FormatTo(cmd.OutOrStdout(), describeResult(result)); err != nil {
		return err
	}
	if result.Reason == audit.ReasonWriteError {
		return cli.NewCommandError("log", result.Err)
	}
	return nil
}

// resultView renders an AppendResult.
type resultView struct {
	audit.AppendResult
	Error string `json:"error,omitempty"`
}

func (v resultView) String() string {
	switch {
	case v.Logged && v.ComplianceValid:
		return fmt.Sprintf("✓ Logged %s", v.AuditID)
	case v.Logged:
		return fmt.Sprintf("✓ Logged %s (compliance validation failed)", v.AuditID)
	case v.Error != "":
		return fmt.Sprintf("✗ Not logged: %s: %s", v.Reason, v.Error)
	default:
		return fmt.Sprintf("- Not logged: %s", v.Reason)
	}
}

func describeResult(r audit.AppendResult) resultView {
	v := resultView{AppendResult: r}
	if r.Err != nil {
		v.Error = r.Err.Error()
	}
	return v
}

// parseData decodes a JSON object payload. Numbers keep their literal form.
func parseData(s string) (audit.Fields, error) {
	if s == "" {
		return audit.Fields{}, nil
	}
	var data audit.Fields
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("payload must be a JSON object: %w", err)
	}
	if data == nil {
		return audit.Fields{}, nil
	}
	return data, nil
}

// importEvents appends every event of path in file order. A malformed line
// is counted as failed and the import continues.
func importEvents(cmd *cobra.Command, l *ledger.Ledger, path string) (importSummary, error) {
	summary := importSummary{Errors: []string{}}

	f, err := os.Open(path)
	if err != nil {
		return summary, fmt.Errorf("failed to open events file: %w", err)
	}
	defer f.Close()

	lines, err := readLines(f)
	if err != nil {
		return summary, fmt.Errorf("failed to read events file: %w", err)
	}

	var progress cli.ProgressReporter
	if logFlags.progress {
		progress = cli.NewProgressReporter(cmd.ErrOrStderr())
		progress.Start(int64(len(lines)))
	}

	ctx := commandContext(cmd)
	for i, line := range lines {
		if ctx.Err() != nil {
			break
		}
		summary.Total++

		ev, err := decodeEventLine(line.raw)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, audit.NewParseError(path, line.number, err).Error())
		} else {
			result := l.LogEvent(eventContext(ctx, ev.Context), ev.EventType, ev.Data, ev.Level, ev.Context)
			switch {
			case result.Logged:
				summary.Logged++
				if !result.ComplianceValid {
					summary.NonCompliant++
				}
			case result.Reason == audit.ReasonLevelFiltered:
				summary.Filtered++
			default:
				summary.Failed++
				summary.Errors = append(summary.Errors, describeResult(result).String())
			}
		}

		if progress != nil {
			progress.Update(int64(i + 1))
		}
	}

	if progress != nil {
		progress.Finish()
	}
	return summary, nil
}

func decodeEventLine(raw []byte) (eventLine, error) {
	var ev eventLine
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&ev); err != nil {
		return ev, err
	}
	if ev.EventType == "" {
		return ev, fmt.Errorf("missing event_type")
	}
	if ev.Level == "" {
		ev.Level = audit.LevelInfo
		return ev, nil
	}
	level, err := audit.ParseLevel(string(ev.Level))
	if err != nil {
		return ev, err
	}
	ev.Level = level
	return ev, nil
}

type numberedLine struct {
	number int
	raw    []byte
}

// readLines returns the non-blank lines of r with their 1-based numbers.
func readLines(r io.Reader) ([]numberedLine, error) {
	var lines []numberedLine
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for n := 1; scanner.Scan(); n++ {
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		lines = append(lines, numberedLine{number: n, raw: append([]byte(nil), raw...)})
	}
	return lines, scanner.Err()
}

// eventContext tags diagnostics logged for an event with its user and
// repository.
func eventContext(ctx context.Context, fields audit.Fields) context.Context {
	if user, ok := fields.String("user"); ok {
		ctx = logging.WithUser(ctx, user)
	}
	if repo, ok := fields.String("repository"); ok {
		ctx = logging.WithRepository(ctx, repo)
	}
	return ctx
}
