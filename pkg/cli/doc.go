/*
Package cli provides command-line helpers for the auditlog command.

Output Formatting:

Command results render as text, a JSON document, CSV rows or an aligned
table. CSV and table output need a value implementing Tabular:

	formatter, err := cli.NewFormatter(cli.FormatTable)
	if err != nil {
		return err
	}
	if err := formatter.FormatTo(os.Stdout, rows); err != nil {
		return err
	}

Progress Reporting:

Bulk operations such as importing an events file report their progress:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(int64(len(events)))
	for i, ev := range events {
		// Append ev
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

Long-running commands stop on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
