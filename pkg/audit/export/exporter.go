package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/integrity"
)

// Exporter writes audit records to a writer.
type Exporter interface {
	// Export writes a complete record set.
	Export(ctx context.Context, records []*audit.AuditRecord, w io.Writer) error

	// ExportStream writes records as they arrive until the channel closes.
	ExportStream(ctx context.Context, records <-chan *audit.AuditRecord, w io.Writer) error

	// ExportReport writes a compliance report.
	ExportReport(ctx context.Context, report *audit.ComplianceReport, w io.Writer) error
}

// Formats lists the supported export formats.
var Formats = []string{"json", "csv"}

// New returns the exporter for format.
func New(format string, pretty bool) (Exporter, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONExporter(pretty), nil
	case "csv":
		return NewCSVExporter(true), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (supported: %s)", format, strings.Join(Formats, ", "))
	}
}

// ScanRecords streams every record in the scanner's directory whose
// timestamp falls inside period. Parse and read errors do not stop the
// scan; they are joined and delivered on the error channel once the record
// channel is closed.
func ScanRecords(ctx context.Context, scanner *integrity.Scanner, period audit.Period) (<-chan *audit.AuditRecord, <-chan error) {
	recordsCh := make(chan *audit.AuditRecord, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		defer close(recordsCh)

		files, err := scanner.Files()
		if err != nil {
			errCh <- err
			return
		}

		var scanErrs []error
		for _, path := range files {
			scanErrs = append(scanErrs, scanner.ScanFile(ctx, path, func(line integrity.Line) {
				if ts, err := audit.ParseTimestamp(line.Record.Timestamp); err == nil && !period.Contains(ts) {
					return
				}
				select {
				case recordsCh <- line.Record:
				case <-ctx.Done():
				}
			})...)

			if ctx.Err() != nil {
				scanErrs = append(scanErrs, ctx.Err())
				break
			}
		}

		if err := errors.Join(scanErrs...); err != nil {
			errCh <- err
		}
	}()

	return recordsCh, errCh
}
