package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
)

// CSVExporter exports audit records to CSV format.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{
		IncludeHeader: includeHeader,
	}
}

// recordHeader lists the record columns in output order.
var recordHeader = []string{
	"audit_id", "timestamp", "event_type", "level",
	"chain_index", "previous_hash", "hash",
	"compliance_valid", "validation_errors", "data_integrity",
	"data", "context",
}

// Export writes records as CSV rows.
func (e *CSVExporter) Export(ctx context.Context, records []*audit.AuditRecord, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(recordHeader); err != nil {
			return audit.NewExportError("csv", len(records), err)
		}
	}

	for _, record := range records {
		if err := writer.Write(recordToRow(record)); err != nil {
			return audit.NewExportError("csv", len(records), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return audit.NewExportError("csv", len(records), err)
	}
	return nil
}

// ExportStream writes records from a channel as CSV rows, flushing every
// 100 records.
func (e *CSVExporter) ExportStream(ctx context.Context, recordsCh <-chan *audit.AuditRecord, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(recordHeader); err != nil {
			return audit.NewExportError("csv", 0, err)
		}
	}

	recordCount := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case record, ok := <-recordsCh:
			if !ok {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return audit.NewExportError("csv", recordCount, err)
				}
				return nil
			}

			if err := writer.Write(recordToRow(record)); err != nil {
				return audit.NewExportError("csv", recordCount, err)
			}

			recordCount++
			if recordCount%100 == 0 {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return audit.NewExportError("csv", recordCount, err)
				}
			}
		}
	}
}

// ExportReport writes one summary row followed by one row per framework.
func (e *CSVExporter) ExportReport(ctx context.Context, report *audit.ComplianceReport, w io.Writer) error {
	writer := csv.NewWriter(w)
	count := report.Summary.TotalEvents

	if e.IncludeHeader {
		header := []string{"scope", "events", "compliant_events", "non_compliant_events", "compliance_rate", "compliant"}
		if err := writer.Write(header); err != nil {
			return audit.NewExportError("csv", count, err)
		}
	}

	s := report.Summary
	rows := [][]string{{
		"summary",
		fmt.Sprintf("%d", s.TotalEvents),
		fmt.Sprintf("%d", s.CompliantEvents),
		fmt.Sprintf("%d", s.NonCompliantEvents),
		fmt.Sprintf("%.2f", s.ComplianceRate),
		fmt.Sprintf("%t", s.NonCompliantEvents == 0),
	}}

	frameworks := make([]string, 0, len(report.Frameworks))
	for f := range report.Frameworks {
		frameworks = append(frameworks, string(f))
	}
	sort.Strings(frameworks)

	for _, name := range frameworks {
		fr := report.Frameworks[audit.Framework(name)]
		rate := 0.0
		if fr.EventsEvaluated > 0 {
			rate = float64(fr.CompliantEvents) / float64(fr.EventsEvaluated) * 100
		}
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%d", fr.EventsEvaluated),
			fmt.Sprintf("%d", fr.CompliantEvents),
			fmt.Sprintf("%d", fr.EventsEvaluated-fr.CompliantEvents),
			fmt.Sprintf("%.2f", rate),
			fmt.Sprintf("%t", fr.Compliant),
		})
	}

	if err := writer.WriteAll(rows); err != nil {
		return audit.NewExportError("csv", count, err)
	}
	return nil
}

// recordToRow flattens one record into the recordHeader columns.
func recordToRow(record *audit.AuditRecord) []string {
	formatJSON := func(v any) string {
		if v == nil {
			return ""
		}
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}

	valid, validationErrors, digest := "", "", ""
	if c := record.Compliance; c != nil {
		valid = fmt.Sprintf("%t", c.Valid())
		validationErrors = formatJSON(c.ValidationErrors)
		digest = c.DataIntegrity
	}

	return []string{
		record.AuditID,
		record.Timestamp,
		record.EventType,
		string(record.Level),
		fmt.Sprintf("%d", record.ChainEntry.Index),
		record.ChainEntry.PreviousHash,
		record.ChainEntry.Hash,
		valid,
		validationErrors,
		digest,
		formatJSON(record.Data),
		formatJSON(record.Context),
	}
}
