package export

import (
	"context"
	"encoding/json"
	"io"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
)

// JSONExporter exports audit records to JSON format.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{
		Pretty: pretty,
	}
}

// Export writes records as a JSON array.
func (e *JSONExporter) Export(ctx context.Context, records []*audit.AuditRecord, w io.Writer) error {
	if len(records) == 0 {
		_, err := w.Write([]byte("[]"))
		return err
	}

	data, err := e.marshal(records, "")
	if err != nil {
		return audit.NewExportError("json", len(records), err)
	}

	if _, err := w.Write(data); err != nil {
		return audit.NewExportError("json", len(records), err)
	}
	return nil
}

// ExportStream writes records from a channel as a JSON array without
// holding them all in memory.
func (e *JSONExporter) ExportStream(ctx context.Context, recordsCh <-chan *audit.AuditRecord, w io.Writer) error {
	if _, err := w.Write([]byte("[")); err != nil {
		return audit.NewExportError("json", 0, err)
	}

	recordCount := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case record, ok := <-recordsCh:
			if !ok {
				if _, err := w.Write([]byte("]")); err != nil {
					return audit.NewExportError("json", recordCount, err)
				}
				return nil
			}

			if recordCount > 0 {
				sep := ","
				if e.Pretty {
					sep = ",\n"
				}
				if _, err := w.Write([]byte(sep)); err != nil {
					return audit.NewExportError("json", recordCount, err)
				}
			}

			data, err := e.marshal(record, "  ")
			if err != nil {
				return audit.NewExportError("json", recordCount, err)
			}
			if _, err := w.Write(data); err != nil {
				return audit.NewExportError("json", recordCount, err)
			}

			recordCount++
		}
	}
}

// ExportReport writes the report as a single JSON object.
func (e *JSONExporter) ExportReport(ctx context.Context, report *audit.ComplianceReport, w io.Writer) error {
	data, err := e.marshal(report, "")
	if err != nil {
		return audit.NewExportError("json", report.Summary.TotalEvents, err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return audit.NewExportError("json", report.Summary.TotalEvents, err)
	}
	return nil
}

func (e *JSONExporter) marshal(v any, prefix string) ([]byte, error) {
	if e.Pretty {
		return json.MarshalIndent(v, prefix, "  ")
	}
	return json.Marshal(v)
}
