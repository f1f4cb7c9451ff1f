// Package export writes audit records and compliance reports in JSON or
// CSV form.
//
// Exporters accept either a slice of records or a channel, so exports of
// large log directories can stream records straight from a scan:
//
//	records, errs := export.ScanRecords(ctx, scanner, audit.Period{})
//	err := export.NewCSVExporter(true).ExportStream(ctx, records, os.Stdout)
//
// CSV flattens data and context to JSON strings and the compliance block
// to its validity and digest.
package export
