package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span names of the ledger operations.
const (
	SpanLogEvent = "audit.log_event"
	SpanCleanup  = "audit.retention_cleanup"
	SpanVerify   = "audit.verify"
	SpanReport   = "audit.compliance_report"
)

// Attribute keys use the "audit.*" namespace.
const (
	AttrEventType       = "audit.event_type"
	AttrLevel           = "audit.level"
	AttrCategory        = "audit.category"
	AttrAuditID         = "audit.id"
	AttrChainIndex      = "audit.chain.index"
	AttrLogged          = "audit.logged"
	AttrReason          = "audit.reason"
	AttrComplianceValid = "audit.compliance.valid"

	AttrFilesChecked    = "audit.verify.files_checked"
	AttrEntriesVerified = "audit.verify.entries_verified"
	AttrVerifyErrors    = "audit.verify.errors"

	AttrFilesRemoved = "audit.cleanup.files_removed"
	AttrSpaceFreed   = "audit.cleanup.space_freed"
	AttrEventsTotal  = "audit.report.events_total"
)

// EventAttributes describes an event before the append decision.
func EventAttributes(eventType, level string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrEventType, eventType),
		attribute.String(AttrLevel, level),
	}
}

// SetAppendAttributes records the outcome of one append on span.
func SetAppendAttributes(span trace.Span, logged bool, reason, auditID string, complianceValid bool) {
	attrs := []attribute.KeyValue{attribute.Bool(AttrLogged, logged)}
	if reason != "" {
		attrs = append(attrs, attribute.String(AttrReason, reason))
	}
	if auditID != "" {
		attrs = append(attrs,
			attribute.String(AttrAuditID, auditID),
			attribute.Bool(AttrComplianceValid, complianceValid),
		)
	}
	span.SetAttributes(attrs...)
}

// SetRecordAttributes records where an appended record landed.
func SetRecordAttributes(span trace.Span, category string, chainIndex int64) {
	span.SetAttributes(
		attribute.String(AttrCategory, category),
		attribute.Int64(AttrChainIndex, chainIndex),
	)
}

// SetVerifyAttributes records the totals of one verification pass.
func SetVerifyAttributes(span trace.Span, filesChecked, entriesVerified, errors int) {
	span.SetAttributes(
		attribute.Int(AttrFilesChecked, filesChecked),
		attribute.Int(AttrEntriesVerified, entriesVerified),
		attribute.Int(AttrVerifyErrors, errors),
	)
}

// SetCleanupAttributes records the totals of one cleanup pass.
func SetCleanupAttributes(span trace.Span, filesRemoved int, spaceFreed int64) {
	span.SetAttributes(
		attribute.Int(AttrFilesRemoved, filesRemoved),
		attribute.Int64(AttrSpaceFreed, spaceFreed),
	)
}
