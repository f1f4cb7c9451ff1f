// Package metrics provides Prometheus metrics for the audit ledger.
//
// # Metrics Categories
//
//   - Event Metrics: events by level, category and outcome, append latency,
//     record sizes, rotations, index failures and compliance violations
//   - Retention Metrics: cleanup passes, files removed and bytes freed
//   - Integrity Metrics: verification passes, entries checked and errors found
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordEvent("info", "audit_logs", "ai_review", metrics.OutcomePersisted, d, n)
//
// A nil collector is a valid no-op, as is one built from a disabled config.
//
// # Prometheus Endpoint
//
//	# HELP auditlog_ledger_events_total Total number of audit events by level, category and outcome
//	# TYPE auditlog_ledger_events_total counter
//	auditlog_ledger_events_total{category="audit_logs",level="info",outcome="persisted"} 42
//
// # Cardinality Management
//
// Event types are caller supplied. After 1000 distinct values further
// types are aggregated into "other".
package metrics
