// Package telemetry groups the observability of the audit ledger.
//
// # Components
//
//   - logging: slog-based diagnostic logging with secret redaction
//   - metrics: Prometheus collector for appends, rotations, cleanup and verification
//   - tracing: OpenTelemetry spans around ledger operations
//   - health: liveness and readiness checks served by "auditlog run"
//
// Diagnostics never go into the audit files: the ledger reports its own
// failures through the logger and the write error metric.
package telemetry
