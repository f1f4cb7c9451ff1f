// Package retention manages the on-disk lifecycle of audit log files.
//
// # Cleanup
//
// Cleanup walks the log directory and deletes every .jsonl file whose
// modification time is older than the retention window of its category:
//
//	policy := audit.RetentionPolicy{
//	    audit.CategoryAuditLogs: 2555,
//	    audit.CategoryErrorLogs: 90,
//	}
//	result := manager.Cleanup(ctx, policy)
//
// A file whose category has no window is kept, and so is the current day's
// active file of every category. Failures on individual files are collected
// in the result; cleanup never aborts on a single bad file.
//
// # Rotation
//
// Rotate renames an active file once it grows past a size threshold:
//
//	audit_logs-2024-01-15.jsonl -> audit_logs-2024-01-15.jsonl-2024-01-15T10-30-00-000Z.jsonl
//
// Rename failures are logged and swallowed so appends can continue on the
// original file.
//
// # Scheduling
//
// Scheduler runs a cleanup function on a cron expression (default daily at
// 3 AM) until its context is cancelled or Stop is called.
package retention
