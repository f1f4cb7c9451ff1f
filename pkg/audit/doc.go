// Package audit defines the records, results and error taxonomy of the
// code-review audit ledger. It records every significant review pipeline
// event (reviews, overrides, notifications) as an immutable, hash-linked
// record, evaluates regulatory compliance per record, and manages the
// on-disk lifecycle of the log files.
//
// # Architecture
//
// The ledger is assembled from small components, leaves first:
//
//  1. policy     - decides whether an event is recorded at all
//  2. compliance - per-framework compliance checks for one event
//  3. chain      - hash primitives and the bounded in-memory chain
//  4. retention  - cleanup of expired files and rotation of oversized files
//  5. integrity  - re-derives hashes and digests from persisted files
//  6. ledger     - allocates identifiers, builds records and appends them
//
// # Recording Flow
//
//	LogEvent(event)
//	     ↓
//	Policy filter (cheap rejection)
//	     ↓
//	Chain entry (id, timestamp, previous hash, hash)
//	     ↓
//	Compliance evaluation + data integrity digest
//	     ↓
//	Rotate active file if oversized
//	     ↓
//	Append one JSON line to <category>-<YYYY-MM-DD>.jsonl
//
// # Files
//
// Records are newline-delimited JSON, one file per category per day.
// Rotated files keep their category prefix and gain a timestamp suffix:
//
//	audit_logs-2025-01-15.jsonl
//	audit_logs-2025-01-15.jsonl-2025-01-15T10-30-00-000Z.jsonl
//
// # Errors
//
// Filesystem failures are recovered locally and reported in results.
// Batch operations (cleanup, verify, report) always return a result
// carrying an Errors slice, so one bad file never aborts the rest.
package audit
