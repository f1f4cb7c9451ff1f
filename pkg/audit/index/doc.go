// Package index mirrors a summary of every persisted audit record into a
// queryable store.
//
// The log files remain the system of record. The index holds one row per
// record (audit id, timestamp, event type, level, file category, chain
// index, hash, compliance validity and file name) so that lookups by time
// range or attribute do not need a full directory scan.
//
// # Backends
//
//   - SQLiteIndex: persistent, WAL mode, safe for concurrent readers
//   - MemoryIndex: in-process, for tests and short-lived tools
//
// Both implement audit.Index and return entries newest first.
//
// # Queries
//
//	valid := false
//	entries, err := idx.Query(ctx, &audit.IndexQuery{
//	    Category:        audit.CategoryAuditLogs,
//	    ComplianceValid: &valid,
//	    Limit:           50,
//	})
//
// StartTime is inclusive and EndTime exclusive. A zero Limit means
// DefaultLimit.
package index
