// Auditlog records code-review pipeline events in a tamper-evident,
// compliance-annotated audit trail and manages the resulting log files.
//
// Usage:
//
//	# Record one event
//	auditlog log ai_review_completed --field user=alice --field repository=org/repo
//
//	# Import a file of events
//	auditlog log --file events.jsonl
//
//	# Verify every record's hash and data digest
//	auditlog verify
//
//	# Delete files past their retention window
//	auditlog cleanup
//
//	# Summarize compliance for a period
//	auditlog report --period 2024-06-01T00:00:00Z/2024-07-01T00:00:00Z
//
//	# Run scheduled cleanup with metrics and config reload until stopped
//	auditlog run --config auditlog.yaml
package main

func main() {
	Execute()
}
