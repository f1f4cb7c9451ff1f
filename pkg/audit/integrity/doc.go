// Package integrity verifies persisted audit records and reports on their
// compliance. It recomputes each record's chain hash from its chain entry
// and its payload digest from its data, and never repairs what it finds.
package integrity
