package audit

import (
	"errors"
	"fmt"
)

// ErrChainEmpty is returned when the newest chain entry is requested from an
// empty chain.
var ErrChainEmpty = errors.New("audit chain is empty")

// FilesystemError represents a failed read, write, stat, rename or delete.
// It is always recovered locally and surfaced in a result, never raised.
type FilesystemError struct {
	Op    string // "append", "rename", "remove", "stat", "read", "mkdir"
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *FilesystemError) Error() string {
	return fmt.Sprintf("filesystem error [op=%s, path=%s]: %v", e.Op, e.Path, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *FilesystemError) Unwrap() error {
	return e.Cause
}

// NewFilesystemError creates a new FilesystemError.
func NewFilesystemError(op, path string, cause error) *FilesystemError {
	return &FilesystemError{
		Op:    op,
		Path:  path,
		Cause: cause,
	}
}

// ParseError represents a malformed line met while scanning a log file.
type ParseError struct {
	File  string
	Line  int
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("Parse error in %s line %d: %v", e.File, e.Line, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a new ParseError.
func NewParseError(file string, line int, cause error) *ParseError {
	return &ParseError{
		File:  file,
		Line:  line,
		Cause: cause,
	}
}

// Integrity finding kinds.
const (
	IntegrityHash = "hash"
	IntegrityData = "data"
)

// IntegrityError is a finding: a persisted hash or digest that does not
// match the value recomputed from the record. Findings are reported and
// never repaired.
type IntegrityError struct {
	Kind     string // IntegrityHash or IntegrityData
	File     string
	Line     int
	AuditID  string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *IntegrityError) Error() string {
	label := "Hash mismatch"
	if e.Kind == IntegrityData {
		label = "Data integrity mismatch"
	}
	return fmt.Sprintf("%s in %s line %d (audit_id=%s): expected %s, got %s",
		label, e.File, e.Line, e.AuditID, e.Expected, e.Actual)
}

// NewIntegrityError creates a new IntegrityError.
func NewIntegrityError(kind, file string, line int, auditID, expected, actual string) *IntegrityError {
	return &IntegrityError{
		Kind:     kind,
		File:     file,
		Line:     line,
		AuditID:  auditID,
		Expected: expected,
		Actual:   actual,
	}
}

// ConfigurationError represents a missing required compliance field. It
// lowers a record's compliance validity but never blocks the write.
type ConfigurationError struct {
	Field string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("Missing required field: %s", e.Field)
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(field string) *ConfigurationError {
	return &ConfigurationError{Field: field}
}

// IndexError represents a failure of a record index backend. Index
// failures never change the outcome of an append.
type IndexError struct {
	Backend   string // "sqlite", "memory"
	Operation string // "open", "store", "query", "count", "close"
	Cause     error
}

// Error implements the error interface.
func (e *IndexError) Error() string {
	return fmt.Sprintf("index error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *IndexError) Unwrap() error {
	return e.Cause
}

// NewIndexError creates a new IndexError.
func NewIndexError(backend, operation string, cause error) *IndexError {
	return &IndexError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// QueryError represents an invalid index query.
type QueryError struct {
	Query *IndexQuery
	Cause error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("query error: %v", e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *QueryError) Unwrap() error {
	return e.Cause
}

// NewQueryError creates a new QueryError.
func NewQueryError(query *IndexQuery, cause error) *QueryError {
	return &QueryError{
		Query: query,
		Cause: cause,
	}
}

// ExportError represents a failure while exporting records or reports.
type ExportError struct {
	Format      string // "json", "csv"
	RecordCount int
	Cause       error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [format=%s, record_count=%d]: %v", e.Format, e.RecordCount, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ExportError) Unwrap() error {
	return e.Cause
}

// NewExportError creates a new ExportError.
func NewExportError(format string, recordCount int, cause error) *ExportError {
	return &ExportError{
		Format:      format,
		RecordCount: recordCount,
		Cause:       cause,
	}
}
