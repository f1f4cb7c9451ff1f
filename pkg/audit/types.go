package audit

import (
	"context"
	"time"
)

// Fields is an opaque key/value payload. Event data and event context are
// both carried as Fields.
type Fields map[string]any

// String returns the value stored under key if it is a non-empty string.
func (f Fields) String(key string) (string, bool) {
	if f == nil {
		return "", false
	}
	s, ok := f[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Has reports whether key is present with a non-nil value.
func (f Fields) Has(key string) bool {
	if f == nil {
		return false
	}
	v, ok := f[key]
	return ok && v != nil
}

// AuditRecord is the immutable unit of logged activity. One record is
// written per accepted event as a single line of newline-delimited JSON.
type AuditRecord struct {
	AuditID    string             `json:"audit_id"`
	Timestamp  string             `json:"timestamp"` // ISO-8601, UTC, millisecond precision
	EventType  string             `json:"event_type"`
	Level      Level              `json:"level"`
	Data       Fields             `json:"data"`
	Context    Fields             `json:"context"`
	Compliance *ComplianceSection `json:"compliance,omitempty"`
	ChainEntry ChainEntry         `json:"chain_entry"`
}

// ChainEntry is the hash-linked metadata attached to every record.
type ChainEntry struct {
	Index        int64  `json:"index"`
	PreviousHash string `json:"previous_hash"`
	Hash         string `json:"hash"`
	AuditID      string `json:"audit_id"`
	Timestamp    string `json:"timestamp"`
}

// FrameworkResult is the verdict of one regulatory framework for one event.
type FrameworkResult struct {
	Compliant bool            `json:"compliant"`
	Checks    map[string]bool `json:"checks"`
}

// ComplianceSection is the compliance block stored on a record when
// compliance mode is enabled.
type ComplianceSection struct {
	Frameworks       map[Framework]FrameworkResult `json:"frameworks"`
	ValidationErrors []string                      `json:"validation_errors"`
	DataIntegrity    string                        `json:"data_integrity"`
}

// Valid reports whether the record passed required-field validation.
func (c *ComplianceSection) Valid() bool {
	return c != nil && len(c.ValidationErrors) == 0
}

// Reasons reported by an append that did not log.
const (
	ReasonLevelFiltered = "log_level_filtered"
	ReasonWriteError    = "write_error"
)

// AppendResult is returned by every ledger append. A failed append is
// reported here and never as a panic or a returned error.
type AppendResult struct {
	Logged          bool   `json:"logged"`
	AuditID         string `json:"audit_id,omitempty"`
	ComplianceValid bool   `json:"compliance_valid"`
	Reason          string `json:"reason,omitempty"`
	Err             error  `json:"-"`
}

// CleanupResult summarizes one retention cleanup pass.
type CleanupResult struct {
	FilesRemoved int      `json:"files_removed"`
	SpaceFreed   int64    `json:"space_freed"`
	Errors       []string `json:"errors"`
}

// VerifyResult summarizes one integrity verification pass.
type VerifyResult struct {
	Verified        bool     `json:"verified"`
	FilesChecked    int      `json:"files_checked"`
	EntriesVerified int      `json:"entries_verified"`
	Errors          []string `json:"errors"`
}

// Period bounds a report. A nil bound is open.
type Period struct {
	Start *time.Time `json:"start,omitempty"` // inclusive
	End   *time.Time `json:"end,omitempty"`   // exclusive
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	if p.Start != nil && t.Before(*p.Start) {
		return false
	}
	if p.End != nil && !t.Before(*p.End) {
		return false
	}
	return true
}

// ReportSummary aggregates compliance over the scanned events.
type ReportSummary struct {
	TotalEvents        int     `json:"total_events"`
	CompliantEvents    int     `json:"compliant_events"`
	NonCompliantEvents int     `json:"non_compliant_events"`
	ComplianceRate     float64 `json:"compliance_rate"` // percentage, 0-100
}

// FrameworkReport summarizes one framework across the scanned events.
type FrameworkReport struct {
	Framework       Framework `json:"framework"`
	EventsEvaluated int       `json:"events_evaluated"`
	CompliantEvents int       `json:"compliant_events"`
	Compliant       bool      `json:"compliant"`
}

// ComplianceReport is produced by the integrity verifier from persisted records.
type ComplianceReport struct {
	GeneratedAt time.Time                     `json:"generated_at"`
	Period      Period                        `json:"period"`
	Summary     ReportSummary                 `json:"summary"`
	Frameworks  map[Framework]FrameworkReport `json:"frameworks"`
	Errors      []string                      `json:"errors"`
}

// IndexEntry is the summary row mirrored into a record index.
type IndexEntry struct {
	AuditID         string    `json:"audit_id"`
	Timestamp       time.Time `json:"timestamp"`
	EventType       string    `json:"event_type"`
	Level           Level     `json:"level"`
	Category        Category  `json:"category"`
	ChainIndex      int64     `json:"chain_index"`
	Hash            string    `json:"hash"`
	ComplianceValid bool      `json:"compliance_valid"`
	File            string    `json:"file"`
}

// IndexQuery filters index entries.
type IndexQuery struct {
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	EventType       string   `json:"event_type,omitempty"`
	Level           Level    `json:"level,omitempty"`
	Category        Category `json:"category,omitempty"`
	ComplianceValid *bool    `json:"compliance_valid,omitempty"`

	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Index mirrors record summaries for fast lookup. Implementations must be
// safe for concurrent use.
type Index interface {
	// Store records the summary of a persisted record.
	Store(ctx context.Context, entry *IndexEntry) error

	// Query returns entries matching the query, newest first.
	Query(ctx context.Context, query *IndexQuery) ([]*IndexEntry, error)

	// Count returns the number of entries matching the query.
	Count(ctx context.Context, query *IndexQuery) (int64, error)

	// Close releases resources held by the index.
	Close() error
}
