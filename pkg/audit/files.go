package audit

import (
	"path/filepath"
	"strings"
	"time"
)

// FileExt is the extension of every active and rotated log file.
const FileExt = ".jsonl"

// TimestampLayout is the ISO-8601 layout used for record timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in UTC with millisecond precision and a Z suffix.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a record timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// ActiveFileName returns the daily file name for a category:
// <category>-<YYYY-MM-DD>.jsonl.
func ActiveFileName(category Category, day time.Time) string {
	return string(category) + "-" + day.UTC().Format("2006-01-02") + FileExt
}

// ActiveFilePath joins dir with the category's daily file name.
func ActiveFilePath(dir string, category Category, day time.Time) string {
	return filepath.Join(dir, ActiveFileName(category, day))
}

// RotatedPath returns the archival name for an active file rotated at t:
// <path>-<timestamp with ':' and '.' replaced by '-'>.jsonl.
func RotatedPath(path string, t time.Time) string {
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(FormatTimestamp(t))
	return path + "-" + stamp + FileExt
}

// CategoryOf classifies a file name by its category prefix.
func CategoryOf(name string) (Category, bool) {
	base := filepath.Base(name)
	for _, c := range Categories {
		if strings.HasPrefix(base, string(c)+"-") {
			return c, true
		}
	}
	return "", false
}

// IsLogFile reports whether name looks like an active or rotated log file.
func IsLogFile(name string) bool {
	return strings.HasSuffix(name, FileExt)
}

// FileCategoryFor picks the file category an event is written to.
// An explicit log_category in fields wins; otherwise errors go to
// error_logs, performance and compliance events to their own files, and
// everything else to audit_logs.
func FileCategoryFor(eventType string, level Level, fields Fields) Category {
	if s, ok := fields.String("log_category"); ok {
		if c := Category(s); c.Valid() {
			return c
		}
	}
	switch {
	case level == LevelError:
		return CategoryErrorLogs
	case strings.HasPrefix(eventType, "performance"):
		return CategoryPerformanceLogs
	case strings.HasPrefix(eventType, "compliance"):
		return CategoryComplianceReports
	default:
		return CategoryAuditLogs
	}
}

// FilterCategoryFor returns the category consulted by the log policy filter:
// fields["category"] when set, otherwise the event type.
func FilterCategoryFor(eventType string, fields Fields) string {
	if s, ok := fields.String("category"); ok {
		return s
	}
	return eventType
}
