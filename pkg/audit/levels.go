package audit

import (
	"fmt"
	"strings"
)

// Level is an event severity. Levels are ordered error < warn < info < debug < trace.
type Level string

const (
	LevelError Level = "error"
	LevelWarn  Level = "warn"
	LevelInfo  Level = "info"
	LevelDebug Level = "debug"
	LevelTrace Level = "trace"
)

// Levels lists every level from least to most verbose.
var Levels = []Level{LevelError, LevelWarn, LevelInfo, LevelDebug, LevelTrace}

var severities = map[Level]int{
	LevelError: 0,
	LevelWarn:  1,
	LevelInfo:  2,
	LevelDebug: 3,
	LevelTrace: 4,
}

// Severity returns the numeric rank of the level, or -1 for an unknown level.
func (l Level) Severity() int {
	if s, ok := severities[l]; ok {
		return s
	}
	return -1
}

// Valid reports whether l is one of the five known levels.
func (l Level) Valid() bool {
	return l.Severity() >= 0
}

// IsVerbose reports whether the level is gated by debug mode.
func (l Level) IsVerbose() bool {
	return l == LevelDebug || l == LevelTrace
}

// ParseLevel parses a level name case-insensitively. "warning" is accepted for warn.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "trace":
		return LevelTrace, nil
	default:
		return "", fmt.Errorf("unknown level: %q", s)
	}
}

// Category names a family of log files. Each category has its own
// retention window and its own daily file.
type Category string

const (
	CategoryAuditLogs         Category = "audit_logs"
	CategoryErrorLogs         Category = "error_logs"
	CategoryPerformanceLogs   Category = "performance_logs"
	CategoryComplianceReports Category = "compliance_reports"
)

// Categories lists every known file category.
var Categories = []Category{
	CategoryAuditLogs,
	CategoryErrorLogs,
	CategoryPerformanceLogs,
	CategoryComplianceReports,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Framework names a regulatory framework.
type Framework string

const (
	FrameworkSOX    Framework = "sox"
	FrameworkGDPR   Framework = "gdpr"
	FrameworkHIPAA  Framework = "hipaa"
	FrameworkPCIDSS Framework = "pci_dss"
)

// Frameworks lists every supported framework in a stable order.
var Frameworks = []Framework{FrameworkSOX, FrameworkGDPR, FrameworkHIPAA, FrameworkPCIDSS}

// Valid reports whether f is a supported framework.
func (f Framework) Valid() bool {
	for _, known := range Frameworks {
		if f == known {
			return true
		}
	}
	return false
}

// RetentionPolicy maps a category to its retention window in days.
// A missing or zero window keeps files forever.
type RetentionPolicy map[Category]int

// Clone returns an independent copy of the policy.
func (p RetentionPolicy) Clone() RetentionPolicy {
	out := make(RetentionPolicy, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge copies every entry of partial over p. Categories absent from
// partial keep their current window.
func (p RetentionPolicy) Merge(partial RetentionPolicy) {
	for k, v := range partial {
		p[k] = v
	}
}

// DefaultRetentionPolicy returns the built-in retention windows.
func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{
		CategoryAuditLogs:         2555,
		CategoryErrorLogs:         90,
		CategoryPerformanceLogs:   30,
		CategoryComplianceReports: 2555,
	}
}

// FrameworkConfig maps a framework to its enabled flag.
type FrameworkConfig map[Framework]bool

// Clone returns an independent copy of the config.
func (c FrameworkConfig) Clone() FrameworkConfig {
	out := make(FrameworkConfig, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Merge copies every entry of partial over c.
func (c FrameworkConfig) Merge(partial FrameworkConfig) {
	for k, v := range partial {
		c[k] = v
	}
}

// Enabled returns the enabled frameworks in the stable Frameworks order.
func (c FrameworkConfig) Enabled() []Framework {
	var out []Framework
	for _, f := range Frameworks {
		if c[f] {
			out = append(out, f)
		}
	}
	return out
}

// DefaultFrameworkConfig returns the built-in framework toggles.
func DefaultFrameworkConfig() FrameworkConfig {
	return FrameworkConfig{
		FrameworkSOX:    true,
		FrameworkGDPR:   true,
		FrameworkHIPAA:  false,
		FrameworkPCIDSS: false,
	}
}
