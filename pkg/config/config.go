package config

import (
	"time"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/policy"
)

// Config is the root configuration structure for the audit ledger.
// It contains the ledger's on-disk layout, chain, compliance, retention,
// debug policy, index and telemetry settings.
type Config struct {
	// LogDir is the directory holding the daily .jsonl log files.
	// Default: "logs"
	LogDir string `yaml:"log_dir"`

	// MaxFileSize is the size above which an active file is rotated before
	// the next append. Accepts humanized sizes ("10MiB", "512KB").
	// Default: 10MiB
	MaxFileSize ByteSize `yaml:"max_file_size"`

	// Watch reloads the configuration file when it changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// Chain contains in-memory hash chain configuration.
	Chain ChainConfig `yaml:"chain"`

	// Compliance contains compliance evaluation configuration.
	Compliance ComplianceConfig `yaml:"compliance"`

	// Retention contains log file retention configuration.
	Retention RetentionConfig `yaml:"retention"`

	// Debug is the initial log policy.
	Debug policy.DebugPolicy `yaml:"debug"`

	// Index contains record index configuration.
	Index IndexConfig `yaml:"index"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ChainConfig contains configuration for the in-memory hash chain.
type ChainConfig struct {
	// Capacity is the number of most recent chain entries kept in memory.
	// Default: 10000
	Capacity int `yaml:"capacity"`

	// ResumeFromDisk continues the chain from the newest persisted record
	// instead of starting from the genesis hash.
	// Default: false
	ResumeFromDisk bool `yaml:"resume_from_disk"`
}

// ComplianceConfig contains configuration for compliance evaluation.
type ComplianceConfig struct {
	// Enabled attaches a compliance section to every record.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// RequiredFields must be present in every event's data.
	// Default: none
	RequiredFields []string `yaml:"required_fields"`

	// Frameworks toggles the regulatory frameworks evaluated per event.
	// Keys: "sox", "gdpr", "hipaa", "pci_dss"
	// Default: sox and gdpr enabled
	Frameworks audit.FrameworkConfig `yaml:"frameworks"`
}

// RetentionConfig contains configuration for log file retention.
type RetentionConfig struct {
	// Policy maps a file category to its retention window in days.
	// Entries in the file are merged over the defaults.
	Policy audit.RetentionPolicy `yaml:"policy"`

	// Schedule is the cron expression for automatic cleanup.
	// An empty schedule disables scheduled cleanup.
	// Default: "0 3 * * *" (daily at 3 AM)
	Schedule string `yaml:"schedule"`
}

// IndexConfig contains configuration for the SQLite record index.
type IndexConfig struct {
	// Enabled mirrors every persisted record into the index.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the database file path.
	// Default: "<log_dir>/audit-index.db"
	Path string `yaml:"path"`

	// WALMode enables Write-Ahead Logging mode.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains diagnostic logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks tokens, keys and email addresses in log attributes.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`

	// RedactPatterns contains custom redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address of the metrics HTTP server started by
	// long-running commands.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "auditlog"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "ledger"
	Subsystem string `yaml:"subsystem"`
}

// TracingConfig contains configuration for OpenTelemetry tracing of ledger
// operations. Spans are exported over OTLP gRPC.
type TracingConfig struct {
	// Enabled controls whether spans are recorded and exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "auditlog"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the collector connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export request.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
