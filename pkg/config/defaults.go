package config

import (
	"path/filepath"
	"time"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/policy"
)

// Default values for configuration fields.
const (
	DefaultLogDir      = "logs"
	DefaultMaxFileSize = ByteSize(10 * 1024 * 1024) // 10MiB

	// Chain defaults
	DefaultChainCapacity = 10000

	// Compliance defaults
	DefaultComplianceEnabled = true

	// Retention defaults
	DefaultRetentionSchedule = "0 3 * * *"

	// Index defaults
	DefaultIndexFile        = "audit-index.db"
	DefaultIndexWALMode     = true
	DefaultIndexBusyTimeout = 5 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "json"
	DefaultLoggingRedactSecrets = true
	DefaultMetricsEnabled       = true
	DefaultMetricsListenAddress = "127.0.0.1:9464"
	DefaultPrometheusPath       = "/metrics"
	DefaultMetricsNamespace     = "auditlog"
	DefaultMetricsSubsystem     = "ledger"
	DefaultTracingSampler       = "ratio"
	DefaultTracingSampleRatio   = 0.1
	DefaultTracingServiceName   = "auditlog"
	DefaultTracingTimeout       = 10 * time.Second
)

// Default returns a configuration populated with every default. Loading
// decodes the YAML file over it, so any field the file omits keeps its
// default, including boolean fields whose default is true.
func Default() *Config {
	return &Config{
		LogDir:      DefaultLogDir,
		MaxFileSize: DefaultMaxFileSize,
		Chain: ChainConfig{
			Capacity: DefaultChainCapacity,
		},
		Compliance: ComplianceConfig{
			Enabled:        DefaultComplianceEnabled,
			RequiredFields: []string{},
			Frameworks:     audit.DefaultFrameworkConfig(),
		},
		Retention: RetentionConfig{
			Policy:   audit.DefaultRetentionPolicy(),
			Schedule: DefaultRetentionSchedule,
		},
		Debug: policy.DefaultDebugPolicy(),
		Index: IndexConfig{
			WALMode:     DefaultIndexWALMode,
			BusyTimeout: DefaultIndexBusyTimeout,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:         DefaultLoggingLevel,
				Format:        DefaultLoggingFormat,
				RedactSecrets: DefaultLoggingRedactSecrets,
			},
			Metrics: MetricsConfig{
				Enabled:       DefaultMetricsEnabled,
				ListenAddress: DefaultMetricsListenAddress,
				Path:          DefaultPrometheusPath,
				Namespace:     DefaultMetricsNamespace,
				Subsystem:     DefaultMetricsSubsystem,
			},
			Tracing: TracingConfig{
				Sampler:     DefaultTracingSampler,
				SampleRatio: DefaultTracingSampleRatio,
				ServiceName: DefaultTracingServiceName,
				Timeout:     DefaultTracingTimeout,
			},
		},
	}
}

// ApplyDefaults fills zero-valued fields that have a default. It is
// idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	if cfg.LogDir == "" {
		cfg.LogDir = DefaultLogDir
	}
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}

	if cfg.Chain.Capacity == 0 {
		cfg.Chain.Capacity = DefaultChainCapacity
	}

	if cfg.Compliance.RequiredFields == nil {
		cfg.Compliance.RequiredFields = []string{}
	}
	if cfg.Compliance.Frameworks == nil {
		cfg.Compliance.Frameworks = audit.DefaultFrameworkConfig()
	}

	if cfg.Retention.Policy == nil {
		cfg.Retention.Policy = audit.DefaultRetentionPolicy()
	}

	if cfg.Debug.Level == "" {
		cfg.Debug.Level = audit.LevelInfo
	}
	if len(cfg.Debug.Categories) == 0 {
		cfg.Debug.Categories = []string{policy.AllCategories}
	}

	if cfg.Index.Path == "" {
		cfg.Index.Path = filepath.Join(cfg.LogDir, DefaultIndexFile)
	}
	if cfg.Index.BusyTimeout == 0 {
		cfg.Index.BusyTimeout = DefaultIndexBusyTimeout
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}

	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}

	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
}
