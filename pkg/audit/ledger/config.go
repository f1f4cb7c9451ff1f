package ledger

import (
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/chain"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/policy"
	"github.com/DikshantJo/code-review-sub002/pkg/config"
	"github.com/DikshantJo/code-review-sub002/pkg/telemetry/metrics"
	"github.com/DikshantJo/code-review-sub002/pkg/telemetry/tracing"
)

// Config contains configuration for the audit ledger.
type Config struct {
	// Dir is the directory holding the daily log files.
	// Default: "logs"
	Dir string

	// Fs is the filesystem holding the log files.
	// Default: the OS filesystem
	Fs afero.Fs

	// Logger is the ledger's internal error channel.
	// Default: slog.Default() with component "audit.ledger"
	Logger *slog.Logger

	// Metrics records append, cleanup and verify metrics. Nil disables metrics.
	Metrics *metrics.Collector

	// Tracer traces appends and batch operations. Nil disables tracing.
	Tracer *tracing.Tracer

	// Index mirrors a summary of every persisted record. Nil disables indexing.
	// The ledger closes the index on Close.
	Index audit.Index

	// IndexBuffer is the size of the async index write channel buffer.
	// Default: 1000
	IndexBuffer int

	// WriteTimeout bounds enqueuing and storing one index entry.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// Now returns the current time.
	// Default: time.Now
	Now func() time.Time

	// MaxFileSize is the size above which the active file is rotated before
	// the next append. Zero disables rotation.
	// Default: 10MiB
	MaxFileSize int64

	// ComplianceMode attaches a compliance section to every record.
	// Default: true
	ComplianceMode bool

	// RequiredFields must be present in every event's data.
	RequiredFields []string

	// Retention is the per-category retention window in days.
	Retention audit.RetentionPolicy

	// Frameworks toggles the evaluated regulatory frameworks.
	Frameworks audit.FrameworkConfig

	// Debug is the initial log policy.
	Debug policy.DebugPolicy

	// ChainCapacity is the number of recent chain entries kept in memory.
	// Default: 10000
	ChainCapacity int

	// ResumeFromDisk continues the chain from the newest persisted record
	// instead of starting from the genesis hash.
	ResumeFromDisk bool
}

// DefaultConfig returns the default ledger configuration.
func DefaultConfig() *Config {
	return &Config{
		Dir:            config.DefaultLogDir,
		IndexBuffer:    1000,
		WriteTimeout:   5 * time.Second,
		MaxFileSize:    int64(config.DefaultMaxFileSize),
		ComplianceMode: true,
		RequiredFields: []string{},
		Retention:      audit.DefaultRetentionPolicy(),
		Frameworks:     audit.DefaultFrameworkConfig(),
		Debug:          policy.DefaultDebugPolicy(),
		ChainCapacity:  chain.DefaultCapacity,
	}
}

// FromConfig builds a ledger configuration from the loaded file
// configuration. Fs, Logger, Metrics, Tracer and Index are left for the
// caller.
func FromConfig(cfg *config.Config) *Config {
	c := DefaultConfig()
	c.Dir = cfg.LogDir
	c.MaxFileSize = int64(cfg.MaxFileSize)
	c.ComplianceMode = cfg.Compliance.Enabled
	c.RequiredFields = append([]string{}, cfg.Compliance.RequiredFields...)
	c.Retention.Merge(cfg.Retention.Policy)
	c.Frameworks.Merge(cfg.Compliance.Frameworks)
	c.Debug = cfg.Debug
	c.ChainCapacity = cfg.Chain.Capacity
	c.ResumeFromDisk = cfg.Chain.ResumeFromDisk
	return c
}

func (c *Config) applyDefaults() {
	if c.Dir == "" {
		c.Dir = config.DefaultLogDir
	}
	if c.Fs == nil {
		c.Fs = afero.NewOsFs()
	}
	if c.Logger == nil {
		c.Logger = slog.Default().With("component", "audit.ledger")
	}
	if c.IndexBuffer <= 0 {
		c.IndexBuffer = 1000
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Retention == nil {
		c.Retention = audit.DefaultRetentionPolicy()
	}
	if c.Frameworks == nil {
		c.Frameworks = audit.DefaultFrameworkConfig()
	}
	if c.Debug.Level == "" {
		c.Debug = policy.DefaultDebugPolicy()
	}
	if c.ChainCapacity <= 0 || c.ChainCapacity > chain.DefaultCapacity {
		c.ChainCapacity = chain.DefaultCapacity
	}
}
