package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
	"github.com/DikshantJo/code-review-sub002/pkg/config"
)

// Outcomes of a LogEvent call.
const (
	OutcomePersisted  = "persisted"
	OutcomeFiltered   = "filtered"
	OutcomeWriteError = "write_error"
)

// maxEventTypes bounds the distinct event_type label values.
const maxEventTypes = 1000

// Collector owns every Prometheus metric of the audit ledger. A nil
// *Collector and a collector whose config is disabled are both no-ops, so
// components record unconditionally.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	eventMetrics     *EventMetrics
	retentionMetrics *RetentionMetrics
	integrityMetrics *IntegrityMetrics

	// Cardinality tracking for caller supplied event types
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is used.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "auditlog",
//		Subsystem: "ledger",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		eventMetrics:       NewEventMetrics(cfg, registry),
		retentionMetrics:   NewRetentionMetrics(cfg, registry),
		integrityMetrics:   NewIntegrityMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(maxEventTypes),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordEvent records one LogEvent call.
//
// Parameters:
//   - level: event level ("error", "warn", "info", "debug", "trace")
//   - category: file category the record went to; empty when filtered
//   - eventType: caller supplied event type
//   - outcome: OutcomePersisted, OutcomeFiltered or OutcomeWriteError
//   - duration: time spent appending
//   - size: bytes written, zero unless persisted
func (c *Collector) RecordEvent(level, category, eventType, outcome string, duration time.Duration, size int) {
	if !c.enabled() {
		return
	}

	if !c.cardinalityLimiter.Allow(eventType) {
		eventType = "other"
	}

	c.eventMetrics.RecordEvent(level, category, eventType, outcome, duration, size)
}

// RecordRotation records a size-triggered file rotation.
func (c *Collector) RecordRotation(category string) {
	if !c.enabled() {
		return
	}
	c.eventMetrics.rotationsTotal.WithLabelValues(category).Inc()
}

// RecordIndexError records a failed index operation.
func (c *Collector) RecordIndexError(operation string) {
	if !c.enabled() {
		return
	}
	c.eventMetrics.indexErrorsTotal.WithLabelValues(operation).Inc()
}

// RecordComplianceViolation records an event that failed a framework's checks.
func (c *Collector) RecordComplianceViolation(framework string) {
	if !c.enabled() {
		return
	}
	c.eventMetrics.violationsTotal.WithLabelValues(framework).Inc()
}

// SetChainLength updates the in-memory chain length gauge.
func (c *Collector) SetChainLength(n int) {
	if !c.enabled() {
		return
	}
	c.eventMetrics.chainLength.Set(float64(n))
}

// RecordCleanup records one retention cleanup pass.
func (c *Collector) RecordCleanup(result audit.CleanupResult, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.retentionMetrics.RecordCleanup(result, duration)
}

// RecordVerify records one integrity verification pass.
func (c *Collector) RecordVerify(result audit.VerifyResult, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.integrityMetrics.RecordVerify(result, duration)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label value is allowed. Returns true if the value
// already exists or if the limit has not been reached yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
