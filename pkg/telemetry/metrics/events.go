package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/DikshantJo/code-review-sub002/pkg/config"
)

// EventMetrics tracks the append path.
//
// Metrics:
//   - auditlog_ledger_events_total: LogEvent calls by level, category and outcome
//   - auditlog_ledger_event_types_total: LogEvent calls by event type
//   - auditlog_ledger_append_duration_seconds: time to build and append a record
//   - auditlog_ledger_record_size_bytes: size of persisted records
//   - auditlog_ledger_rotations_total: size-triggered rotations by category
//   - auditlog_ledger_index_errors_total: failed index operations
//   - auditlog_ledger_compliance_violations_total: non-compliant events by framework
//   - auditlog_ledger_chain_length: entries held by the in-memory chain
type EventMetrics struct {
	eventsTotal      *prometheus.CounterVec
	eventTypesTotal  *prometheus.CounterVec
	appendDuration   *prometheus.HistogramVec
	recordSize       prometheus.Histogram
	rotationsTotal   *prometheus.CounterVec
	indexErrorsTotal *prometheus.CounterVec
	violationsTotal  *prometheus.CounterVec
	chainLength      prometheus.Gauge
}

// NewEventMetrics creates and registers append path metrics with the provided registry.
func NewEventMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EventMetrics {
	em := &EventMetrics{
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "events_total",
				Help:      "Total number of audit events by level, category and outcome",
			},
			[]string{"level", "category", "outcome"},
		),

		eventTypesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "event_types_total",
				Help:      "Total number of audit events by event type",
			},
			[]string{"event_type"},
		),

		appendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "append_duration_seconds",
				Help:      "Duration of record construction and append in seconds",
				// Appends are a hash and a file write (10µs - 160ms)
				Buckets: prometheus.ExponentialBuckets(0.00001, 2, 15),
			},
			[]string{"outcome"},
		),

		recordSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "record_size_bytes",
				Help:      "Size of persisted audit records in bytes",
				Buckets:   prometheus.ExponentialBuckets(256, 2, 10), // 256B to 128KB
			},
		),

		rotationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rotations_total",
				Help:      "Total number of size-triggered log file rotations",
			},
			[]string{"category"},
		),

		indexErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "index_errors_total",
				Help:      "Total number of failed index operations",
			},
			[]string{"operation"},
		),

		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "compliance_violations_total",
				Help:      "Total number of events that failed a framework's checks",
			},
			[]string{"framework"},
		),

		chainLength: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "chain_length",
				Help:      "Number of entries held by the in-memory hash chain",
			},
		),
	}

	registry.MustRegister(
		em.eventsTotal,
		em.eventTypesTotal,
		em.appendDuration,
		em.recordSize,
		em.rotationsTotal,
		em.indexErrorsTotal,
		em.violationsTotal,
		em.chainLength,
	)

	return em
}

// RecordEvent records one LogEvent call.
func (em *EventMetrics) RecordEvent(level, category, eventType, outcome string, duration time.Duration, size int) {
	em.eventsTotal.WithLabelValues(level, category, outcome).Inc()
	em.eventTypesTotal.WithLabelValues(eventType).Inc()

	if outcome == OutcomeFiltered {
		return
	}
	em.appendDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	if size > 0 {
		em.recordSize.Observe(float64(size))
	}
}
