package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
	"github.com/DikshantJo/code-review-sub002/pkg/config"
)

// IntegrityMetrics tracks audit trail verification.
//
// Metrics:
//   - auditlog_ledger_verify_runs_total: verification passes by result
//   - auditlog_ledger_verify_entries_total: records checked
//   - auditlog_ledger_verify_errors_total: problems found
//   - auditlog_ledger_verify_duration_seconds: verification pass duration
type IntegrityMetrics struct {
	runsTotal     *prometheus.CounterVec
	entriesTotal  prometheus.Counter
	errorsTotal   prometheus.Counter
	verifyLatency prometheus.Histogram
}

// NewIntegrityMetrics creates and registers verification metrics with the provided registry.
func NewIntegrityMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *IntegrityMetrics {
	im := &IntegrityMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "verify_runs_total",
				Help:      "Total number of audit trail verification passes",
			},
			[]string{"result"},
		),

		entriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "verify_entries_total",
				Help:      "Total number of records checked by verification",
			},
		),

		errorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "verify_errors_total",
				Help:      "Total number of integrity problems found by verification",
			},
		),

		verifyLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "verify_duration_seconds",
				Help:      "Duration of verification passes in seconds",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
			},
		),
	}

	registry.MustRegister(
		im.runsTotal,
		im.entriesTotal,
		im.errorsTotal,
		im.verifyLatency,
	)

	return im
}

// RecordVerify records one verification pass.
func (im *IntegrityMetrics) RecordVerify(result audit.VerifyResult, duration time.Duration) {
	status := "verified"
	if !result.Verified {
		status = "failed"
	}
	im.runsTotal.WithLabelValues(status).Inc()
	im.entriesTotal.Add(float64(result.EntriesVerified))
	im.errorsTotal.Add(float64(len(result.Errors)))
	im.verifyLatency.Observe(duration.Seconds())
}
