package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
	"github.com/DikshantJo/code-review-sub002/pkg/config"
)

// RetentionMetrics tracks retention cleanup.
//
// Metrics:
//   - auditlog_ledger_cleanup_runs_total: cleanup passes by result
//   - auditlog_ledger_cleanup_files_removed_total: expired files deleted
//   - auditlog_ledger_cleanup_bytes_freed_total: bytes reclaimed
//   - auditlog_ledger_cleanup_errors_total: per-file cleanup failures
//   - auditlog_ledger_cleanup_duration_seconds: cleanup pass duration
//   - auditlog_ledger_cleanup_last_run_timestamp_seconds: end of the last pass
type RetentionMetrics struct {
	runsTotal    *prometheus.CounterVec
	filesRemoved prometheus.Counter
	bytesFreed   prometheus.Counter
	errorsTotal  prometheus.Counter
	duration     prometheus.Histogram
	lastRun      prometheus.Gauge
}

// NewRetentionMetrics creates and registers retention metrics with the provided registry.
func NewRetentionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RetentionMetrics {
	rm := &RetentionMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cleanup_runs_total",
				Help:      "Total number of retention cleanup passes",
			},
			[]string{"result"},
		),

		filesRemoved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cleanup_files_removed_total",
				Help:      "Total number of expired log files removed",
			},
		),

		bytesFreed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cleanup_bytes_freed_total",
				Help:      "Total bytes reclaimed by retention cleanup",
			},
		),

		errorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cleanup_errors_total",
				Help:      "Total number of errors reported by retention cleanup",
			},
		),

		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cleanup_duration_seconds",
				Help:      "Duration of retention cleanup passes in seconds",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30},
			},
		),

		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cleanup_last_run_timestamp_seconds",
				Help:      "Unix time at which the last cleanup pass finished",
			},
		),
	}

	registry.MustRegister(
		rm.runsTotal,
		rm.filesRemoved,
		rm.bytesFreed,
		rm.errorsTotal,
		rm.duration,
		rm.lastRun,
	)

	return rm
}

// RecordCleanup records one cleanup pass.
func (rm *RetentionMetrics) RecordCleanup(result audit.CleanupResult, duration time.Duration) {
	status := "success"
	if len(result.Errors) > 0 {
		status = "partial"
	}
	rm.runsTotal.WithLabelValues(status).Inc()
	rm.filesRemoved.Add(float64(result.FilesRemoved))
	rm.bytesFreed.Add(float64(result.SpaceFreed))
	rm.errorsTotal.Add(float64(len(result.Errors)))
	rm.duration.Observe(duration.Seconds())
	rm.lastRun.SetToCurrentTime()
}
