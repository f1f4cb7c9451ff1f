package ledger

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/chain"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/integrity"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/policy"
	"github.com/DikshantJo/code-review-sub002/pkg/config"
	"github.com/DikshantJo/code-review-sub002/pkg/telemetry/tracing"
)

// CheckRegulatoryCompliance builds the compliance section for one event
// using the currently enabled frameworks and required fields. It is what
// LogEvent attaches to records in compliance mode.
func (l *Ledger) CheckRegulatoryCompliance(data, fields audit.Fields) audit.ComplianceSection {
	l.settingsMu.RLock()
	enabled := l.frameworks.Enabled()
	required := append([]string(nil), l.requiredFields...)
	l.settingsMu.RUnlock()

	section := audit.ComplianceSection{
		Frameworks:       l.evaluator.Evaluate(data, fields, enabled),
		ValidationErrors: []string{},
	}

	for _, err := range l.evaluator.ValidateRequired(data, required) {
		section.ValidationErrors = append(section.ValidationErrors, err.Error())
	}

	if data == nil {
		data = audit.Fields{}
	}
	digest, err := chain.DataIntegrity(data)
	if err != nil {
		section.ValidationErrors = append(section.ValidationErrors, "data_integrity: "+err.Error())
	} else {
		section.DataIntegrity = digest
	}

	return section
}

// PerformDataRetentionCleanup deletes expired log files under the current
// retention policy.
func (l *Ledger) PerformDataRetentionCleanup(ctx context.Context) audit.CleanupResult {
	ctx, span := l.tracer.Start(ctx, tracing.SpanCleanup)
	defer span.End()

	start := time.Now()
	result := l.retention.Cleanup(ctx, l.RetentionPolicy())
	l.metrics.RecordCleanup(result, time.Since(start))
	tracing.SetCleanupAttributes(span, result.FilesRemoved, result.SpaceFreed)
	return result
}

// VerifyAuditTrailIntegrity re-derives the hash and data digest of every
// persisted record.
func (l *Ledger) VerifyAuditTrailIntegrity(ctx context.Context) audit.VerifyResult {
	ctx, span := l.tracer.Start(ctx, tracing.SpanVerify)
	defer span.End()

	start := time.Now()
	result := l.verifier.Verify(ctx)
	l.metrics.RecordVerify(result, time.Since(start))
	tracing.SetVerifyAttributes(span, result.FilesChecked, result.EntriesVerified, len(result.Errors))
	if !result.Verified {
		l.logger.Warn("audit trail verification failed",
			"files_checked", result.FilesChecked,
			"entries_verified", result.EntriesVerified,
			"errors", len(result.Errors),
		)
	}
	return result
}

// GenerateComplianceReport summarizes the persisted records in the
// requested period. Without explicit frameworks, one sub-report is built
// per framework enabled at report time.
func (l *Ledger) GenerateComplianceReport(ctx context.Context, opts integrity.ReportOptions) *audit.ComplianceReport {
	if len(opts.Frameworks) == 0 {
		l.settingsMu.RLock()
		opts.Frameworks = l.frameworks.Enabled()
		l.settingsMu.RUnlock()
	}
	if opts.Now == nil {
		opts.Now = l.now
	}

	ctx, span := l.tracer.Start(ctx, tracing.SpanReport)
	defer span.End()

	report := l.verifier.ComplianceReport(ctx, opts)
	span.SetAttributes(attribute.Int(tracing.AttrEventsTotal, report.Summary.TotalEvents))
	return report
}

// SetDataRetentionPolicy merges partial over the retention policy.
// Categories absent from partial keep their window.
func (l *Ledger) SetDataRetentionPolicy(partial audit.RetentionPolicy) {
	l.settingsMu.Lock()
	defer l.settingsMu.Unlock()
	l.retentionDays.Merge(partial)
}

// RetentionPolicy returns a copy of the retention policy.
func (l *Ledger) RetentionPolicy() audit.RetentionPolicy {
	l.settingsMu.RLock()
	defer l.settingsMu.RUnlock()
	return l.retentionDays.Clone()
}

// SetRegulatoryCompliance merges partial over the framework toggles.
func (l *Ledger) SetRegulatoryCompliance(partial audit.FrameworkConfig) {
	l.settingsMu.Lock()
	defer l.settingsMu.Unlock()
	l.frameworks.Merge(partial)
}

// RegulatoryCompliance returns a copy of the framework toggles.
func (l *Ledger) RegulatoryCompliance() audit.FrameworkConfig {
	l.settingsMu.RLock()
	defer l.settingsMu.RUnlock()
	return l.frameworks.Clone()
}

// SetComplianceMode turns the per-record compliance section on or off.
func (l *Ledger) SetComplianceMode(enabled bool) {
	l.settingsMu.Lock()
	defer l.settingsMu.Unlock()
	l.complianceMode = enabled
}

// SetRequiredFields replaces the fields every event's data must carry.
func (l *Ledger) SetRequiredFields(fields []string) {
	l.settingsMu.Lock()
	defer l.settingsMu.Unlock()
	l.requiredFields = append([]string{}, fields...)
}

// SetMaxFileSize changes the rotation threshold. Zero disables rotation.
func (l *Ledger) SetMaxFileSize(size int64) {
	l.settingsMu.Lock()
	defer l.settingsMu.Unlock()
	l.maxFileSize = size
}

// ApplyConfig applies a reloaded configuration to the running ledger. The
// debug policy, compliance settings and rotation threshold are replaced;
// retention windows and framework toggles are merged. The log directory,
// chain and index are fixed for the ledger's lifetime.
func (l *Ledger) ApplyConfig(cfg *config.Config) {
	l.filter.Replace(cfg.Debug)

	l.settingsMu.Lock()
	l.complianceMode = cfg.Compliance.Enabled
	l.requiredFields = append([]string{}, cfg.Compliance.RequiredFields...)
	l.frameworks.Merge(cfg.Compliance.Frameworks)
	l.retentionDays.Merge(cfg.Retention.Policy)
	l.maxFileSize = int64(cfg.MaxFileSize)
	l.settingsMu.Unlock()

	l.logger.Info("audit ledger configuration applied",
		"debug_level", cfg.Debug.Level,
		"compliance_mode", cfg.Compliance.Enabled,
		"frameworks", cfg.Compliance.Frameworks.Enabled(),
	)
}

// EnableDebugMode turns debug mode on. Given categories replace the allow-list.
func (l *Ledger) EnableDebugMode(categories ...string) {
	l.filter.EnableDebugMode(categories...)
	l.logger.Info("debug mode enabled", "categories", categories)
}

// DisableDebugMode turns debug mode off and relaxes the threshold to info.
func (l *Ledger) DisableDebugMode() {
	l.filter.DisableDebugMode()
	l.logger.Info("debug mode disabled")
}

// AddDebugCategory adds a category to the allow-list.
func (l *Ledger) AddDebugCategory(category string) {
	l.filter.AddCategory(category)
}

// RemoveDebugCategory removes a category from the allow-list.
func (l *Ledger) RemoveDebugCategory(category string) {
	l.filter.RemoveCategory(category)
}

// AddDebugFilter appends a pattern filter.
func (l *Ledger) AddDebugFilter(filterType policy.FilterType, pattern string) {
	l.filter.AddFilter(filterType, pattern)
}

// RemoveDebugFilter removes every filter whose pattern contains substr and
// returns how many were removed.
func (l *Ledger) RemoveDebugFilter(substr string) int {
	return l.filter.RemoveFilter(substr)
}

// Configure shallow-merges an update into the log policy.
func (l *Ledger) Configure(update policy.PolicyUpdate) {
	l.filter.Configure(update)
}

// DebugConfig returns a copy of the log policy.
func (l *Ledger) DebugConfig() policy.DebugPolicy {
	return l.filter.Snapshot()
}

// TestDebugConfig reports the policy verdict of every level for category.
func (l *Ledger) TestDebugConfig(category string) policy.TestResult {
	return l.filter.Test(category)
}
