package integrity

import (
	"context"
	"math"
	"time"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
)

// ReportOptions selects the records and frameworks of a compliance report.
type ReportOptions struct {
	// Period limits the report to records whose timestamp falls inside it.
	Period audit.Period

	// Frameworks receive one sub-report each.
	Frameworks []audit.Framework

	// Now stamps the report.
	// Default: time.Now
	Now func() time.Time
}

// ComplianceReport scans persisted records inside the period and
// aggregates their compliance. A record is compliant iff it carries no
// validation errors. Each framework sub-report is compliant iff every
// record that evaluated the framework found it compliant.
func (v *Verifier) ComplianceReport(ctx context.Context, opts ReportOptions) *audit.ComplianceReport {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	report := &audit.ComplianceReport{
		GeneratedAt: now().UTC(),
		Period:      opts.Period,
		Frameworks:  make(map[audit.Framework]audit.FrameworkReport, len(opts.Frameworks)),
		Errors:      []string{},
	}
	for _, f := range opts.Frameworks {
		report.Frameworks[f] = audit.FrameworkReport{Framework: f, Compliant: true}
	}

	files, err := v.scanner.Files()
	if err != nil {
		v.logger.Error("failed to list log files", "error", err)
		report.Errors = append(report.Errors, err.Error())
		return report
	}

	for _, path := range files {
		errs := v.scanner.ScanFile(ctx, path, func(line Line) {
			rec := line.Record

			ts, err := audit.ParseTimestamp(rec.Timestamp)
			if err != nil {
				report.Errors = append(report.Errors, audit.NewParseError(line.File, line.Number, err).Error())
				return
			}
			if !opts.Period.Contains(ts) {
				return
			}

			report.Summary.TotalEvents++
			if rec.Compliance == nil || rec.Compliance.Valid() {
				report.Summary.CompliantEvents++
			} else {
				report.Summary.NonCompliantEvents++
			}

			if rec.Compliance == nil {
				return
			}
			for f, fr := range report.Frameworks {
				result, ok := rec.Compliance.Frameworks[f]
				if !ok {
					continue
				}
				fr.EventsEvaluated++
				if result.Compliant {
					fr.CompliantEvents++
				} else {
					fr.Compliant = false
				}
				report.Frameworks[f] = fr
			}
		})
		for _, err := range errs {
			report.Errors = append(report.Errors, err.Error())
		}
	}

	if report.Summary.TotalEvents > 0 {
		rate := float64(report.Summary.CompliantEvents) / float64(report.Summary.TotalEvents) * 100
		report.Summary.ComplianceRate = math.Round(rate*100) / 100
	}

	v.logger.Info("compliance report generated",
		"total_events", report.Summary.TotalEvents,
		"compliant_events", report.Summary.CompliantEvents,
		"compliance_rate", report.Summary.ComplianceRate,
		"errors", len(report.Errors),
	)

	return report
}
