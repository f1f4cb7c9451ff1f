// Package compliance evaluates regulatory framework checks for audit events.
//
// The checks model the presence of required context, not legal
// correctness. Identity-bound checks pass when the event carries a user
// and a repository; the remaining checks always pass. With minimal context
// present every framework is therefore compliant.
package compliance

import (
	"sort"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
)

// check is one named presence check.
type check struct {
	name string
	// identity checks need a user and a repository in the event.
	identity bool
}

// frameworkChecks holds the fixed named checks of every framework.
var frameworkChecks = map[audit.Framework][]check{
	audit.FrameworkSOX: {
		{name: "access_control", identity: true},
		{name: "change_management", identity: true},
		{name: "data_integrity"},
		{name: "audit_trail", identity: true},
	},
	audit.FrameworkGDPR: {
		{name: "data_minimization"},
		{name: "purpose_limitation", identity: true},
		{name: "storage_limitation"},
		{name: "data_protection"},
	},
	audit.FrameworkHIPAA: {
		{name: "phi_protection"},
		{name: "access_controls", identity: true},
		{name: "audit_logs", identity: true},
		{name: "encryption"},
	},
	audit.FrameworkPCIDSS: {
		{name: "card_data_protection"},
		{name: "access_control", identity: true},
		{name: "monitoring", identity: true},
		{name: "encryption"},
	},
}

// CheckNames returns the sorted check names of a framework.
func CheckNames(f audit.Framework) []string {
	checks := frameworkChecks[f]
	names := make([]string, 0, len(checks))
	for _, c := range checks {
		names = append(names, c.name)
	}
	sort.Strings(names)
	return names
}

// Evaluator computes per-framework verdicts. It holds no state and is safe
// for concurrent use.
type Evaluator struct{}

// NewEvaluator creates a new compliance evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate runs the checks of every enabled framework against one event.
// A framework is compliant iff all of its checks pass. Unknown frameworks
// are ignored.
func (e *Evaluator) Evaluate(data, fields audit.Fields, enabled []audit.Framework) map[audit.Framework]audit.FrameworkResult {
	minimal := HasMinimalContext(data, fields)

	results := make(map[audit.Framework]audit.FrameworkResult, len(enabled))
	for _, f := range enabled {
		checks, ok := frameworkChecks[f]
		if !ok {
			continue
		}

		result := audit.FrameworkResult{
			Compliant: true,
			Checks:    make(map[string]bool, len(checks)),
		}
		for _, c := range checks {
			passed := !c.identity || minimal
			result.Checks[c.name] = passed
			result.Compliant = result.Compliant && passed
		}
		results[f] = result
	}
	return results
}

// ValidateRequired returns one ConfigurationError per required field
// missing from data.
func (e *Evaluator) ValidateRequired(data audit.Fields, required []string) []error {
	var errs []error
	for _, field := range required {
		if !data.Has(field) {
			errs = append(errs, audit.NewConfigurationError(field))
		}
	}
	return errs
}

// HasMinimalContext reports whether the event names a user and a
// repository, looked up in fields first and then in data.
func HasMinimalContext(data, fields audit.Fields) bool {
	return lookup(data, fields, "user") && lookup(data, fields, "repository")
}

func lookup(data, fields audit.Fields, key string) bool {
	if _, ok := fields.String(key); ok {
		return true
	}
	_, ok := data.String(key)
	return ok
}
