package policy

import (
	"regexp"
	"strings"
	"sync"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
)

// AllCategories is the allow-list value that matches every category.
const AllCategories = "all"

// FilterType selects whether a pattern filter includes or excludes.
type FilterType string

const (
	FilterInclude FilterType = "include"
	FilterExclude FilterType = "exclude"
)

// PatternFilter is one ordered include/exclude rule.
type PatternFilter struct {
	Type    FilterType `json:"type" yaml:"type"`
	Pattern string     `json:"pattern" yaml:"pattern"`
}

// DebugPolicy decides which events are recorded.
type DebugPolicy struct {
	// Level is the severity threshold. Events more verbose than it are dropped.
	Level audit.Level `json:"level" yaml:"level"`

	// DebugMode gates debug and trace independently of Level.
	DebugMode bool `json:"debug_mode" yaml:"debug_mode"`

	// Categories is the allow-list. ["all"] matches every category.
	Categories []string `json:"categories" yaml:"categories"`

	// Filters are evaluated after the allow-list.
	Filters []PatternFilter `json:"filters" yaml:"filters"`
}

// DefaultDebugPolicy returns threshold info, debug mode off, every category
// allowed and no filters.
func DefaultDebugPolicy() DebugPolicy {
	return DebugPolicy{
		Level:      audit.LevelInfo,
		DebugMode:  false,
		Categories: []string{AllCategories},
		Filters:    []PatternFilter{},
	}
}

// clone returns a deep copy so callers never share slices with the filter.
func (p DebugPolicy) clone() DebugPolicy {
	out := p
	out.Categories = append([]string(nil), p.Categories...)
	out.Filters = append([]PatternFilter(nil), p.Filters...)
	return out
}

// PolicyUpdate is a partial policy for Configure. Nil fields are left untouched.
type PolicyUpdate struct {
	Level      *audit.Level    `json:"level,omitempty" yaml:"level,omitempty"`
	DebugMode  *bool           `json:"debug_mode,omitempty" yaml:"debug_mode,omitempty"`
	Categories []string        `json:"categories,omitempty" yaml:"categories,omitempty"`
	Filters    []PatternFilter `json:"filters,omitempty" yaml:"filters,omitempty"`
}

// Filter evaluates a DebugPolicy. It performs no I/O; mutators only change
// the policy it holds. Filter is safe for concurrent use.
type Filter struct {
	mu       sync.RWMutex
	policy   DebugPolicy
	compiled map[string]*regexp.Regexp
}

// NewFilter creates a filter over a copy of policy.
func NewFilter(policy DebugPolicy) *Filter {
	f := &Filter{}
	f.set(policy)
	return f
}

// set replaces the policy and recompiles patterns. Caller holds mu or owns f.
func (f *Filter) set(policy DebugPolicy) {
	if !policy.Level.Valid() {
		policy.Level = audit.LevelInfo
	}
	if len(policy.Categories) == 0 {
		policy.Categories = []string{AllCategories}
	}
	f.policy = policy.clone()
	f.compile()
}

func (f *Filter) compile() {
	f.compiled = make(map[string]*regexp.Regexp, len(f.policy.Filters))
	for _, pf := range f.policy.Filters {
		if re, err := regexp.Compile(pf.Pattern); err == nil {
			f.compiled[pf.Pattern] = re
		}
	}
}

// ShouldLog reports whether an event at level in category is recorded.
func (f *Filter) ShouldLog(level audit.Level, category string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !level.Valid() {
		return false
	}
	if level.IsVerbose() && !f.policy.DebugMode {
		return false
	}
	if level.Severity() > f.policy.Level.Severity() {
		return false
	}
	if !f.categoryAllowed(category) {
		return false
	}
	return f.passesFilters(category)
}

func (f *Filter) categoryAllowed(category string) bool {
	for _, c := range f.policy.Categories {
		if c == AllCategories || c == category {
			return true
		}
	}
	return false
}

// passesFilters applies the pattern filters: any matching exclude rejects;
// when include filters exist, at least one must match.
func (f *Filter) passesFilters(category string) bool {
	hasInclude := false
	included := false

	for _, pf := range f.policy.Filters {
		matched := f.matches(pf.Pattern, category)
		switch pf.Type {
		case FilterExclude:
			if matched {
				return false
			}
		case FilterInclude:
			hasInclude = true
			if matched {
				included = true
			}
		}
	}

	return !hasInclude || included
}

// matches treats pattern as a regular expression, or as a substring when
// it does not compile.
func (f *Filter) matches(pattern, category string) bool {
	if re, ok := f.compiled[pattern]; ok {
		return re.MatchString(category)
	}
	return strings.Contains(category, pattern)
}

// EnableDebugMode turns debug mode on and raises the threshold to at least
// debug. Non-empty categories replace the allow-list.
func (f *Filter) EnableDebugMode(categories ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.policy.DebugMode = true
	if f.policy.Level.Severity() < audit.LevelDebug.Severity() {
		f.policy.Level = audit.LevelDebug
	}
	if len(categories) > 0 {
		f.policy.Categories = append([]string(nil), categories...)
	}
}

// DisableDebugMode turns debug mode off and relaxes the threshold to info.
func (f *Filter) DisableDebugMode() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.policy.DebugMode = false
	f.policy.Level = audit.LevelInfo
}

// AddCategory adds category to the allow-list. Adding to an ["all"]
// allow-list replaces it, narrowing logging to the named categories.
func (f *Filter) AddCategory(category string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if category == AllCategories {
		f.policy.Categories = []string{AllCategories}
		return
	}
	if len(f.policy.Categories) == 1 && f.policy.Categories[0] == AllCategories {
		f.policy.Categories = nil
	}
	for _, c := range f.policy.Categories {
		if c == category {
			return
		}
	}
	f.policy.Categories = append(f.policy.Categories, category)
}

// RemoveCategory removes category from the allow-list. An emptied
// allow-list falls back to ["all"].
func (f *Filter) RemoveCategory(category string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.policy.Categories[:0:0]
	for _, c := range f.policy.Categories {
		if c != category {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		kept = []string{AllCategories}
	}
	f.policy.Categories = kept
}

// AddFilter appends a pattern filter.
func (f *Filter) AddFilter(filterType FilterType, pattern string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.policy.Filters = append(f.policy.Filters, PatternFilter{Type: filterType, Pattern: pattern})
	f.compile()
}

// RemoveFilter removes every filter whose pattern contains substr and
// returns how many were removed.
func (f *Filter) RemoveFilter(substr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := make([]PatternFilter, 0, len(f.policy.Filters))
	for _, pf := range f.policy.Filters {
		if !strings.Contains(pf.Pattern, substr) {
			kept = append(kept, pf)
		}
	}
	removed := len(f.policy.Filters) - len(kept)
	f.policy.Filters = kept
	f.compile()
	return removed
}

// Configure applies a partial update. Only non-nil fields change.
func (f *Filter) Configure(update PolicyUpdate) {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.policy.clone()
	if update.Level != nil && update.Level.Valid() {
		next.Level = *update.Level
	}
	if update.DebugMode != nil {
		next.DebugMode = *update.DebugMode
	}
	if update.Categories != nil {
		next.Categories = update.Categories
	}
	if update.Filters != nil {
		next.Filters = update.Filters
	}
	f.set(next)
}

// Replace swaps in a complete policy.
func (f *Filter) Replace(policy DebugPolicy) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set(policy)
}

// Snapshot returns a copy of the current policy.
func (f *Filter) Snapshot() DebugPolicy {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.policy.clone()
}

// TestResult shows the verdict of every level for one category.
type TestResult struct {
	Category string               `json:"category"`
	Policy   DebugPolicy          `json:"policy"`
	Levels   map[audit.Level]bool `json:"levels"`
}

// Test evaluates every level against category under the current policy.
func (f *Filter) Test(category string) TestResult {
	result := TestResult{
		Category: category,
		Policy:   f.Snapshot(),
		Levels:   make(map[audit.Level]bool, len(audit.Levels)),
	}
	for _, l := range audit.Levels {
		result.Levels[l] = f.ShouldLog(l, category)
	}
	return result
}
