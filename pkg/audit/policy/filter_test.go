package policy

import (
	"testing"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
)

func TestFilter_DefaultThreshold(t *testing.T) {
	f := NewFilter(DefaultDebugPolicy())

	tests := []struct {
		level audit.Level
		want  bool
	}{
		{audit.LevelError, true},
		{audit.LevelWarn, true},
		{audit.LevelInfo, true},
		{audit.LevelDebug, false},
		{audit.LevelTrace, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			if got := f.ShouldLog(tt.level, "ai-review"); got != tt.want {
				t.Errorf("ShouldLog(%s) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestFilter_DebugModeGatesVerboseLevels(t *testing.T) {
	p := DefaultDebugPolicy()
	p.Level = audit.LevelDebug
	p.DebugMode = false
	f := NewFilter(p)

	if f.ShouldLog(audit.LevelDebug, "ai-review") {
		t.Error("debug should be blocked while debug mode is disabled")
	}
	if !f.ShouldLog(audit.LevelInfo, "ai-review") {
		t.Error("info should pass with threshold debug")
	}

	f.Configure(PolicyUpdate{DebugMode: boolPtr(true)})
	if !f.ShouldLog(audit.LevelDebug, "ai-review") {
		t.Error("debug should pass once debug mode is enabled")
	}
	if f.ShouldLog(audit.LevelTrace, "ai-review") {
		t.Error("trace should still be blocked by threshold debug")
	}
}

func TestFilter_UnknownLevel(t *testing.T) {
	f := NewFilter(DefaultDebugPolicy())
	if f.ShouldLog(audit.Level("fatal"), "x") {
		t.Error("unknown level should never be logged")
	}
}

func TestFilter_PatternFilters(t *testing.T) {
	p := DefaultDebugPolicy()
	p.Filters = []PatternFilter{
		{Type: FilterExclude, Pattern: "sensitive"},
		{Type: FilterInclude, Pattern: "ai-review|file-detection"},
	}
	f := NewFilter(p)

	tests := []struct {
		category string
		want     bool
	}{
		{"ai-review", true},
		{"file-detection", true},
		{"sensitive-data", false},
		{"github-api", false},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			if got := f.ShouldLog(audit.LevelInfo, tt.category); got != tt.want {
				t.Errorf("ShouldLog(info, %q) = %v, want %v", tt.category, got, tt.want)
			}
		})
	}
}

func TestFilter_ExcludeWinsOverInclude(t *testing.T) {
	p := DefaultDebugPolicy()
	p.Filters = []PatternFilter{
		{Type: FilterInclude, Pattern: "review"},
		{Type: FilterExclude, Pattern: "secret"},
	}
	f := NewFilter(p)

	if f.ShouldLog(audit.LevelInfo, "secret-review") {
		t.Error("exclude match should reject regardless of include match")
	}
	if !f.ShouldLog(audit.LevelInfo, "ai-review") {
		t.Error("include match should pass")
	}
}

func TestFilter_InvalidPatternFallsBackToSubstring(t *testing.T) {
	p := DefaultDebugPolicy()
	p.Filters = []PatternFilter{{Type: FilterExclude, Pattern: "tmp[("}}
	f := NewFilter(p)

	if f.ShouldLog(audit.LevelInfo, "xtmp[(y") {
		t.Error("invalid regexp should match as substring")
	}
	if !f.ShouldLog(audit.LevelInfo, "other") {
		t.Error("non-matching category should pass")
	}
}

func TestFilter_CategoryAllowList(t *testing.T) {
	f := NewFilter(DefaultDebugPolicy())

	if !f.ShouldLog(audit.LevelInfo, "anything") {
		t.Error("[\"all\"] should allow any category")
	}

	f.AddCategory("ai-review")
	if f.ShouldLog(audit.LevelInfo, "anything") {
		t.Error("adding a category should narrow an [\"all\"] allow-list")
	}
	if !f.ShouldLog(audit.LevelInfo, "ai-review") {
		t.Error("added category should pass")
	}

	f.AddCategory("ai-review")
	if got := len(f.Snapshot().Categories); got != 1 {
		t.Errorf("duplicate category added, got %d categories", got)
	}

	f.RemoveCategory("ai-review")
	if cats := f.Snapshot().Categories; len(cats) != 1 || cats[0] != AllCategories {
		t.Errorf("emptied allow-list = %v, want [all]", cats)
	}
}

func TestFilter_EnableDisableDebugMode(t *testing.T) {
	f := NewFilter(DefaultDebugPolicy())

	f.EnableDebugMode("ai-review", "file-detection")
	snap := f.Snapshot()
	if !snap.DebugMode || snap.Level != audit.LevelDebug {
		t.Errorf("after enable: debug_mode=%v level=%s", snap.DebugMode, snap.Level)
	}
	if len(snap.Categories) != 2 {
		t.Errorf("Expected 2 categories, got %v", snap.Categories)
	}
	if !f.ShouldLog(audit.LevelDebug, "ai-review") {
		t.Error("debug should pass for allowed category")
	}
	if f.ShouldLog(audit.LevelDebug, "github-api") {
		t.Error("debug should be blocked for category outside allow-list")
	}

	f.DisableDebugMode()
	snap = f.Snapshot()
	if snap.DebugMode || snap.Level != audit.LevelInfo {
		t.Errorf("after disable: debug_mode=%v level=%s", snap.DebugMode, snap.Level)
	}
	if len(snap.Categories) != 2 {
		t.Error("disabling debug mode should not touch categories")
	}
}

func TestFilter_EnableKeepsTraceThreshold(t *testing.T) {
	p := DefaultDebugPolicy()
	p.Level = audit.LevelTrace
	f := NewFilter(p)

	f.EnableDebugMode()
	if got := f.Snapshot().Level; got != audit.LevelTrace {
		t.Errorf("EnableDebugMode lowered threshold to %s", got)
	}
	if !f.ShouldLog(audit.LevelTrace, "x") {
		t.Error("trace should pass with threshold trace and debug mode on")
	}
}

func TestFilter_AddRemoveFilter(t *testing.T) {
	f := NewFilter(DefaultDebugPolicy())

	f.AddFilter(FilterExclude, "sensitive")
	f.AddFilter(FilterExclude, "sensitive-extra")
	f.AddFilter(FilterInclude, "review")

	if removed := f.RemoveFilter("sensitive"); removed != 2 {
		t.Errorf("RemoveFilter() removed %d, want 2", removed)
	}
	filters := f.Snapshot().Filters
	if len(filters) != 1 || filters[0].Pattern != "review" {
		t.Errorf("remaining filters = %+v", filters)
	}
	if !f.ShouldLog(audit.LevelInfo, "sensitive-review") {
		t.Error("removed exclude filter still applied")
	}
}

func TestFilter_ConfigureIsShallowMerge(t *testing.T) {
	p := DefaultDebugPolicy()
	p.Categories = []string{"ai-review"}
	p.Filters = []PatternFilter{{Type: FilterExclude, Pattern: "x"}}
	f := NewFilter(p)

	level := audit.LevelWarn
	f.Configure(PolicyUpdate{Level: &level})

	snap := f.Snapshot()
	if snap.Level != audit.LevelWarn {
		t.Errorf("Level = %s, want warn", snap.Level)
	}
	if len(snap.Categories) != 1 || snap.Categories[0] != "ai-review" {
		t.Errorf("Configure clobbered categories: %v", snap.Categories)
	}
	if len(snap.Filters) != 1 {
		t.Errorf("Configure clobbered filters: %v", snap.Filters)
	}
}

func TestFilter_SnapshotIsCopy(t *testing.T) {
	f := NewFilter(DefaultDebugPolicy())

	snap := f.Snapshot()
	snap.Categories[0] = "mutated"

	if f.Snapshot().Categories[0] != AllCategories {
		t.Error("mutating a snapshot changed the filter")
	}
}

func TestFilter_Test(t *testing.T) {
	f := NewFilter(DefaultDebugPolicy())

	result := f.Test("ai-review")
	if result.Category != "ai-review" {
		t.Errorf("Category = %q", result.Category)
	}
	if len(result.Levels) != len(audit.Levels) {
		t.Fatalf("Expected %d levels, got %d", len(audit.Levels), len(result.Levels))
	}
	if !result.Levels[audit.LevelInfo] || result.Levels[audit.LevelDebug] {
		t.Errorf("unexpected verdicts: %v", result.Levels)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
