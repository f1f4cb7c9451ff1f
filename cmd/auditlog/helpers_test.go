package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
	"github.com/DikshantJo/code-review-sub002/pkg/cli"
	"github.com/DikshantJo/code-review-sub002/pkg/config"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantStart bool
		wantEnd   bool
		wantErr   bool
	}{
		{name: "empty", input: ""},
		{name: "closed", input: "2024-06-01T00:00:00Z/2024-07-01T00:00:00Z", wantStart: true, wantEnd: true},
		{name: "open end", input: "2024-06-01T00:00:00Z/", wantStart: true},
		{name: "open start", input: "/2024-07-01T00:00:00Z", wantEnd: true},
		{name: "missing separator", input: "2024-06-01T00:00:00Z", wantErr: true},
		{name: "bad start", input: "yesterday/", wantErr: true},
		{name: "end before start", input: "2024-07-01T00:00:00Z/2024-06-01T00:00:00Z", wantErr: true},
		{name: "empty interval", input: "2024-06-01T00:00:00Z/2024-06-01T00:00:00Z", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := parsePeriod(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePeriod(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (p.Start != nil) != tt.wantStart || (p.End != nil) != tt.wantEnd {
				t.Errorf("parsePeriod(%q) = start %v end %v", tt.input, p.Start, p.End)
			}
		})
	}
}

func TestParseFields(t *testing.T) {
	fields, err := parseFields([]string{"user=alice", "pr=42", "ratio=0.5", "draft=false", "flag=t", "query=a=b", "x=NaN", "y=-Inf", "z=+infinity"})
	if err != nil {
		t.Fatalf("parseFields() failed: %v", err)
	}

	want := audit.Fields{
		"user":  "alice",
		"pr":    int64(42),
		"ratio": 0.5,
		"draft": false,
		"flag":  "t",
		"query": "a=b",
		"x":     "NaN",
		"y":     "-Inf",
		"z":     "+infinity",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("fields[%s] = %#v, want %#v", k, fields[k], v)
		}
	}

	for _, bad := range []string{"novalue", "=x"} {
		if _, err := parseFields([]string{bad}); err == nil {
			t.Errorf("parseFields(%q) should fail", bad)
		}
	}
}

func TestParseRetention(t *testing.T) {
	policy, err := parseRetention([]string{"error_logs=7", " performance_logs = 1 "})
	if err != nil {
		t.Fatalf("parseRetention() failed: %v", err)
	}
	if len(policy) != 2 || policy[audit.CategoryErrorLogs] != 7 || policy[audit.CategoryPerformanceLogs] != 1 {
		t.Errorf("unexpected policy: %v", policy)
	}

	tests := []string{"error_logs", "debug_logs=7", "error_logs=week", "error_logs=-1"}
	for _, input := range tests {
		if _, err := parseRetention([]string{input}); err == nil {
			t.Errorf("parseRetention(%q) should fail", input)
		}
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	dir := t.TempDir()

	cfgFile, logDir, logLevel, logFormat = "", dir, "debug", "text"
	defer func() { cfgFile, logDir, logLevel, logFormat = "", "", "", "" }()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() failed: %v", err)
	}
	if cfg.LogDir != dir {
		t.Errorf("Expected log dir %s, got %s", dir, cfg.LogDir)
	}
	if want := filepath.Join(dir, config.DefaultIndexFile); cfg.Index.Path != want {
		t.Errorf("Expected index path %s, got %s", want, cfg.Index.Path)
	}
	if cfg.Telemetry.Logging.Level != "debug" || cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("logging overrides not applied: %+v", cfg.Telemetry.Logging)
	}

	logLevel = "verbose"
	if _, err := loadConfig(); cli.ExitCode(err) != cli.ExitUsage {
		t.Errorf("Expected usage error for an invalid level, got %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "auditlog.yaml")
	content := "log_dir: " + filepath.Join(dir, "trail") + "\nindex:\n  path: /var/lib/auditlog/index.db\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfgFile, logDir = path, filepath.Join(dir, "override")
	defer func() { cfgFile, logDir = "", "" }()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() failed: %v", err)
	}
	if cfg.LogDir != logDir {
		t.Errorf("Expected log dir %s, got %s", logDir, cfg.LogDir)
	}
	if cfg.Index.Path != "/var/lib/auditlog/index.db" {
		t.Errorf("explicit index path was moved: %s", cfg.Index.Path)
	}

	cfgFile = filepath.Join(dir, "missing.yaml")
	if _, err := loadConfig(); cli.ExitCode(err) != cli.ExitUsage {
		t.Errorf("Expected usage error for a missing file, got %v", err)
	}
}
