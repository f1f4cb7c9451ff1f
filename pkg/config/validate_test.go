package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/policy"
)

func TestValidate_Default(t *testing.T) {
	cfg := Default()
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() failed on defaults: %v", err)
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty log dir", func(c *Config) { c.LogDir = " " }, "log_dir"},
		{"non-positive size", func(c *Config) { c.MaxFileSize = 0 }, "max_file_size"},
		{"zero capacity", func(c *Config) { c.Chain.Capacity = 0 }, "chain.capacity"},
		{"capacity above limit", func(c *Config) { c.Chain.Capacity = 20000 }, "chain.capacity"},
		{"unknown framework", func(c *Config) { c.Compliance.Frameworks["iso27001"] = true }, "compliance.frameworks.iso27001"},
		{"empty required field", func(c *Config) { c.Compliance.RequiredFields = []string{"user", ""} }, "compliance.required_fields[1]"},
		{"unknown category", func(c *Config) { c.Retention.Policy["debug_logs"] = 7 }, "retention.policy.debug_logs"},
		{"negative retention", func(c *Config) { c.Retention.Policy[audit.CategoryErrorLogs] = -1 }, "retention.policy.error_logs"},
		{"bad schedule", func(c *Config) { c.Retention.Schedule = "* * *" }, "retention.schedule"},
		{"bad debug level", func(c *Config) { c.Debug.Level = "verbose" }, "debug.level"},
		{"bad filter type", func(c *Config) {
			c.Debug.Filters = []policy.PatternFilter{{Type: "drop", Pattern: "x"}}
		}, "debug.filters[0].type"},
		{"empty filter pattern", func(c *Config) {
			c.Debug.Filters = []policy.PatternFilter{{Type: policy.FilterExclude}}
		}, "debug.filters[0].pattern"},
		{"index without path", func(c *Config) { c.Index.Enabled = true; c.Index.Path = "" }, "index.path"},
		{"negative busy timeout", func(c *Config) { c.Index.BusyTimeout = -1 }, "index.busy_timeout"},
		{"bad logging level", func(c *Config) { c.Telemetry.Logging.Level = "loud" }, "telemetry.logging.level"},
		{"bad logging format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }, "telemetry.logging.format"},
		{"bad redact pattern", func(c *Config) {
			c.Telemetry.Logging.RedactPatterns = []RedactPattern{{Name: "broken", Pattern: "(["}}
		}, "telemetry.logging.redact_patterns[0].pattern"},
		{"relative metrics path", func(c *Config) { c.Telemetry.Metrics.Path = "metrics" }, "telemetry.metrics.path"},
		{"empty listen address", func(c *Config) { c.Telemetry.Metrics.ListenAddress = "" }, "telemetry.metrics.listen_address"},
		{"bad sampler", func(c *Config) { c.Telemetry.Tracing.Sampler = "sometimes" }, "telemetry.tracing.sampler"},
		{"sample ratio out of range", func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 }, "telemetry.tracing.sample_ratio"},
		{"tracing without endpoint", func(c *Config) { c.Telemetry.Tracing.Enabled = true }, "telemetry.tracing.endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			ApplyDefaults(cfg)
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %T", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected error for field %s, got %v", tt.field, verr.Errors)
			}
		})
	}
}

func TestValidate_EmptyScheduleAllowed(t *testing.T) {
	cfg := Default()
	cfg.Retention.Schedule = ""
	if err := Validate(cfg); err != nil {
		t.Errorf("Empty schedule should disable scheduling, got %v", err)
	}
}

func TestValidate_MetricsDisabledSkipsEndpointChecks(t *testing.T) {
	cfg := Default()
	cfg.Telemetry.Metrics.Enabled = false
	cfg.Telemetry.Metrics.Path = ""
	cfg.Telemetry.Metrics.ListenAddress = ""
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() failed: %v", err)
	}
}

func TestValidationError_Message(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "log_dir", Message: "required"}}}
	if got := single.Error(); got != "configuration validation failed: log_dir: required" {
		t.Errorf("unexpected message: %q", got)
	}

	multi := ValidationError{Errors: []FieldError{
		{Field: "a", Message: "x"},
		{Field: "b", Message: "y"},
	}}
	msg := multi.Error()
	if !strings.Contains(msg, "2 errors") || !strings.Contains(msg, "  - b: y") {
		t.Errorf("unexpected message: %q", msg)
	}
}
