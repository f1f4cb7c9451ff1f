package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/policy"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "retention.schedule").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	if strings.TrimSpace(cfg.LogDir) == "" {
		errs = append(errs, FieldError{Field: "log_dir", Message: "log directory is required"})
	}
	if cfg.MaxFileSize <= 0 {
		errs = append(errs, FieldError{Field: "max_file_size", Message: "max file size must be positive"})
	}

	errs = append(errs, validateChain(&cfg.Chain)...)
	errs = append(errs, validateCompliance(&cfg.Compliance)...)
	errs = append(errs, validateRetention(&cfg.Retention)...)
	errs = append(errs, validateDebug(&cfg.Debug)...)
	errs = append(errs, validateIndex(&cfg.Index)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateChain(cfg *ChainConfig) []FieldError {
	var errs []FieldError

	if cfg.Capacity <= 0 {
		errs = append(errs, FieldError{
			Field:   "chain.capacity",
			Message: "capacity must be positive",
		})
	} else if cfg.Capacity > DefaultChainCapacity {
		errs = append(errs, FieldError{
			Field:   "chain.capacity",
			Message: fmt.Sprintf("capacity must not exceed %d", DefaultChainCapacity),
		})
	}

	return errs
}

func validateCompliance(cfg *ComplianceConfig) []FieldError {
	var errs []FieldError

	for name := range cfg.Frameworks {
		if !name.Valid() {
			errs = append(errs, FieldError{
				Field:   "compliance.frameworks." + string(name),
				Message: fmt.Sprintf("unknown framework (supported: %s)", joinFrameworks()),
			})
		}
	}

	for i, field := range cfg.RequiredFields {
		if strings.TrimSpace(field) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("compliance.required_fields[%d]", i),
				Message: "field name must not be empty",
			})
		}
	}

	return errs
}

func validateRetention(cfg *RetentionConfig) []FieldError {
	var errs []FieldError

	for category, days := range cfg.Policy {
		field := "retention.policy." + string(category)
		if !category.Valid() {
			errs = append(errs, FieldError{
				Field:   field,
				Message: "unknown log category",
			})
			continue
		}
		if days < 0 {
			errs = append(errs, FieldError{
				Field:   field,
				Message: "retention days must be non-negative",
			})
		}
	}

	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "retention.schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

func validateDebug(cfg *policy.DebugPolicy) []FieldError {
	var errs []FieldError

	if !cfg.Level.Valid() {
		errs = append(errs, FieldError{
			Field:   "debug.level",
			Message: fmt.Sprintf("invalid level %q (must be error, warn, info, debug or trace)", cfg.Level),
		})
	}

	for i, f := range cfg.Filters {
		field := fmt.Sprintf("debug.filters[%d]", i)
		if f.Type != policy.FilterInclude && f.Type != policy.FilterExclude {
			errs = append(errs, FieldError{
				Field:   field + ".type",
				Message: fmt.Sprintf("invalid filter type %q (must be include or exclude)", f.Type),
			})
		}
		if f.Pattern == "" {
			errs = append(errs, FieldError{
				Field:   field + ".pattern",
				Message: "pattern is required",
			})
		}
	}

	return errs
}

func validateIndex(cfg *IndexConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "index.path",
			Message: "path is required when the index is enabled",
		})
	}
	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "index.busy_timeout",
			Message: "busy timeout must be non-negative",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q (must be debug, info, warn or error)", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q (must be json, text or console)", cfg.Logging.Format),
		})
	}

	for i, p := range cfg.Logging.RedactPatterns {
		if _, err := regexp.Compile(p.Pattern); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i),
				Message: fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}

	if cfg.Metrics.Enabled {
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with /",
			})
		}
		if cfg.Metrics.ListenAddress == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.listen_address",
				Message: "listen address is required when metrics are enabled",
			})
		}
	}

	switch cfg.Tracing.Sampler {
	case "always", "never":
	case "ratio":
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: fmt.Sprintf("sample ratio must be between 0.0 and 1.0, got %g", cfg.Tracing.SampleRatio),
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q (must be always, never or ratio)", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "endpoint is required when tracing is enabled",
		})
	}

	return errs
}

func joinFrameworks() string {
	names := make([]string, len(audit.Frameworks))
	for i, f := range audit.Frameworks {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
