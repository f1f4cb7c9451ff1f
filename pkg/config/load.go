package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "AUDITLOG_"

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded over Default(), zero values are then filled by
// ApplyDefaults, and the result is validated. Environment variables are not
// consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	cfg, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention AUDITLOG_SECTION_FIELD (e.g., AUDITLOG_RETENTION_SCHEDULE) and
// always take precedence over the file. An empty path loads the defaults.
//
// The loading sequence is:
// 1. Start from Default()
// 2. Decode the YAML file over it
// 3. Apply environment variable overrides
// 4. Fill remaining zero values
// 5. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = decodeFile(path); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// decodeFile decodes the YAML file at path over the defaults.
func decodeFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Malformed values are reported rather than silently ignored.
func applyEnvOverrides(cfg *Config) error {
	var errs []error

	str := func(name string, dst *string) {
		if val, ok := os.LookupEnv(EnvPrefix + name); ok && val != "" {
			*dst = val
		}
	}
	boolean := func(name string, dst *bool) {
		if val, ok := os.LookupEnv(EnvPrefix + name); ok && val != "" {
			b, err := strconv.ParseBool(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}
	integer := func(name string, dst *int) {
		if val, ok := os.LookupEnv(EnvPrefix + name); ok && val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = i
		}
	}
	list := func(name string, dst *[]string) {
		if val, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = splitList(val)
		}
	}

	str("LOG_DIR", &cfg.LogDir)
	if val := os.Getenv(EnvPrefix + "MAX_FILE_SIZE"); val != "" {
		size, err := ParseByteSize(val)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMAX_FILE_SIZE: %w", EnvPrefix, err))
		} else {
			cfg.MaxFileSize = size
		}
	}
	boolean("WATCH", &cfg.Watch)

	// Chain overrides
	integer("CHAIN_CAPACITY", &cfg.Chain.Capacity)
	boolean("CHAIN_RESUME_FROM_DISK", &cfg.Chain.ResumeFromDisk)

	// Compliance overrides
	boolean("COMPLIANCE_ENABLED", &cfg.Compliance.Enabled)
	list("COMPLIANCE_REQUIRED_FIELDS", &cfg.Compliance.RequiredFields)
	if val, ok := os.LookupEnv(EnvPrefix + "COMPLIANCE_FRAMEWORKS"); ok {
		enabled := audit.FrameworkConfig{}
		for _, f := range audit.Frameworks {
			enabled[f] = false
		}
		for _, name := range splitList(val) {
			enabled[audit.Framework(name)] = true
		}
		cfg.Compliance.Frameworks = enabled
	}

	// Retention overrides
	if val, ok := os.LookupEnv(EnvPrefix + "RETENTION_SCHEDULE"); ok {
		cfg.Retention.Schedule = val
	}
	for _, c := range audit.Categories {
		days := -1
		integer("RETENTION_"+strings.ToUpper(string(c))+"_DAYS", &days)
		if days >= 0 {
			if cfg.Retention.Policy == nil {
				cfg.Retention.Policy = audit.RetentionPolicy{}
			}
			cfg.Retention.Policy[c] = days
		}
	}

	// Debug overrides
	if val := os.Getenv(EnvPrefix + "DEBUG_LEVEL"); val != "" {
		level, err := audit.ParseLevel(val)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sDEBUG_LEVEL: %w", EnvPrefix, err))
		} else {
			cfg.Debug.Level = level
		}
	}
	boolean("DEBUG_MODE", &cfg.Debug.DebugMode)
	list("DEBUG_CATEGORIES", &cfg.Debug.Categories)

	// Index overrides
	boolean("INDEX_ENABLED", &cfg.Index.Enabled)
	str("INDEX_PATH", &cfg.Index.Path)
	if val := os.Getenv(EnvPrefix + "INDEX_BUSY_TIMEOUT"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sINDEX_BUSY_TIMEOUT: %w", EnvPrefix, err))
		} else {
			cfg.Index.BusyTimeout = d
		}
	}

	// Telemetry overrides
	str("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	str("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	boolean("TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	boolean("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	str("TELEMETRY_METRICS_LISTEN_ADDRESS", &cfg.Telemetry.Metrics.ListenAddress)
	str("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	boolean("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	str("TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
	str("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	boolean("TELEMETRY_TRACING_INSECURE", &cfg.Telemetry.Tracing.Insecure)

	return errors.Join(errs...)
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(val string) []string {
	items := []string{}
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
