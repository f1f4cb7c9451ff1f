// Package config loads, validates and watches the audit ledger configuration.
//
// Configuration comes from a YAML file decoded over Default(), so a file
// only needs to name the values it changes. Retention policy and framework
// maps merge key by key; lists replace the default list.
//
//	cfg, err := config.LoadConfigWithEnvOverrides("auditlog.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention AUDITLOG_SECTION_FIELD
// and always take precedence over the file:
//
//   - AUDITLOG_LOG_DIR overrides log_dir
//   - AUDITLOG_RETENTION_ERROR_LOGS_DAYS overrides retention.policy.error_logs
//   - AUDITLOG_COMPLIANCE_FRAMEWORKS=sox,hipaa enables exactly those frameworks
//   - AUDITLOG_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Built-in defaults
//  2. YAML file
//  3. Environment variables
//
// # Validation
//
// Validate collects every problem into a single ValidationError listing
// each offending field by its dotted path.
//
// # Hot Reload
//
// Watcher observes the configuration file and hands each successfully
// validated reload to a callback. Invalid edits are logged and ignored.
package config
