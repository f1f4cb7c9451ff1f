// Package logging configures structured diagnostic logging with secret
// redaction.
//
// The logger wraps log/slog. Install makes it the process default so every
// component that logs through slog.Default() inherits its level, format and
// redaction:
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
//	if err != nil {
//	    return err
//	}
//	logger.Install()
//
// Audit fields stored in a context (user, repository, audit_id, command)
// are added to records logged with the *Context methods.
//
// # Redaction
//
// With RedactSecrets enabled, string attributes are scanned for GitHub
// tokens, API keys, AWS access keys, bearer tokens, passwords and email
// addresses. Attributes whose key names a secret ("token", "api_key",
// "password", ...) are masked entirely, keeping a four character hint.
//
// Diagnostic logs are separate from the audit trail itself: audit records
// are written verbatim to the ledger's files and never redacted.
package logging
