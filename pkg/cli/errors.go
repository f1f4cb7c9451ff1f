package cli

import (
	"errors"
	"fmt"
)

// Exit codes returned by the auditlog command.
const (
	ExitOK        = 0
	ExitError     = 1
	ExitUsage     = 2
	ExitIntegrity = 3
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Code    int
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError exiting with ExitError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Code:    ExitError,
		Err:     err,
	}
}

// NewIntegrityFailure reports a verification that completed but found
// tampered or unreadable records.
func NewIntegrityFailure(command string, errorCount int) *CommandError {
	return &CommandError{
		Command: command,
		Code:    ExitIntegrity,
		Err:     fmt.Errorf("audit trail verification found %d error(s)", errorCount),
	}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code != 0 {
		return cmdErr.Code
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return ExitUsage
	}
	return ExitError
}
