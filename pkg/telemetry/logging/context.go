package logging

import (
	"context"
	"log/slog"
)

// Context keys for audit log fields.
type contextKey string

const (
	// UserKey is the context key for the acting user.
	UserKey contextKey = "user"

	// RepositoryKey is the context key for the repository under review.
	RepositoryKey contextKey = "repository"

	// AuditIDKey is the context key for the audit record being processed.
	AuditIDKey contextKey = "audit_id"

	// CommandKey is the context key for the CLI command name.
	CommandKey contextKey = "command"
)

// orderedKeys fixes the order context fields appear in log output.
var orderedKeys = []contextKey{CommandKey, UserKey, RepositoryKey, AuditIDKey}

// WithUser adds a user identifier to the context.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// WithRepository adds a repository name to the context.
func WithRepository(ctx context.Context, repository string) context.Context {
	return context.WithValue(ctx, RepositoryKey, repository)
}

// WithAuditID adds an audit record ID to the context.
func WithAuditID(ctx context.Context, auditID string) context.Context {
	return context.WithValue(ctx, AuditIDKey, auditID)
}

// WithCommand adds a CLI command name to the context.
func WithCommand(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, CommandKey, command)
}

// Get retrieves a field from the context, or "" when absent.
func Get(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// extractContextFields returns the audit fields set on ctx as attributes.
func extractContextFields(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	for _, key := range orderedKeys {
		if v := Get(ctx, key); v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}
	return attrs
}
