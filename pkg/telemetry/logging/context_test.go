package logging

import (
	"context"
	"testing"
)

func TestContextFields(t *testing.T) {
	ctx := context.Background()
	if fields := extractContextFields(ctx); len(fields) != 0 {
		t.Errorf("Expected no fields, got %v", fields)
	}

	ctx = WithAuditID(ctx, "audit_1")
	ctx = WithCommand(ctx, "verify")
	ctx = WithUser(ctx, "alice")

	fields := extractContextFields(ctx)
	want := []string{"command", "user", "audit_id"}
	if len(fields) != len(want) {
		t.Fatalf("Expected %d fields, got %d", len(want), len(fields))
	}
	for i, key := range want {
		if fields[i].Key != key {
			t.Errorf("field %d = %s, want %s", i, fields[i].Key, key)
		}
	}

	if got := Get(ctx, UserKey); got != "alice" {
		t.Errorf("Get(user) = %q, want alice", got)
	}
	if got := Get(ctx, RepositoryKey); got != "" {
		t.Errorf("Get(repository) = %q, want empty", got)
	}
}
