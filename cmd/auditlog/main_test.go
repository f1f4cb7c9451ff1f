package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/DikshantJo/code-review-sub002/pkg/config"
)

// setupTestConfig points the commands at a fresh log directory.
func setupTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.LogDir = dir
	cfg.Index.Path = filepath.Join(dir, config.DefaultIndexFile)
	config.ApplyDefaults(cfg)

	appConfig = cfg
	appLogger = nil
	t.Cleanup(func() { appConfig = nil })
	return cfg
}

// newTestCommand returns a command whose output is captured.
func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetContext(context.Background())
	return cmd, buf
}

// logTestEvent records one event through the log command.
func logTestEvent(t *testing.T, eventType, level, data string, fields ...string) {
	t.Helper()
	logFlags.level = level
	logFlags.data = data
	logFlags.fields = fields
	logFlags.file = ""
	logFlags.format = "text"

	cmd, _ := newTestCommand()
	if err := logEvents(cmd, []string{eventType}); err != nil {
		t.Fatalf("logEvents() failed: %v", err)
	}
}
