package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/index"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/ledger"
	"github.com/DikshantJo/code-review-sub002/pkg/config"
	"github.com/DikshantJo/code-review-sub002/pkg/telemetry/metrics"
)

// openLedger builds the ledger described by cfg. The SQLite index is
// attached when enabled; the ledger closes it.
func openLedger(cfg *config.Config, collector *metrics.Collector) (*ledger.Ledger, error) {
	lc := ledger.FromConfig(cfg)
	lc.Metrics = collector
	lc.Tracer = appTracer

	if cfg.Index.Enabled {
		idx, err := openIndex(cfg)
		if err != nil {
			return nil, err
		}
		lc.Index = idx
	}

	l, err := ledger.New(lc)
	if err != nil {
		if lc.Index != nil {
			lc.Index.Close()
		}
		return nil, err
	}
	return l, nil
}

// openIndex opens the SQLite record index, creating its directory.
func openIndex(cfg *config.Config) (*index.SQLiteIndex, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Index.Path), 0755); err != nil {
		return nil, audit.NewFilesystemError("mkdir", filepath.Dir(cfg.Index.Path), err)
	}
	return index.NewSQLiteIndex(&index.SQLiteConfig{
		Path:         cfg.Index.Path,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      cfg.Index.WALMode,
		BusyTimeout:  cfg.Index.BusyTimeout,
	})
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// outputWriter returns the file named by path, or the command's stdout when
// path is empty. The returned close function is always safe to call.
func outputWriter(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// parsePeriod parses "start/end" with RFC3339 bounds. Either bound may be
// empty: "2024-06-01T00:00:00Z/" is open-ended.
func parsePeriod(s string) (audit.Period, error) {
	var p audit.Period
	if s == "" {
		return p, nil
	}

	startStr, endStr, ok := strings.Cut(s, "/")
	if !ok {
		return p, fmt.Errorf("invalid period %q (expected: start/end)", s)
	}
	if startStr != "" {
		start, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			return p, fmt.Errorf("invalid period start: %w", err)
		}
		p.Start = &start
	}
	if endStr != "" {
		end, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			return p, fmt.Errorf("invalid period end: %w", err)
		}
		p.End = &end
	}
	if p.Start != nil && p.End != nil && !p.End.After(*p.Start) {
		return p, fmt.Errorf("invalid period %q: end must be after start", s)
	}
	return p, nil
}

// parseFields turns key=value pairs into Fields. Integers, finite floats
// and true/false keep their type.
func parseFields(pairs []string) (audit.Fields, error) {
	fields := audit.Fields{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid field %q (expected: key=value)", pair)
		}
		fields[strings.TrimSpace(key)] = parseScalar(value)
	}
	return fields, nil
}

func parseScalar(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

// parseRetention turns category=days pairs into a partial retention policy.
func parseRetention(pairs []string) (audit.RetentionPolicy, error) {
	policy := audit.RetentionPolicy{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid retention %q (expected: category=days)", pair)
		}
		category := audit.Category(strings.TrimSpace(name))
		if !category.Valid() {
			return nil, fmt.Errorf("unknown log category %q", name)
		}
		days, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || days < 0 {
			return nil, fmt.Errorf("invalid retention days %q for %s", value, category)
		}
		policy[category] = days
	}
	return policy, nil
}

// periodBound renders an optional period bound.
func periodBound(t *time.Time) string {
	if t == nil {
		return "(open)"
	}
	return t.UTC().Format(time.RFC3339)
}
