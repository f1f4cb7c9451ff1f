package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/chain"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/index"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/integrity"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/policy"
	"github.com/DikshantJo/code-review-sub002/pkg/config"
)

const testDir = "/logs"

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLedger(t *testing.T, fs afero.Fs, mutate func(*Config)) *Ledger {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Dir = testDir
	cfg.Fs = fs
	cfg.Logger = discardLogger()
	cfg.Now = func() time.Time { return testNow }
	if mutate != nil {
		mutate(cfg)
	}

	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func readRecords(t *testing.T, fs afero.Fs, path string) []*audit.AuditRecord {
	t.Helper()
	var records []*audit.AuditRecord
	errs := integrity.NewScanner(fs, testDir, discardLogger()).ScanFile(context.Background(), path, func(line integrity.Line) {
		records = append(records, line.Record)
	})
	if len(errs) > 0 {
		t.Fatalf("ScanFile() failed: %v", errs)
	}
	return records
}

var minimalContext = audit.Fields{"user": "alice", "repository": "org/repo"}

func TestLedger_FirstEvent(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := newTestLedger(t, fs, nil)

	result := l.LogEvent(context.Background(), "test_event", audit.Fields{"user": "u"}, audit.LevelInfo, nil)
	if !result.Logged {
		t.Fatalf("Expected event to be logged, got %+v", result)
	}

	entries := l.AuditChain(10)
	if len(entries) != 1 {
		t.Fatalf("Expected chain length 1, got %d", len(entries))
	}
	if entries[0].Index != 0 {
		t.Errorf("Expected index 0, got %d", entries[0].Index)
	}
	if entries[0].PreviousHash != strings.Repeat("0", 64) {
		t.Errorf("Expected genesis previous hash, got %s", entries[0].PreviousHash)
	}

	records := readRecords(t, fs, audit.ActiveFilePath(testDir, audit.CategoryAuditLogs, testNow))
	if len(records) != 1 {
		t.Fatalf("Expected 1 persisted record, got %d", len(records))
	}
	rec := records[0]
	if rec.AuditID != result.AuditID {
		t.Errorf("Expected audit id %s, got %s", result.AuditID, rec.AuditID)
	}
	if rec.Timestamp != "2024-06-01T12:00:00.000Z" {
		t.Errorf("unexpected timestamp %s", rec.Timestamp)
	}
	if rec.ChainEntry != entries[0] {
		t.Errorf("persisted chain entry %+v differs from memory %+v", rec.ChainEntry, entries[0])
	}
}

func TestLedger_SequentialEventsLink(t *testing.T) {
	l := newTestLedger(t, afero.NewMemMapFs(), nil)
	ctx := context.Background()

	l.LogEvent(ctx, "first", nil, audit.LevelInfo, nil)
	l.LogEvent(ctx, "second", nil, audit.LevelWarn, nil)

	entries := l.AuditChain(2)
	if entries[1].PreviousHash != entries[0].Hash {
		t.Errorf("chain[1].previous_hash = %s, want %s", entries[1].PreviousHash, entries[0].Hash)
	}
	if got := l.Stats().NextIndex; got != 2 {
		t.Errorf("Expected next index 2, got %d", got)
	}
}

func TestLedger_ChainLinkageAndHashes(t *testing.T) {
	l := newTestLedger(t, afero.NewMemMapFs(), nil)

	for i := 0; i < 50; i++ {
		l.Info(context.Background(), "review", audit.Fields{"i": i}, minimalContext)
	}

	entries := l.AuditChain(100)
	if len(entries) != 50 {
		t.Fatalf("Expected 50 entries, got %d", len(entries))
	}
	for i, e := range entries {
		if e.Hash != chain.ComputeHash(e.AuditID, e.Timestamp, e.PreviousHash) {
			t.Errorf("entry %d hash does not match its inputs", i)
		}
		if i > 0 && e.PreviousHash != entries[i-1].Hash {
			t.Errorf("entry %d does not link to entry %d", i, i-1)
		}
	}
}

func TestLedger_ChainEviction(t *testing.T) {
	l := newTestLedger(t, afero.NewMemMapFs(), func(c *Config) {
		c.ComplianceMode = false
	})

	for i := 0; i < 10005; i++ {
		l.Info(context.Background(), "bulk", nil, nil)
	}

	stats := l.Stats()
	if stats.ChainLength != 10000 {
		t.Errorf("Expected chain length 10000, got %d", stats.ChainLength)
	}
	if stats.NextIndex != 10005 {
		t.Errorf("Expected next index 10005, got %d", stats.NextIndex)
	}
	if first := l.AuditChain(10000)[0]; first.Index != 5 {
		t.Errorf("Expected oldest retained index 5, got %d", first.Index)
	}
}

func TestLedger_ChainCapacityClamped(t *testing.T) {
	l := newTestLedger(t, afero.NewMemMapFs(), func(c *Config) {
		c.ComplianceMode = false
		c.ChainCapacity = 20000
	})

	for i := 0; i < 10005; i++ {
		l.Info(context.Background(), "bulk", nil, nil)
	}

	if got := l.Stats().ChainLength; got != chain.DefaultCapacity {
		t.Errorf("Expected chain length %d, got %d", chain.DefaultCapacity, got)
	}
}

func TestLedger_AuditChainCapped(t *testing.T) {
	l := newTestLedger(t, afero.NewMemMapFs(), nil)
	l.Info(context.Background(), "a", nil, nil)
	l.Info(context.Background(), "b", nil, nil)

	if got := len(l.AuditChain(100)); got != 2 {
		t.Errorf("Expected 2 entries, got %d", got)
	}
	if got := l.AuditChain(1); len(got) != 1 || got[0].Index != 1 {
		t.Errorf("AuditChain(1) = %+v, want newest entry", got)
	}
	if got := l.AuditChain(0); len(got) != 0 {
		t.Errorf("AuditChain(0) = %+v, want empty", got)
	}
}

func TestLedger_FilteredEvent(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := newTestLedger(t, fs, nil)

	result := l.Debug(context.Background(), "verbose", nil, nil)
	if result.Logged || result.Reason != audit.ReasonLevelFiltered {
		t.Errorf("Expected filtered result, got %+v", result)
	}
	if l.Stats().ChainLength != 0 {
		t.Error("filtered event advanced the chain")
	}
	if l.Stats().EventsFiltered != 1 {
		t.Errorf("Expected 1 filtered event, got %d", l.Stats().EventsFiltered)
	}

	infos, _ := afero.ReadDir(fs, testDir)
	if len(infos) != 0 {
		t.Errorf("filtered event created %d files", len(infos))
	}
}

func TestLedger_DebugModeAndCategories(t *testing.T) {
	l := newTestLedger(t, afero.NewMemMapFs(), nil)
	ctx := context.Background()

	l.EnableDebugMode("ai-review")
	if r := l.Debug(ctx, "ai-review", nil, nil); !r.Logged {
		t.Errorf("debug event in allowed category not logged: %+v", r)
	}
	if r := l.Debug(ctx, "github-api", nil, nil); r.Logged {
		t.Error("debug event outside allow-list was logged")
	}
	if r := l.Trace(ctx, "ai-review", nil, nil); r.Logged {
		t.Error("trace should be blocked by threshold debug")
	}

	// An explicit category field overrides the event type.
	if r := l.Debug(ctx, "anything", nil, audit.Fields{"category": "ai-review"}); !r.Logged {
		t.Error("category field should be used for filtering")
	}

	l.AddDebugFilter(policy.FilterExclude, "ai-")
	if r := l.Info(ctx, "ai-review", nil, nil); r.Logged {
		t.Error("excluded category was logged")
	}
	if removed := l.RemoveDebugFilter("ai-"); removed != 1 {
		t.Errorf("Expected 1 filter removed, got %d", removed)
	}

	l.DisableDebugMode()
	cfg := l.DebugConfig()
	if cfg.DebugMode || cfg.Level != audit.LevelInfo {
		t.Errorf("unexpected policy after disable: %+v", cfg)
	}

	test := l.TestDebugConfig("ai-review")
	if !test.Levels[audit.LevelInfo] || test.Levels[audit.LevelDebug] {
		t.Errorf("unexpected verdicts: %v", test.Levels)
	}
}

// failingFs injects errors into selected operations.
type failingFs struct {
	afero.Fs
	mu       sync.Mutex
	failOpen bool
}

func (f *failingFs) setFailOpen(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOpen = fail
}

func (f *failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	f.mu.Lock()
	fail := f.failOpen
	f.mu.Unlock()
	if fail {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func TestLedger_WriteError(t *testing.T) {
	fs := &failingFs{Fs: afero.NewMemMapFs()}
	l := newTestLedger(t, fs, nil)
	ctx := context.Background()

	fs.setFailOpen(true)
	result := l.Info(ctx, "review", nil, nil)
	if result.Logged {
		t.Fatal("Expected write failure")
	}
	if result.Reason != audit.ReasonWriteError {
		t.Errorf("Expected reason write_error, got %s", result.Reason)
	}
	var fsErr *audit.FilesystemError
	if !errors.As(result.Err, &fsErr) {
		t.Fatalf("Expected FilesystemError, got %T: %v", result.Err, result.Err)
	}
	if !errors.Is(result.Err, os.ErrPermission) {
		t.Errorf("Expected cause os.ErrPermission, got %v", result.Err)
	}

	// The chain keeps the entry allocated for the failed write.
	if got := l.Stats().ChainLength; got != 1 {
		t.Errorf("Expected chain length 1 after failed write, got %d", got)
	}
	if got := l.Stats().WriteErrors; got != 1 {
		t.Errorf("Expected 1 write error, got %d", got)
	}

	fs.setFailOpen(false)
	if r := l.Info(ctx, "review", nil, nil); !r.Logged {
		t.Fatalf("append after recovery failed: %+v", r)
	}
	entries := l.AuditChain(2)
	if entries[1].PreviousHash != entries[0].Hash {
		t.Error("chain broken after write failure")
	}
}

func TestLedger_RotatesOversizedFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := newTestLedger(t, fs, func(c *Config) {
		c.MaxFileSize = 200
	})
	ctx := context.Background()

	l.Info(ctx, "review", minimalContext, nil)
	l.Info(ctx, "review", minimalContext, nil)

	active := audit.ActiveFilePath(testDir, audit.CategoryAuditLogs, testNow)
	rotated := active + "-2024-06-01T12-00-00-000Z.jsonl"

	if got := len(readRecords(t, fs, rotated)); got != 1 {
		t.Errorf("Expected 1 record in rotated file, got %d", got)
	}
	if got := len(readRecords(t, fs, active)); got != 1 {
		t.Errorf("Expected 1 record in active file, got %d", got)
	}
	if got := l.Stats().Rotations; got != 1 {
		t.Errorf("Expected 1 rotation, got %d", got)
	}
}

func TestLedger_RotationsWithinOneMillisecond(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := newTestLedger(t, fs, func(c *Config) {
		c.MaxFileSize = 10
	})
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if r := l.Info(ctx, "review", minimalContext, nil); !r.Logged {
			t.Fatalf("append %d failed: %+v", i, r)
		}
	}

	scanner := integrity.NewScanner(fs, testDir, discardLogger())
	files, err := scanner.Files()
	if err != nil {
		t.Fatalf("Files() failed: %v", err)
	}
	if len(files) != 4 {
		t.Errorf("Expected 4 log files, got %d: %v", len(files), files)
	}

	total := 0
	for _, file := range files {
		total += len(readRecords(t, fs, file))
	}
	if total != 4 {
		t.Errorf("Expected 4 records on disk, got %d", total)
	}
	if got := l.Stats().Rotations; got != 3 {
		t.Errorf("Expected 3 rotations, got %d", got)
	}
}

func TestLedger_OversizedRecordRejected(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := newTestLedger(t, fs, nil)
	ctx := context.Background()

	big := audit.Fields{"diff": strings.Repeat("x", integrity.MaxLineSize)}
	r := l.Info(ctx, "review", big, minimalContext)
	if r.Logged || r.Reason != audit.ReasonWriteError || !errors.Is(r.Err, integrity.ErrLineTooLong) {
		t.Errorf("Expected oversized record to be rejected, got %+v", r)
	}

	l.Info(ctx, "review", minimalContext, nil)
	result := l.VerifyAuditTrailIntegrity(ctx)
	if !result.Verified || result.EntriesVerified != 1 {
		t.Errorf("unexpected verify result: %+v", result)
	}
}

func TestLedger_FileCategories(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := newTestLedger(t, fs, nil)
	ctx := context.Background()

	l.Error(ctx, "github_api_error", nil, nil)
	l.Info(ctx, "performance_sample", nil, nil)
	l.Info(ctx, "compliance_check", nil, nil)
	l.Info(ctx, "review", nil, audit.Fields{"log_category": "error_logs"})

	tests := []struct {
		category audit.Category
		want     int
	}{
		{audit.CategoryErrorLogs, 2},
		{audit.CategoryPerformanceLogs, 1},
		{audit.CategoryComplianceReports, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			path := audit.ActiveFilePath(testDir, tt.category, testNow)
			if got := len(readRecords(t, fs, path)); got != tt.want {
				t.Errorf("Expected %d records, got %d", tt.want, got)
			}
		})
	}
}

func TestLedger_ComplianceSection(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := newTestLedger(t, fs, func(c *Config) {
		c.RequiredFields = []string{"user", "repository"}
	})

	result := l.Info(context.Background(), "review", audit.Fields{"user": "alice", "files": 2}, nil)
	if !result.Logged {
		t.Fatalf("event not logged: %+v", result)
	}
	if result.ComplianceValid {
		t.Error("Expected compliance invalid with a missing required field")
	}

	rec := readRecords(t, fs, audit.ActiveFilePath(testDir, audit.CategoryAuditLogs, testNow))[0]
	if rec.Compliance == nil {
		t.Fatal("Expected compliance section")
	}
	errs := rec.Compliance.ValidationErrors
	if len(errs) != 1 || errs[0] != "Missing required field: repository" {
		t.Errorf("unexpected validation errors: %v", errs)
	}
	want, _ := chain.DataIntegrity(audit.Fields{"user": "alice", "files": 2})
	if rec.Compliance.DataIntegrity != want {
		t.Errorf("Expected data integrity %s, got %s", want, rec.Compliance.DataIntegrity)
	}
	if _, ok := rec.Compliance.Frameworks[audit.FrameworkSOX]; !ok {
		t.Error("Expected sox result on record")
	}
	if _, ok := rec.Compliance.Frameworks[audit.FrameworkHIPAA]; ok {
		t.Error("hipaa is disabled by default")
	}
}

func TestLedger_InvalidUTF8PayloadVerifies(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := newTestLedger(t, fs, nil)
	ctx := context.Background()

	if r := l.Info(ctx, "review", audit.Fields{"diff": "bad\xffbyte"}, minimalContext); !r.Logged {
		t.Fatalf("Info() failed: %+v", r)
	}

	result := l.VerifyAuditTrailIntegrity(ctx)
	if !result.Verified || result.EntriesVerified != 1 {
		t.Errorf("untampered trail failed verification: %+v", result)
	}
}

func TestLedger_ComplianceModeOff(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := newTestLedger(t, fs, func(c *Config) {
		c.ComplianceMode = false
		c.RequiredFields = []string{"repository"}
	})

	result := l.Info(context.Background(), "review", nil, nil)
	if !result.ComplianceValid {
		t.Error("Expected compliance valid when compliance mode is off")
	}
	rec := readRecords(t, fs, audit.ActiveFilePath(testDir, audit.CategoryAuditLogs, testNow))[0]
	if rec.Compliance != nil {
		t.Errorf("Expected no compliance section, got %+v", rec.Compliance)
	}
}

func TestLedger_CheckRegulatoryCompliance(t *testing.T) {
	l := newTestLedger(t, afero.NewMemMapFs(), func(c *Config) {
		c.Frameworks = audit.FrameworkConfig{audit.FrameworkSOX: true}
	})

	section := l.CheckRegulatoryCompliance(minimalContext, nil)

	sox, ok := section.Frameworks[audit.FrameworkSOX]
	if !ok || !sox.Compliant {
		t.Fatalf("Expected sox compliant, got %+v", section.Frameworks)
	}
	want := []string{"access_control", "change_management", "data_integrity", "audit_trail"}
	if len(sox.Checks) != len(want) {
		t.Fatalf("Expected %d sox checks, got %v", len(want), sox.Checks)
	}
	for _, name := range want {
		if _, ok := sox.Checks[name]; !ok {
			t.Errorf("missing check %s", name)
		}
	}
	if len(section.Frameworks) != 1 {
		t.Errorf("Expected only sox evaluated, got %d frameworks", len(section.Frameworks))
	}
}

func TestLedger_SettingsAreShallowMerges(t *testing.T) {
	l := newTestLedger(t, afero.NewMemMapFs(), nil)

	l.SetRegulatoryCompliance(audit.FrameworkConfig{audit.FrameworkHIPAA: true})
	fw := l.RegulatoryCompliance()
	if !fw[audit.FrameworkSOX] || !fw[audit.FrameworkGDPR] || !fw[audit.FrameworkHIPAA] {
		t.Errorf("unexpected frameworks after merge: %v", fw)
	}

	l.SetDataRetentionPolicy(audit.RetentionPolicy{audit.CategoryErrorLogs: 7})
	rp := l.RetentionPolicy()
	if rp[audit.CategoryErrorLogs] != 7 || rp[audit.CategoryAuditLogs] != 2555 {
		t.Errorf("unexpected retention after merge: %v", rp)
	}

	// Returned maps are copies.
	rp[audit.CategoryAuditLogs] = 1
	if l.RetentionPolicy()[audit.CategoryAuditLogs] != 2555 {
		t.Error("mutating a returned policy changed the ledger")
	}
}

func TestLedger_IndexMirroring(t *testing.T) {
	idx := index.NewMemoryIndex()
	l := newTestLedger(t, afero.NewMemMapFs(), func(c *Config) {
		c.Index = idx
		c.RequiredFields = []string{"repository"}
	})
	ctx := context.Background()

	l.Info(ctx, "review", minimalContext, nil)
	l.Error(ctx, "github_api_error", nil, nil)
	l.Debug(ctx, "filtered", nil, nil)

	if err := l.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	total, err := idx.Count(ctx, nil)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected 2 indexed entries, got %d", total)
	}

	invalid := false
	entries, err := idx.Query(ctx, &audit.IndexQuery{ComplianceValid: &invalid})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Category != audit.CategoryErrorLogs {
		t.Errorf("Expected the error event as the only invalid entry, got %+v", entries)
	}
	if entries[0].ChainIndex != 1 {
		t.Errorf("Expected chain index 1, got %d", entries[0].ChainIndex)
	}
}

func TestLedger_ResumeFromDisk(t *testing.T) {
	fs := afero.NewMemMapFs()
	first := newTestLedger(t, fs, nil)
	ctx := context.Background()

	first.Info(ctx, "a", nil, nil)
	first.Info(ctx, "b", nil, nil)
	last := first.Stats().LastHash
	first.Close()

	resumed := newTestLedger(t, fs, func(c *Config) {
		c.ResumeFromDisk = true
	})
	stats := resumed.Stats()
	if stats.NextIndex != 2 {
		t.Errorf("Expected next index 2, got %d", stats.NextIndex)
	}
	if stats.LastHash != last {
		t.Errorf("Expected last hash %s, got %s", last, stats.LastHash)
	}
	if stats.ChainLength != 0 {
		t.Errorf("Expected empty in-memory chain, got %d", stats.ChainLength)
	}

	resumed.Info(ctx, "c", nil, nil)
	if entry := resumed.AuditChain(1)[0]; entry.PreviousHash != last || entry.Index != 2 {
		t.Errorf("resumed entry %+v does not continue the persisted chain", entry)
	}

	fresh := newTestLedger(t, fs, nil)
	if fresh.Stats().LastHash != chain.GenesisHash {
		t.Error("Expected a fresh ledger to start from genesis")
	}
}

func TestLedger_VerifyCleanupAndReport(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := newTestLedger(t, fs, func(c *Config) {
		c.RequiredFields = []string{"repository"}
	})
	ctx := context.Background()

	l.Info(ctx, "review", minimalContext, nil)
	l.Info(ctx, "review", audit.Fields{"user": "bob"}, nil)

	verify := l.VerifyAuditTrailIntegrity(ctx)
	if !verify.Verified || verify.EntriesVerified != 2 || verify.FilesChecked != 1 {
		t.Errorf("unexpected verify result: %+v", verify)
	}

	report := l.GenerateComplianceReport(ctx, integrity.ReportOptions{})
	if report.Summary.TotalEvents != 2 || report.Summary.CompliantEvents != 1 {
		t.Errorf("unexpected summary: %+v", report.Summary)
	}
	if report.Summary.ComplianceRate != 50 {
		t.Errorf("Expected rate 50, got %f", report.Summary.ComplianceRate)
	}
	if len(report.Frameworks) != 2 {
		t.Errorf("Expected sub-reports for enabled frameworks, got %v", report.Frameworks)
	}
	if !report.GeneratedAt.Equal(testNow) {
		t.Errorf("Expected report time from the ledger clock, got %v", report.GeneratedAt)
	}

	old := testDir + "/error_logs-2024-01-01.jsonl"
	if err := afero.WriteFile(fs, old, []byte("{}\n"), 0644); err != nil {
		t.Fatalf("failed to write old file: %v", err)
	}
	if err := fs.Chtimes(old, testNow.AddDate(0, 0, -30), testNow.AddDate(0, 0, -30)); err != nil {
		t.Fatalf("Chtimes() failed: %v", err)
	}

	if r := l.PerformDataRetentionCleanup(ctx); r.FilesRemoved != 0 {
		t.Errorf("file within the 90 day window was removed: %+v", r)
	}
	l.SetDataRetentionPolicy(audit.RetentionPolicy{audit.CategoryErrorLogs: 7})
	r := l.PerformDataRetentionCleanup(ctx)
	if r.FilesRemoved != 1 || len(r.Errors) != 0 {
		t.Errorf("unexpected cleanup result: %+v", r)
	}
}

func TestLedger_ConcurrentAppends(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := newTestLedger(t, fs, nil)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				l.Info(context.Background(), "review", audit.Fields{"g": g, "i": i}, nil)
			}
		}(g)
	}
	wg.Wait()

	entries := l.AuditChain(200)
	if len(entries) != 200 {
		t.Fatalf("Expected 200 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].PreviousHash != entries[i-1].Hash {
			t.Fatalf("entry %d does not link to its predecessor", i)
		}
	}

	records := readRecords(t, fs, audit.ActiveFilePath(testDir, audit.CategoryAuditLogs, testNow))
	if len(records) != 200 {
		t.Errorf("Expected 200 persisted records, got %d", len(records))
	}
}

func TestLedger_Closed(t *testing.T) {
	l := newTestLedger(t, afero.NewMemMapFs(), nil)
	if err := l.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}

	result := l.Info(context.Background(), "late", nil, nil)
	if result.Logged || result.Reason != ReasonClosed || !errors.Is(result.Err, ErrLedgerClosed) {
		t.Errorf("Expected closed result, got %+v", result)
	}
}

func TestLedger_ApplyConfig(t *testing.T) {
	l := newTestLedger(t, afero.NewMemMapFs(), nil)

	cfg := config.Default()
	cfg.Debug.Level = audit.LevelWarn
	cfg.Compliance.Enabled = false
	cfg.Compliance.Frameworks = audit.FrameworkConfig{audit.FrameworkPCIDSS: true}
	cfg.Retention.Policy = audit.RetentionPolicy{audit.CategoryPerformanceLogs: 3}

	l.ApplyConfig(cfg)

	if r := l.Info(context.Background(), "review", nil, nil); r.Logged {
		t.Error("info should be filtered after threshold warn")
	}
	if l.DebugConfig().Level != audit.LevelWarn {
		t.Errorf("Expected level warn, got %s", l.DebugConfig().Level)
	}
	if fw := l.RegulatoryCompliance(); !fw[audit.FrameworkPCIDSS] || !fw[audit.FrameworkSOX] {
		t.Errorf("Expected framework toggles merged, got %v", fw)
	}
	if rp := l.RetentionPolicy(); rp[audit.CategoryPerformanceLogs] != 3 || rp[audit.CategoryErrorLogs] != 90 {
		t.Errorf("Expected retention merged, got %v", rp)
	}
}

func TestNewAuditID(t *testing.T) {
	pattern := regexp.MustCompile(`^audit_1717243200000_[0-9a-z]{9}$`)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := newAuditID(testNow)
		if !pattern.MatchString(id) {
			t.Fatalf("audit id %q does not match the expected format", id)
		}
		if seen[id] {
			t.Fatalf("duplicate audit id %q", id)
		}
		seen[id] = true
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.LogDir = "/var/audit"
	cfg.Compliance.RequiredFields = []string{"user"}
	cfg.Chain.ResumeFromDisk = true

	c := FromConfig(cfg)
	if c.Dir != "/var/audit" || !c.ResumeFromDisk || c.ChainCapacity != 10000 {
		t.Errorf("unexpected ledger config: %+v", c)
	}
	if c.MaxFileSize != int64(config.DefaultMaxFileSize) {
		t.Errorf("Expected max file size %d, got %d", config.DefaultMaxFileSize, c.MaxFileSize)
	}
	if len(c.RequiredFields) != 1 {
		t.Errorf("Expected 1 required field, got %v", c.RequiredFields)
	}
}
