package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/trace"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/chain"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/compliance"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/integrity"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/policy"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/retention"
	"github.com/DikshantJo/code-review-sub002/pkg/telemetry/logging"
	"github.com/DikshantJo/code-review-sub002/pkg/telemetry/metrics"
	"github.com/DikshantJo/code-review-sub002/pkg/telemetry/tracing"
)

// ReasonClosed is reported by appends made after Close.
const ReasonClosed = "ledger_closed"

// ErrLedgerClosed is the error of an append made after Close.
var ErrLedgerClosed = errors.New("audit ledger is closed")

// Ledger is the audit logger. It owns the in-memory chain and is the only
// writer of the log files. Create one per process with New and pass it to
// every collaborator.
//
// Appends are serialized: index allocation, hashing and the file write of
// one event complete before the next event reads the previous hash.
type Ledger struct {
	dir     string
	fs      afero.Fs
	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	now     func() time.Time

	filter    *policy.Filter
	evaluator *compliance.Evaluator
	retention *retention.Manager
	verifier  *integrity.Verifier

	// mu serializes appends and guards chain, closed and indexCh sends.
	mu      sync.Mutex
	chain   *chain.Chain
	closed  bool
	index   audit.Index
	indexCh chan *audit.IndexEntry
	timeout time.Duration
	wg      sync.WaitGroup

	// settingsMu guards the mutable settings below.
	settingsMu     sync.RWMutex
	maxFileSize    int64
	complianceMode bool
	requiredFields []string
	retentionDays  audit.RetentionPolicy
	frameworks     audit.FrameworkConfig

	stats counters
}

type counters struct {
	logged      atomic.Int64
	filtered    atomic.Int64
	writeErrors atomic.Int64
	rotations   atomic.Int64
	indexErrors atomic.Int64
}

// Stats is a snapshot of the ledger's counters.
type Stats struct {
	EventsLogged   int64  `json:"events_logged"`
	EventsFiltered int64  `json:"events_filtered"`
	WriteErrors    int64  `json:"write_errors"`
	Rotations      int64  `json:"rotations"`
	IndexErrors    int64  `json:"index_errors"`
	ChainLength    int    `json:"chain_length"`
	NextIndex      int64  `json:"next_index"`
	LastHash       string `json:"last_hash"`
}

// New creates a ledger writing to cfg.Dir. The directory is created if
// needed. With ResumeFromDisk set, the chain continues from the newest
// persisted record; otherwise it starts from the genesis hash.
func New(cfg *Config) (*Ledger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	// Sub-components keep their own component loggers unless one was given.
	subLogger := c.Logger
	c.applyDefaults()

	if err := c.Fs.MkdirAll(c.Dir, 0755); err != nil {
		return nil, audit.NewFilesystemError("mkdir", c.Dir, err)
	}

	l := &Ledger{
		dir:       c.Dir,
		fs:        c.Fs,
		logger:    c.Logger,
		metrics:   c.Metrics,
		tracer:    c.Tracer,
		now:       c.Now,
		filter:    policy.NewFilter(c.Debug),
		evaluator: compliance.NewEvaluator(),
		retention: retention.NewManager(retention.Config{
			Dir:    c.Dir,
			Fs:     c.Fs,
			Logger: subLogger,
			Now:    c.Now,
		}),
		verifier: integrity.NewVerifier(integrity.Config{
			Dir:    c.Dir,
			Fs:     c.Fs,
			Logger: subLogger,
		}),
		index:          c.Index,
		timeout:        c.WriteTimeout,
		maxFileSize:    c.MaxFileSize,
		complianceMode: c.ComplianceMode,
		requiredFields: append([]string{}, c.RequiredFields...),
		retentionDays:  c.Retention.Clone(),
		frameworks:     c.Frameworks.Clone(),
	}

	l.chain = chain.New(c.ChainCapacity)
	if c.ResumeFromDisk {
		last, ok := l.newestRecord(context.Background())
		if ok {
			l.chain = chain.Resume(c.ChainCapacity, last.ChainEntry.Index+1, last.ChainEntry.Hash)
			l.logger.Info("resumed audit chain from disk",
				"next_index", last.ChainEntry.Index+1,
				"last_audit_id", last.AuditID,
			)
		}
	}

	if l.index != nil {
		l.indexCh = make(chan *audit.IndexEntry, c.IndexBuffer)
		l.wg.Add(1)
		go l.indexWorker()
	}

	l.logger.Info("audit ledger initialized",
		"dir", l.dir,
		"compliance_mode", l.complianceMode,
		"max_file_size", l.maxFileSize,
		"chain_capacity", c.ChainCapacity,
		"index", l.index != nil,
	)

	return l, nil
}

// newestRecord returns the persisted record with the latest timestamp,
// breaking ties by chain index.
func (l *Ledger) newestRecord(ctx context.Context) (*audit.AuditRecord, bool) {
	scanner := l.verifier.Scanner()
	files, err := scanner.Files()
	if err != nil {
		l.logger.Warn("cannot resume chain, starting from genesis", "error", err)
		return nil, false
	}

	var (
		newest   *audit.AuditRecord
		newestAt time.Time
	)
	for _, file := range files {
		scanner.ScanFile(ctx, file, func(line integrity.Line) {
			ts, err := audit.ParseTimestamp(line.Record.Timestamp)
			if err != nil {
				return
			}
			if newest == nil || ts.After(newestAt) ||
				(ts.Equal(newestAt) && line.Record.ChainEntry.Index > newest.ChainEntry.Index) {
				newest, newestAt = line.Record, ts
			}
		})
	}
	return newest, newest != nil
}

// LogEvent records one event. It never panics and never returns an error
// directly: a rejected or failed append is reported in the result.
//
// The event is dropped with reason log_level_filtered when the log policy
// rejects its level and category. A filesystem failure is reported with
// reason write_error; the chain entry already allocated for it is kept.
func (l *Ledger) LogEvent(ctx context.Context, eventType string, data audit.Fields, level audit.Level, fields audit.Fields) audit.AppendResult {
	ctx, span := l.tracer.Start(ctx, tracing.SpanLogEvent,
		trace.WithAttributes(tracing.EventAttributes(eventType, string(level))...),
	)
	defer span.End()

	result := l.logEvent(ctx, span, eventType, data, level, fields)
	tracing.SetAppendAttributes(span, result.Logged, result.Reason, result.AuditID, result.ComplianceValid)
	tracing.SetStatus(span, result.Err)
	return result
}

func (l *Ledger) logEvent(ctx context.Context, span trace.Span, eventType string, data audit.Fields, level audit.Level, fields audit.Fields) audit.AppendResult {
	start := time.Now()

	if !l.filter.ShouldLog(level, audit.FilterCategoryFor(eventType, fields)) {
		l.stats.filtered.Add(1)
		l.metrics.RecordEvent(string(level), "", eventType, metrics.OutcomeFiltered, 0, 0)
		return audit.AppendResult{Logged: false, Reason: audit.ReasonLevelFiltered}
	}

	if data == nil {
		data = audit.Fields{}
	}
	if fields == nil {
		fields = audit.Fields{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return audit.AppendResult{Logged: false, Reason: ReasonClosed, Err: ErrLedgerClosed}
	}

	now := l.now().UTC()
	auditID := newAuditID(now)
	timestamp := audit.FormatTimestamp(now)

	entry := l.chain.Append(auditID, timestamp)
	l.metrics.SetChainLength(l.chain.Len())

	l.settingsMu.RLock()
	complianceMode := l.complianceMode
	maxFileSize := l.maxFileSize
	l.settingsMu.RUnlock()

	record := &audit.AuditRecord{
		AuditID:    auditID,
		Timestamp:  timestamp,
		EventType:  eventType,
		Level:      level,
		Data:       data,
		Context:    fields,
		ChainEntry: entry,
	}

	complianceValid := true
	if complianceMode {
		section := l.CheckRegulatoryCompliance(data, fields)
		record.Compliance = &section
		complianceValid = section.Valid()
		for name, result := range section.Frameworks {
			if !result.Compliant {
				l.metrics.RecordComplianceViolation(string(name))
			}
		}
	}

	category := audit.FileCategoryFor(eventType, level, fields)
	tracing.SetRecordAttributes(span, string(category), entry.Index)

	line, err := json.Marshal(record)
	if err != nil {
		return l.writeFailure(ctx, level, category, eventType, start, auditID, fmt.Errorf("failed to serialize record: %w", err))
	}
	line = append(line, '\n')
	if len(line) > integrity.MaxLineSize {
		return l.writeFailure(ctx, level, category, eventType, start, auditID, integrity.ErrLineTooLong)
	}

	path := audit.ActiveFilePath(l.dir, category, now)
	if maxFileSize > 0 {
		if _, rotated := l.retention.Rotate(path, maxFileSize); rotated {
			l.stats.rotations.Add(1)
			l.metrics.RecordRotation(string(category))
		}
	}

	if err := l.appendLine(path, line); err != nil {
		return l.writeFailure(ctx, level, category, eventType, start, auditID, err)
	}

	l.enqueueIndex(&audit.IndexEntry{
		AuditID:         auditID,
		Timestamp:       now,
		EventType:       eventType,
		Level:           level,
		Category:        category,
		ChainIndex:      entry.Index,
		Hash:            entry.Hash,
		ComplianceValid: complianceValid,
		File:            path,
	})

	l.stats.logged.Add(1)
	l.metrics.RecordEvent(string(level), string(category), eventType, metrics.OutcomePersisted, time.Since(start), len(line))

	l.logger.DebugContext(ctx, "audit record appended",
		"audit_id", auditID,
		"event_type", eventType,
		"chain_index", entry.Index,
		"file", path,
	)

	return audit.AppendResult{Logged: true, AuditID: auditID, ComplianceValid: complianceValid}
}

func (l *Ledger) writeFailure(ctx context.Context, level audit.Level, category audit.Category, eventType string, start time.Time, auditID string, err error) audit.AppendResult {
	l.stats.writeErrors.Add(1)
	l.metrics.RecordEvent(string(level), string(category), eventType, metrics.OutcomeWriteError, time.Since(start), 0)
	l.logger.ErrorContext(ctx, "failed to append audit record",
		"error", err,
		"audit_id", auditID,
		"event_type", eventType,
	)
	return audit.AppendResult{Logged: false, Reason: audit.ReasonWriteError, Err: err}
}

// appendLine writes one complete line to the end of path.
func (l *Ledger) appendLine(path string, line []byte) error {
	f, err := l.fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return audit.NewFilesystemError("append", path, err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return audit.NewFilesystemError("append", path, err)
	}
	if err := f.Close(); err != nil {
		return audit.NewFilesystemError("close", path, err)
	}
	return nil
}

// enqueueIndex hands an entry to the index worker. Must be called with mu held.
func (l *Ledger) enqueueIndex(entry *audit.IndexEntry) {
	if l.indexCh == nil {
		return
	}

	select {
	case l.indexCh <- entry:
	case <-time.After(l.timeout):
		l.stats.indexErrors.Add(1)
		l.metrics.RecordIndexError("enqueue")
		l.logger.Error("index channel full, dropping index entry",
			"audit_id", entry.AuditID,
			"channel_capacity", cap(l.indexCh),
		)
	}
}

// indexWorker drains the index channel until it is closed.
func (l *Ledger) indexWorker() {
	defer l.wg.Done()

	for entry := range l.indexCh {
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		err := l.index.Store(ctx, entry)
		cancel()

		if err != nil {
			l.stats.indexErrors.Add(1)
			l.metrics.RecordIndexError("store")
			l.logger.WarnContext(logging.WithAuditID(context.Background(), entry.AuditID),
				"failed to index audit record", "error", err)
		}
	}
}

// Debug records an event at debug level.
func (l *Ledger) Debug(ctx context.Context, eventType string, data, fields audit.Fields) audit.AppendResult {
	return l.LogEvent(ctx, eventType, data, audit.LevelDebug, fields)
}

// Trace records an event at trace level.
func (l *Ledger) Trace(ctx context.Context, eventType string, data, fields audit.Fields) audit.AppendResult {
	return l.LogEvent(ctx, eventType, data, audit.LevelTrace, fields)
}

// Info records an event at info level.
func (l *Ledger) Info(ctx context.Context, eventType string, data, fields audit.Fields) audit.AppendResult {
	return l.LogEvent(ctx, eventType, data, audit.LevelInfo, fields)
}

// Warn records an event at warn level.
func (l *Ledger) Warn(ctx context.Context, eventType string, data, fields audit.Fields) audit.AppendResult {
	return l.LogEvent(ctx, eventType, data, audit.LevelWarn, fields)
}

// Error records an event at error level.
func (l *Ledger) Error(ctx context.Context, eventType string, data, fields audit.Fields) audit.AppendResult {
	return l.LogEvent(ctx, eventType, data, audit.LevelError, fields)
}

// AuditChain returns the newest n chain entries, oldest first, capped to
// the current chain length.
func (l *Ledger) AuditChain(n int) []audit.ChainEntry {
	return l.chain.Recent(n)
}

// Stats returns a snapshot of the ledger's counters.
func (l *Ledger) Stats() Stats {
	return Stats{
		EventsLogged:   l.stats.logged.Load(),
		EventsFiltered: l.stats.filtered.Load(),
		WriteErrors:    l.stats.writeErrors.Load(),
		Rotations:      l.stats.rotations.Load(),
		IndexErrors:    l.stats.indexErrors.Load(),
		ChainLength:    l.chain.Len(),
		NextIndex:      l.chain.NextIndex(),
		LastHash:       l.chain.LastHash(),
	}
}

// Dir returns the log directory.
func (l *Ledger) Dir() string {
	return l.dir
}

// Closed reports whether Close has been called.
func (l *Ledger) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Close stops accepting events, drains pending index writes and closes the
// index. It is safe to call more than once.
func (l *Ledger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	if l.indexCh != nil {
		close(l.indexCh)
	}
	l.mu.Unlock()

	l.wg.Wait()

	if l.index != nil {
		if err := l.index.Close(); err != nil {
			return fmt.Errorf("failed to close index: %w", err)
		}
	}

	l.logger.Info("audit ledger closed",
		"events_logged", l.stats.logged.Load(),
		"write_errors", l.stats.writeErrors.Load(),
	)
	return nil
}
