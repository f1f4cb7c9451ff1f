package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/chain"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/integrity"
)

func testRecord(id string, index int64, ts time.Time) *audit.AuditRecord {
	stamp := audit.FormatTimestamp(ts)
	prev := chain.GenesisHash
	return &audit.AuditRecord{
		AuditID:   id,
		Timestamp: stamp,
		EventType: "review_completed",
		Level:     audit.LevelInfo,
		Data:      audit.Fields{"files": 2},
		Context:   audit.Fields{"user": "alice"},
		Compliance: &audit.ComplianceSection{
			Frameworks:       map[audit.Framework]audit.FrameworkResult{},
			ValidationErrors: []string{},
			DataIntegrity:    "abc",
		},
		ChainEntry: audit.ChainEntry{
			Index:        index,
			PreviousHash: prev,
			Hash:         chain.ComputeHash(id, stamp, prev),
			AuditID:      id,
			Timestamp:    stamp,
		},
	}
}

var ts = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func TestJSONExporter_Export(t *testing.T) {
	tests := []struct {
		name    string
		records []*audit.AuditRecord
		pretty  bool
		want    int
	}{
		{"empty", nil, false, 0},
		{"single", []*audit.AuditRecord{testRecord("audit_1_a", 0, ts)}, false, 1},
		{"multiple pretty", []*audit.AuditRecord{testRecord("audit_1_a", 0, ts), testRecord("audit_2_b", 1, ts)}, true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewJSONExporter(tt.pretty).Export(context.Background(), tt.records, &buf); err != nil {
				t.Fatalf("Export() failed: %v", err)
			}

			var decoded []map[string]any
			if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
				t.Fatalf("output is not a JSON array: %v\n%s", err, buf.String())
			}
			if len(decoded) != tt.want {
				t.Errorf("Expected %d records, got %d", tt.want, len(decoded))
			}
		})
	}
}

func TestJSONExporter_ExportStream(t *testing.T) {
	ch := make(chan *audit.AuditRecord, 3)
	ch <- testRecord("audit_1_a", 0, ts)
	ch <- testRecord("audit_2_b", 1, ts)
	ch <- testRecord("audit_3_c", 2, ts)
	close(ch)

	var buf bytes.Buffer
	if err := NewJSONExporter(true).ExportStream(context.Background(), ch, &buf); err != nil {
		t.Fatalf("ExportStream() failed: %v", err)
	}

	var decoded []audit.AuditRecord
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("stream output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(decoded) != 3 || decoded[2].AuditID != "audit_3_c" {
		t.Errorf("unexpected stream output: %+v", decoded)
	}
}

func TestJSONExporter_ExportStreamCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewJSONExporter(false).ExportStream(ctx, make(chan *audit.AuditRecord), &bytes.Buffer{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ExportStream() error = %v, want context.Canceled", err)
	}
}

func TestCSVExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	records := []*audit.AuditRecord{testRecord("audit_1_a", 0, ts), testRecord("audit_2_b", 1, ts)}
	records[1].Compliance = nil

	if err := NewCSVExporter(true).Export(context.Background(), records, &buf); err != nil {
		t.Fatalf("Export() failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows (header + 2), got %d", len(rows))
	}
	if strings.Join(rows[0][:3], ",") != "audit_id,timestamp,event_type" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	first := rows[1]
	if first[0] != "audit_1_a" || first[1] != "2025-01-15T10:30:00.000Z" {
		t.Errorf("unexpected first row: %v", first)
	}
	if first[7] != "true" || first[9] != "abc" {
		t.Errorf("compliance columns = %v", first[7:10])
	}
	if first[10] != `{"files":2}` {
		t.Errorf("data column = %s", first[10])
	}

	if rows[2][7] != "" {
		t.Errorf("record without compliance should leave validity empty, got %q", rows[2][7])
	}
}

func TestCSVExporter_ExportReport(t *testing.T) {
	report := &audit.ComplianceReport{
		Summary: audit.ReportSummary{TotalEvents: 4, CompliantEvents: 3, NonCompliantEvents: 1, ComplianceRate: 75},
		Frameworks: map[audit.Framework]audit.FrameworkReport{
			audit.FrameworkSOX:  {Framework: audit.FrameworkSOX, EventsEvaluated: 4, CompliantEvents: 4, Compliant: true},
			audit.FrameworkGDPR: {Framework: audit.FrameworkGDPR, EventsEvaluated: 4, CompliantEvents: 2},
		},
	}

	var buf bytes.Buffer
	if err := NewCSVExporter(true).ExportReport(context.Background(), report, &buf); err != nil {
		t.Fatalf("ExportReport() failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("Expected 4 rows, got %d: %v", len(rows), rows)
	}
	if rows[1][0] != "summary" || rows[1][4] != "75.00" || rows[1][5] != "false" {
		t.Errorf("summary row = %v", rows[1])
	}
	// Frameworks are sorted by name.
	if rows[2][0] != "gdpr" || rows[2][4] != "50.00" || rows[3][0] != "sox" {
		t.Errorf("framework rows = %v", rows[2:])
	}
}

func TestNew(t *testing.T) {
	if _, err := New("JSON", false); err != nil {
		t.Errorf("New(JSON) failed: %v", err)
	}
	if e, err := New("csv", false); err != nil {
		t.Errorf("New(csv) failed: %v", err)
	} else if _, ok := e.(*CSVExporter); !ok {
		t.Errorf("New(csv) returned %T", e)
	}
	if _, err := New("xml", false); err == nil {
		t.Error("New(xml) should fail")
	}
}

func TestScanRecords(t *testing.T) {
	fs := afero.NewMemMapFs()

	var b strings.Builder
	for i, r := range []*audit.AuditRecord{
		testRecord("audit_1_a", 0, ts),
		testRecord("audit_2_b", 1, ts.Add(time.Hour)),
		testRecord("audit_3_c", 2, ts.Add(2*time.Hour)),
	} {
		line, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("Marshal() failed: %v", err)
		}
		b.Write(line)
		b.WriteByte('\n')
		if i == 0 {
			b.WriteString("garbage\n")
		}
	}
	if err := afero.WriteFile(fs, filepath.Join("/logs", "audit_logs-2025-01-15.jsonl"), []byte(b.String()), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	start := ts.Add(time.Hour)
	scanner := integrity.NewScanner(fs, "/logs", nil)
	records, errs := ScanRecords(context.Background(), scanner, audit.Period{Start: &start})

	var ids []string
	for r := range records {
		ids = append(ids, r.AuditID)
	}
	if strings.Join(ids, ",") != "audit_2_b,audit_3_c" {
		t.Errorf("scanned ids = %v", ids)
	}

	err := <-errs
	var parseErr *audit.ParseError
	if !errors.As(err, &parseErr) || parseErr.Line != 2 {
		t.Errorf("Expected ParseError on line 2, got %v", err)
	}
}
