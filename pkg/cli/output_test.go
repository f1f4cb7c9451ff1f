package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type testRows struct{}

func (testRows) Headers() []string { return []string{"file", "size"} }
func (testRows) Rows() [][]string {
	return [][]string{
		{"audit_logs-2024-06-01.jsonl", "1.2 kB"},
		{"error_logs-2024-06-01.jsonl", "12 B"},
	}
}

func TestTextFormatter(t *testing.T) {
	formatter := &TextFormatter{}

	output, err := formatter.Format("test message")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(output) != "test message\n" {
		t.Errorf("Format() = %q, want %q", string(output), "test message\n")
	}

	output, err = formatter.Format(testRows{})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	expected := "audit_logs-2024-06-01.jsonl\t1.2 kB\nerror_logs-2024-06-01.jsonl\t12 B\n"
	if string(output) != expected {
		t.Errorf("Format() = %q, want %q", string(output), expected)
	}
}

func TestJSONFormatter(t *testing.T) {
	tests := []struct {
		name   string
		data   interface{}
		indent bool
	}{
		{name: "simple string", data: "test"},
		{name: "map with indent", data: map[string]string{"key": "value"}, indent: true},
		{
			name: "struct",
			data: struct {
				Verified bool `json:"verified"`
				Files    int  `json:"files_checked"`
			}{Verified: true, Files: 2},
			indent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &JSONFormatter{Indent: tt.indent}
			output, err := formatter.Format(tt.data)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}

			var result interface{}
			if err := json.Unmarshal(output, &result); err != nil {
				t.Errorf("Format() produced invalid JSON: %v", err)
			}
		})
	}
}

func TestJSONFormatterWriter(t *testing.T) {
	formatter := &JSONFormatter{Indent: true}
	buf := &bytes.Buffer{}

	if err := formatter.FormatTo(buf, map[string]string{"test": "value"}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var result map[string]string
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Errorf("FormatTo() produced invalid JSON: %v", err)
	}
	if result["test"] != "value" {
		t.Errorf("FormatTo() = %v", result)
	}
}

func TestCSVFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&CSVFormatter{}).FormatTo(buf, testRows{}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if lines[0] != "file,size" {
		t.Errorf("header = %q", lines[0])
	}

	buf.Reset()
	if err := (&CSVFormatter{NoHeader: true}).FormatTo(buf, testRows{}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if strings.HasPrefix(buf.String(), "file,size") {
		t.Error("NoHeader should omit the header row")
	}
}

func TestCSVFormatterRequiresTabular(t *testing.T) {
	if _, err := (&CSVFormatter{}).Format("plain"); err == nil {
		t.Error("Format() expected error for non-tabular data, got nil")
	}
	if _, err := (&TableFormatter{}).Format(42); err == nil {
		t.Error("Format() expected error for non-tabular data, got nil")
	}
}

func TestTableFormatter(t *testing.T) {
	output, err := (&TableFormatter{}).Format(testRows{})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(output), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "FILE") {
		t.Errorf("header = %q, want upper-cased column names", lines[0])
	}
	if strings.Index(lines[1], "1.2 kB") != strings.Index(lines[2], "12 B") {
		t.Errorf("columns are not aligned:\n%s", output)
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{FormatText, "*cli.TextFormatter"},
		{"", "*cli.TextFormatter"},
		{FormatJSON, "*cli.JSONFormatter"},
		{FormatCSV, "*cli.CSVFormatter"},
		{FormatTable, "*cli.TableFormatter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			formatter, err := NewFormatter(tt.format)
			if err != nil {
				t.Fatalf("NewFormatter() failed: %v", err)
			}
			if got := fmt.Sprintf("%T", formatter); got != tt.want {
				t.Errorf("NewFormatter(%q) type = %v, want %v", tt.format, got, tt.want)
			}
		})
	}

	_, err := NewFormatter("xml")
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "output" {
		t.Errorf("Expected ConfigError for unknown format, got %v", err)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1500, "1.5 kB"},
		{10 * 1000 * 1000, "10 MB"},
		{-2000, "-2.0 kB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
