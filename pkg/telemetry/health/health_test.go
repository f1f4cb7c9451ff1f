package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name            string
		timeout         time.Duration
		expectedTimeout time.Duration
	}{
		{"default timeout", 0, 5 * time.Second},
		{"custom timeout", 10 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(tt.timeout)
			if checker.checkTimeout != tt.expectedTimeout {
				t.Errorf("Expected timeout %v, got %v", tt.expectedTimeout, checker.checkTimeout)
			}
			if len(checker.ListChecks()) != 0 {
				t.Errorf("Expected 0 checks, got %d", len(checker.ListChecks()))
			}
		})
	}
}

func TestCheckReadiness(t *testing.T) {
	checker := New(time.Second)

	if status := checker.CheckReadiness(context.Background()); status.Status != StatusReady {
		t.Errorf("Expected ready with no checks, got %s", status.Status)
	}

	checker.RegisterCheck("ok", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("broken", func(ctx context.Context) error { return errors.New("disk full") })

	status := checker.CheckReadiness(context.Background())
	if status.Status != StatusDegraded {
		t.Errorf("Expected degraded, got %s", status.Status)
	}
	if status.Checks["ok"].Status != StatusOK {
		t.Errorf("Expected ok check to pass, got %+v", status.Checks["ok"])
	}
	if r := status.Checks["broken"]; r.Status != StatusUnhealthy || r.Message != "disk full" {
		t.Errorf("unexpected broken result: %+v", r)
	}

	checker.RegisterCheck("broken", func(ctx context.Context) error { return nil })
	if status := checker.CheckReadiness(context.Background()); status.Status != StatusReady {
		t.Errorf("Expected ready after replacing the check, got %s", status.Status)
	}
}

func TestCheckTimeout(t *testing.T) {
	checker := New(20 * time.Millisecond)
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return nil
	})

	status := checker.CheckReadiness(context.Background())
	if r := status.Checks["slow"]; r.Status != StatusUnhealthy || r.Message != ErrCheckTimeout.Error() {
		t.Errorf("Expected timeout result, got %+v", r)
	}
}

func TestHandlers(t *testing.T) {
	checker := New(time.Second)
	healthy := true
	checker.RegisterCheck("ledger", StateCheck(func() bool { return !healthy }, "audit ledger closed"))

	mux := http.NewServeMux()
	Register(mux, checker, "1.0.0", "abc123", "2024-06-01")

	tests := []struct {
		name    string
		method  string
		path    string
		healthy bool
		want    int
	}{
		{"liveness", http.MethodGet, "/health", true, http.StatusOK},
		{"ready", http.MethodGet, "/ready", true, http.StatusOK},
		{"not ready", http.MethodGet, "/ready", false, http.StatusServiceUnavailable},
		{"version", http.MethodGet, "/version", true, http.StatusOK},
		{"head", http.MethodHead, "/health", true, http.StatusOK},
		{"post rejected", http.MethodPost, "/ready", true, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			healthy = tt.healthy
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}

	healthy = true
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	var info VersionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("failed to decode version: %v", err)
	}
	if info.Version != "1.0.0" || info.Commit != "abc123" {
		t.Errorf("unexpected version info: %+v", info)
	}
}

func TestDirectoryCheck(t *testing.T) {
	fs := afero.NewMemMapFs()
	check := DirectoryCheck(fs, "/logs")

	if err := check(context.Background()); err == nil {
		t.Error("Expected error for missing directory")
	}

	if err := fs.MkdirAll("/logs", 0755); err != nil {
		t.Fatalf("MkdirAll() failed: %v", err)
	}
	if err := check(context.Background()); err != nil {
		t.Errorf("check failed: %v", err)
	}
	if _, err := fs.Stat("/logs/" + probeName); !os.IsNotExist(err) {
		t.Error("probe file was not removed")
	}

	if err := DirectoryCheck(afero.NewReadOnlyFs(fs), "/logs")(context.Background()); err == nil {
		t.Error("Expected error for read-only directory")
	}
}

func TestWriteErrorCheck(t *testing.T) {
	var failures int64 = 3
	check := WriteErrorCheck(func() int64 { return failures })

	if err := check(context.Background()); err != nil {
		t.Errorf("failures before registration should not count: %v", err)
	}

	failures = 5
	if err := check(context.Background()); err == nil {
		t.Error("Expected error after new write failures")
	}
	if err := check(context.Background()); err != nil {
		t.Errorf("Expected recovery without new failures, got %v", err)
	}
}
