package health

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/spf13/afero"
)

// probeName is written and removed by DirectoryCheck. It has no .jsonl
// suffix so retention and verification never see it.
const probeName = ".auditlog-health"

// DirectoryCheck verifies that dir exists and accepts new files.
func DirectoryCheck(fs afero.Fs, dir string) CheckFunc {
	return func(ctx context.Context) error {
		info, err := fs.Stat(dir)
		if err != nil {
			return fmt.Errorf("log directory unavailable: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("log directory %s is not a directory", dir)
		}

		probe := filepath.Join(dir, probeName)
		if err := afero.WriteFile(fs, probe, nil, 0644); err != nil {
			return fmt.Errorf("log directory not writable: %w", err)
		}
		return fs.Remove(probe)
	}
}

// WriteErrorCheck fails when the counter grew since the previous call, so a
// ledger that recovered from a transient failure reports ready again.
func WriteErrorCheck(counter func() int64) CheckFunc {
	var last atomic.Int64
	last.Store(counter())

	return func(ctx context.Context) error {
		current := counter()
		previous := last.Swap(current)
		if current > previous {
			return fmt.Errorf("%d audit write(s) failed since the last check", current-previous)
		}
		return nil
	}
}

// StateCheck fails while broken reports true.
func StateCheck(broken func() bool, message string) CheckFunc {
	return func(ctx context.Context) error {
		if broken() {
			return fmt.Errorf("%s", message)
		}
		return nil
	}
}
