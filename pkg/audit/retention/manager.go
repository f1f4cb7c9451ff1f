package retention

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
)

// Config contains configuration for the retention manager.
type Config struct {
	// Dir is the log directory scanned by cleanup.
	Dir string

	// Fs is the filesystem holding the log files.
	// Default: the OS filesystem
	Fs afero.Fs

	// Logger receives cleanup and rotation diagnostics.
	Logger *slog.Logger

	// Now returns the current time.
	// Default: time.Now
	Now func() time.Time
}

// Manager deletes expired log files and rotates oversized active files.
// Both operations recover from filesystem failures locally.
type Manager struct {
	dir    string
	fs     afero.Fs
	logger *slog.Logger
	now    func() time.Time
}

// NewManager creates a new retention manager.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		dir:    cfg.Dir,
		fs:     cfg.Fs,
		logger: cfg.Logger,
		now:    cfg.Now,
	}
	if m.fs == nil {
		m.fs = afero.NewOsFs()
	}
	if m.logger == nil {
		m.logger = slog.Default().With("component", "audit.retention")
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Cleanup deletes every log file older than its category's retention
// window. Files of unknown categories, categories without a window, and
// the current day's active files are kept. A failure on one file is
// recorded in the result and the scan continues with the next file.
func (m *Manager) Cleanup(ctx context.Context, policy audit.RetentionPolicy) audit.CleanupResult {
	result := audit.CleanupResult{Errors: []string{}}

	infos, err := afero.ReadDir(m.fs, m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			m.logger.Debug("log directory does not exist, nothing to clean", "dir", m.dir)
			return result
		}
		fsErr := audit.NewFilesystemError("read", m.dir, err)
		m.logger.Error("failed to list log directory", "error", fsErr)
		result.Errors = append(result.Errors, fsErr.Error())
		return result
	}

	now := m.now()
	active := m.activeFiles(now)

	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, "cleanup interrupted: "+err.Error())
			break
		}
		if info.IsDir() || !audit.IsLogFile(info.Name()) {
			continue
		}

		category, ok := audit.CategoryOf(info.Name())
		if !ok {
			continue
		}
		days := policy[category]
		if days <= 0 {
			continue
		}
		if active[info.Name()] {
			continue
		}

		age := now.Sub(info.ModTime())
		if age <= time.Duration(days)*24*time.Hour {
			continue
		}

		path := filepath.Join(m.dir, info.Name())
		if err := m.fs.Remove(path); err != nil {
			fsErr := audit.NewFilesystemError("remove", path, err)
			m.logger.Error("failed to remove expired log file", "error", fsErr)
			result.Errors = append(result.Errors, fsErr.Error())
			continue
		}

		result.FilesRemoved++
		result.SpaceFreed += info.Size()

		m.logger.Info("removed expired log file",
			"file", info.Name(),
			"category", category,
			"age_days", int(age.Hours()/24),
			"retention_days", days,
			"size", info.Size(),
		)
	}

	if result.FilesRemoved > 0 || len(result.Errors) > 0 {
		m.logger.Info("retention cleanup completed",
			"files_removed", result.FilesRemoved,
			"space_freed", result.SpaceFreed,
			"errors", len(result.Errors),
		)
	} else {
		m.logger.Debug("retention cleanup completed, nothing removed")
	}

	return result
}

// activeFiles returns the names of today's active file of every category.
func (m *Manager) activeFiles(now time.Time) map[string]bool {
	active := make(map[string]bool, len(audit.Categories))
	for _, c := range audit.Categories {
		active[audit.ActiveFileName(c, now)] = true
	}
	return active
}

// Rotate renames path to its timestamped archival name when it is larger
// than maxSize, freeing path for new appends. It returns the archival path
// and whether a rename happened. Failures are logged and swallowed: the
// caller keeps appending to the original file.
func (m *Manager) Rotate(path string, maxSize int64) (string, bool) {
	info, err := m.fs.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Error("failed to stat log file for rotation",
				"error", audit.NewFilesystemError("stat", path, err),
			)
		}
		return "", false
	}
	if info.Size() <= maxSize {
		return "", false
	}

	rotated, err := m.unusedRotatedPath(path)
	if err != nil {
		m.logger.Error("failed to pick rotated file name",
			"error", audit.NewFilesystemError("stat", path, err),
		)
		return "", false
	}
	if err := m.fs.Rename(path, rotated); err != nil {
		m.logger.Error("failed to rotate log file",
			"error", audit.NewFilesystemError("rename", path, err),
			"size", info.Size(),
			"max_size", maxSize,
		)
		return "", false
	}

	m.logger.Info("rotated log file",
		"file", path,
		"rotated_to", rotated,
		"size", info.Size(),
		"max_size", maxSize,
	)
	return rotated, true
}

// unusedRotatedPath returns the archival name for path, adding a numeric
// suffix when an archive with the same timestamp already exists. Rename
// replaces its target, so an existing archive must never be chosen.
func (m *Manager) unusedRotatedPath(path string) (string, error) {
	base := audit.RotatedPath(path, m.now())
	candidate := base
	for n := 1; ; n++ {
		exists, err := afero.Exists(m.fs, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = strings.TrimSuffix(base, audit.FileExt) + "-" + strconv.Itoa(n) + audit.FileExt
	}
}
