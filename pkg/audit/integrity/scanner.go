package integrity

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
)

const initialLineBuffer = 64 * 1024

// MaxLineSize is the largest record line, newline included, the scanner
// decodes. The ledger refuses to write longer records.
const MaxLineSize = 16 * 1024 * 1024

// ErrLineTooLong is reported for a line longer than MaxLineSize.
var ErrLineTooLong = fmt.Errorf("record line exceeds %d bytes", MaxLineSize)

// Line is one decoded record together with its location.
type Line struct {
	File   string
	Number int
	Record *audit.AuditRecord
}

// Scanner reads persisted records from a log directory. It only opens
// files for reading and may run while the ledger is appending.
type Scanner struct {
	fs     afero.Fs
	dir    string
	logger *slog.Logger
}

// NewScanner creates a scanner over dir. A nil fs means the OS filesystem.
func NewScanner(fs afero.Fs, dir string, logger *slog.Logger) *Scanner {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = slog.Default().With("component", "audit.scanner")
	}
	return &Scanner{fs: fs, dir: dir, logger: logger}
}

// Dir returns the scanned directory.
func (s *Scanner) Dir() string {
	return s.dir
}

// Files returns the paths of every active and rotated log file, sorted by
// name. A missing directory yields no files.
func (s *Scanner) Files() ([]string, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, audit.NewFilesystemError("read", s.dir, err)
	}

	var files []string
	for _, info := range infos {
		if info.IsDir() || !audit.IsLogFile(info.Name()) {
			continue
		}
		files = append(files, filepath.Join(s.dir, info.Name()))
	}
	return files, nil
}

// ScanFile decodes every non-blank line of path and passes it to fn.
// Malformed lines, including a partially written trailing line and lines
// longer than MaxLineSize, are skipped and returned as ParseErrors; the
// scan continues.
func (s *Scanner) ScanFile(ctx context.Context, path string, fn func(Line)) []error {
	f, err := s.fs.Open(path)
	if err != nil {
		return []error{audit.NewFilesystemError("open", path, err)}
	}
	defer f.Close()

	var errs []error
	name := filepath.Base(path)

	r := bufio.NewReaderSize(f, initialLineBuffer)

	lineNo := 0
	for {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			return errs
		}

		chunk, tooLong, readErr := readLine(r, MaxLineSize)
		if errors.Is(readErr, io.EOF) && len(chunk) == 0 && !tooLong {
			break
		}
		lineNo++

		switch raw := bytes.TrimSpace(chunk); {
		case tooLong:
			s.logger.Warn("skipping oversized record",
				"file", name,
				"line", lineNo,
				"max_size", MaxLineSize,
			)
			errs = append(errs, audit.NewParseError(name, lineNo, ErrLineTooLong))
		case len(raw) == 0:
		default:
			record, err := DecodeRecord(raw)
			if err != nil {
				s.logger.Warn("skipping malformed record",
					"file", name,
					"line", lineNo,
					"error", err,
				)
				errs = append(errs, audit.NewParseError(name, lineNo, err))
				break
			}
			fn(Line{File: name, Number: lineNo, Record: record})
		}

		if readErr != nil {
			if !errors.Is(readErr, io.EOF) {
				errs = append(errs, audit.NewFilesystemError("read", path, readErr))
			}
			break
		}
	}

	return errs
}

// readLine reads through the next newline. A line longer than limit is
// consumed but not returned, and tooLong is set.
func readLine(r *bufio.Reader, limit int) (line []byte, tooLong bool, err error) {
	for {
		chunk, readErr := r.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > limit {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(readErr, bufio.ErrBufferFull) {
			continue
		}
		return line, tooLong, readErr
	}
}

// DecodeRecord decodes one NDJSON line. Numbers are kept as json.Number so
// the payload re-serializes to the bytes it was digested from.
func DecodeRecord(raw []byte) (*audit.AuditRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var record audit.AuditRecord
	if err := dec.Decode(&record); err != nil {
		return nil, err
	}
	return &record, nil
}
