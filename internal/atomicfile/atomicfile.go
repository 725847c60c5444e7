// Package atomicfile implements the write-then-rename publication contract
// every file the whi core produces obeys: a uniquely named temp sibling is
// written and fsynced, then renamed over the target. At no observable
// moment does the target hold partial content.
package atomicfile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"

	"whi/internal/whierr"
)

const (
	maxRenameRetry       = 10
	renameRetryBaseDelay = 10 * time.Millisecond
)

// Write publishes data to path atomically: a temp file in the same
// directory is created with mode (as filtered by the process umask),
// written, fsynced, and renamed over path. On any failure the temp file is removed on a best-effort
// basis, mirroring the Drop-based cleanup the original atomic writer uses.
func Write(path string, data []byte, mode os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if mkErr := os.MkdirAll(dir, 0o700); mkErr != nil {
		return whierr.New("atomicfile.Write", whierr.IoFailure, fmt.Errorf("mkdir %s: %w", dir, mkErr))
	}

	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.tmp.%s", filepath.Base(path), uuid.NewString()))
	tmpFile, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return whierr.New("atomicfile.Write", whierr.IoFailure, fmt.Errorf("create temp: %w", err))
	}

	committed := false
	defer func() {
		if !committed {
			if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				slog.Warn("[WARN-ATOMICFILE] failed to remove abandoned temp file", "path", tmpPath, "error", rmErr)
			}
		}
	}()

	if _, err = tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return whierr.New("atomicfile.Write", whierr.IoFailure, fmt.Errorf("write temp: %w", err))
	}
	if err = tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return whierr.New("atomicfile.Write", whierr.IoFailure, fmt.Errorf("fsync temp: %w", err))
	}
	if err = tmpFile.Close(); err != nil {
		return whierr.New("atomicfile.Write", whierr.IoFailure, fmt.Errorf("close temp: %w", err))
	}

	if err = renameWithRetry(tmpPath, path); err != nil {
		return whierr.New("atomicfile.Write", whierr.IoFailure, fmt.Errorf("rename: %w", err))
	}
	committed = true
	return nil
}

// renameWithRetry retries the rename on Windows, where antivirus/indexing
// can transiently hold the target or temp file open, using a linear
// backoff. On other platforms a single rename either succeeds or the
// error is returned immediately.
func renameWithRetry(src, dst string) error {
	var lastErr error
	for attempt := range maxRenameRetry {
		if err := os.Rename(src, dst); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if runtime.GOOS != "windows" {
			return lastErr
		}
		time.Sleep(time.Duration(attempt+1) * renameRetryBaseDelay)
	}
	return lastErr
}

// AppendLine opens path for append (creating it at mode if absent) and
// writes line plus a trailing newline. This is used by the history log,
// which is append-only and therefore does not go through Write's
// temp-then-rename path — §5 relies on append-only writes, not atomic
// rename, for history log safety under concurrent invocations.
func AppendLine(path string, line string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return whierr.New("atomicfile.AppendLine", whierr.IoFailure, fmt.Errorf("mkdir: %w", err))
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, mode)
	if err != nil {
		return whierr.New("atomicfile.AppendLine", whierr.IoFailure, fmt.Errorf("open: %w", err))
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return whierr.New("atomicfile.AppendLine", whierr.IoFailure, fmt.Errorf("write: %w", err))
	}
	return nil
}
