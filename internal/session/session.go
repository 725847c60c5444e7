// Package session resolves the on-disk layout for per-shell session state:
// the shared runtime directory, and the log/cursor file pairs keyed by
// parent shell PID (global scope) or by parent PID + venv directory hash
// (venv scope).
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"whi/internal/whierr"
)

// MaxSessionFiles is the round-robin ceiling on retained session log
// files; once exceeded, the oldest-by-mtime files are deleted.
const MaxSessionFiles = 30

// Dir resolves the shared session runtime directory: XDG_RUNTIME_DIR,
// falling back to TMPDIR, falling back to /tmp, joined with a
// "whi-<uid>" component so concurrent users never collide. The directory
// is created with mode 0700 if absent.
func Dir() (string, error) {
	base := os.Getenv("XDG_RUNTIME_DIR")
	if base == "" {
		base = os.Getenv("TMPDIR")
	}
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, fmt.Sprintf("whi-%d", os.Getuid()))
	if err := mkdirSecure(dir); err != nil {
		return "", whierr.New("session.Dir", whierr.IoFailure, err)
	}
	return dir, nil
}

// LogFile returns the path to the global-scope history log for pid.
func LogFile(pid int) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fmt.Sprintf("session_%d.log", pid)), nil
}

// CursorFile returns the path to the global-scope cursor sidecar for pid.
func CursorFile(pid int) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fmt.Sprintf("session_%d.cursor", pid)), nil
}

// VenvDir returns the directory holding a specific venv's state
// (venv_restore, venv_dir, venv_env_keys, plus its own log/cursor pair),
// keyed by parent pid and the venv's stable directory hash. The directory
// is created with mode 0700 if absent.
func VenvDir(pid int, venvHash uint64) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	venvDir := filepath.Join(dir, fmt.Sprintf("session_%d", pid), "venvs", fmt.Sprintf("venv_%x", venvHash))
	if err := mkdirSecure(venvDir); err != nil {
		return "", whierr.New("session.VenvDir", whierr.IoFailure, err)
	}
	return venvDir, nil
}

// VenvLogFile returns the venv-scope history log path under venvDir.
func VenvLogFile(venvDir string) string { return filepath.Join(venvDir, "session.log") }

// VenvCursorFile returns the venv-scope cursor sidecar path under venvDir.
func VenvCursorFile(venvDir string) string { return filepath.Join(venvDir, "session.cursor") }

// VenvHash computes a stable 64-bit FNV-1a hash of the venv directory's
// canonical (symlink-resolved) path, used to namespace per-venv session
// state. Two different spellings of the same directory hash identically.
func VenvHash(venvDir string) (uint64, error) {
	canon, err := filepath.Abs(venvDir)
	if err != nil {
		return 0, whierr.New("session.VenvHash", whierr.IoFailure, err)
	}
	if resolved, err := filepath.EvalSymlinks(canon); err == nil {
		canon = resolved
	}
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(canon); i++ {
		h ^= uint64(canon[i])
		h *= prime64
	}
	return h, nil
}

// LogEntry pairs a session log's path with its modification time, used for
// the round-robin retention sweep.
type LogEntry struct {
	Path    string
	ModTime int64
}

// ListLogs enumerates every "session_*.log" file directly under the
// session directory (global scope only; venv-scope logs are not subject
// to the top-level round-robin).
func ListLogs() ([]LogEntry, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, whierr.New("session.ListLogs", whierr.IoFailure, err)
	}
	var logs []LogEntry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !matchesSessionLog(name) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		logs = append(logs, LogEntry{Path: filepath.Join(dir, name), ModTime: info.ModTime().Unix()})
	}
	return logs, nil
}

func matchesSessionLog(name string) bool {
	const prefix, suffix = "session_", ".log"
	if len(name) <= len(prefix)+len(suffix) {
		return false
	}
	if name[:len(prefix)] != prefix || name[len(name)-len(suffix):] != suffix {
		return false
	}
	middle := name[len(prefix) : len(name)-len(suffix)]
	_, err := strconv.Atoi(middle)
	return err == nil
}

// CleanupOld deletes the oldest-by-mtime session logs (and their cursor
// sidecars, if present) once the count exceeds MaxSessionFiles, returning
// the number of sessions removed.
func CleanupOld() (int, error) {
	logs, err := ListLogs()
	if err != nil {
		return 0, err
	}
	if len(logs) <= MaxSessionFiles {
		return 0, nil
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].ModTime < logs[j].ModTime })
	drop := len(logs) - MaxSessionFiles
	for i := 0; i < drop; i++ {
		_ = os.Remove(logs[i].Path)
		cursor := logs[i].Path[:len(logs[i].Path)-len(".log")] + ".cursor"
		_ = os.Remove(cursor)
	}
	return drop, nil
}
