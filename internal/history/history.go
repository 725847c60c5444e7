// Package history implements the per-scope PATH history log: an
// append-only sequence of timestamped snapshots with a cursor for
// undo/redo, branch-on-write truncation, and bounded retention.
package history

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"whi/internal/atomicfile"
	"whi/internal/whierr"
)

// MaxSnapshots is the retention ceiling: entry 0 (the initial PATH) plus
// the most recent MaxSnapshots-1 entries are kept; anything older in
// between is dropped.
const MaxSnapshots = 500

const snapshotPrefix = "SNAPSHOT:"

// Log is a single scope's history: one append-only log file and one
// cursor sidecar file. A zero-value Log is not usable; construct with
// Open.
type Log struct {
	logPath    string
	cursorPath string
}

// Open binds a Log to the given log/cursor file paths. Neither file needs
// to exist yet; they are created lazily on first write.
func Open(logPath, cursorPath string) *Log {
	return &Log{logPath: logPath, cursorPath: cursorPath}
}

// Snapshots returns every recorded PATH value in chronological order,
// entry 0 being the initial PATH.
func (l *Log) Snapshots() ([]string, error) {
	data, err := os.ReadFile(l.logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, whierr.New("history.Snapshots", whierr.IoFailure, err)
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, snapshotPrefix) {
			continue
		}
		rest := line[len(snapshotPrefix):]
		idx := strings.Index(rest, ":")
		if idx < 0 {
			continue
		}
		out = append(out, rest[idx+1:])
	}
	return out, nil
}

// Initial returns the first recorded snapshot (entry 0), or "" if none
// have been recorded yet.
func (l *Log) Initial() (string, error) {
	snaps, err := l.Snapshots()
	if err != nil {
		return "", err
	}
	if len(snaps) == 0 {
		return "", nil
	}
	return snaps[0], nil
}

// Cursor returns the current cursor position and whether one is set. No
// cursor set means "at the latest entry".
func (l *Log) Cursor() (pos int, ok bool, err error) {
	data, readErr := os.ReadFile(l.cursorPath)
	if os.IsNotExist(readErr) {
		return 0, false, nil
	}
	if readErr != nil {
		return 0, false, whierr.New("history.Cursor", whierr.IoFailure, readErr)
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(string(data)))
	if convErr != nil {
		return 0, false, whierr.New("history.Cursor", whierr.ParseFailure, convErr)
	}
	return n, true, nil
}

// SetCursor records position as the cursor.
func (l *Log) SetCursor(position int) error {
	return atomicfile.Write(l.cursorPath, []byte(strconv.Itoa(position)), 0o600)
}

// ClearCursor removes the cursor file, if present, returning to "at the
// latest entry".
func (l *Log) ClearCursor() error {
	if err := os.Remove(l.cursorPath); err != nil && !os.IsNotExist(err) {
		return whierr.New("history.ClearCursor", whierr.IoFailure, err)
	}
	return nil
}

// Current returns the snapshot the cursor currently points at (the latest
// one, if no cursor is set).
func (l *Log) Current() (string, error) {
	snaps, err := l.Snapshots()
	if err != nil {
		return "", err
	}
	if len(snaps) == 0 {
		return "", whierr.New("history.Current", whierr.EmptyResult, nil)
	}
	pos, ok, err := l.Cursor()
	if err != nil {
		return "", err
	}
	if !ok {
		return snaps[len(snaps)-1], nil
	}
	if pos >= len(snaps) {
		return "", whierr.Newf("history.Current", whierr.OutOfRange, "cursor position %d exceeds history length %d", pos, len(snaps))
	}
	return snaps[pos], nil
}

// Append records value as a new snapshot. If a cursor is set (the caller
// has undone to an earlier point), the log is first truncated to discard
// every entry after the cursor before appending — branch-on-write — and
// the cursor is cleared so Append's new entry becomes the latest. After
// appending, retention is enforced.
func (l *Log) Append(value string) error {
	pos, hasCursor, err := l.Cursor()
	if err != nil {
		return err
	}
	if hasCursor {
		if err := l.truncateKeepFirst(pos + 1); err != nil {
			return err
		}
		if err := l.ClearCursor(); err != nil {
			return err
		}
	}
	line := fmt.Sprintf("%s%d:%s", snapshotPrefix, time.Now().Unix(), value)
	if err := atomicfile.AppendLine(l.logPath, line, 0o600); err != nil {
		return err
	}
	return l.enforceRetention()
}

// Reset discards all history and records value as the sole, initial
// snapshot.
func (l *Log) Reset(value string) error {
	if err := os.Remove(l.logPath); err != nil && !os.IsNotExist(err) {
		return whierr.New("history.Reset", whierr.IoFailure, err)
	}
	if err := l.ClearCursor(); err != nil {
		return err
	}
	line := fmt.Sprintf("%s%d:%s", snapshotPrefix, time.Now().Unix(), value)
	return atomicfile.AppendLine(l.logPath, line, 0o600)
}

// truncateKeepFirst rewrites the log to keep only its first keepCount
// snapshot lines.
func (l *Log) truncateKeepFirst(keepCount int) error {
	snaps, err := l.Snapshots()
	if err != nil {
		return err
	}
	if keepCount >= len(snaps) {
		return nil
	}
	return l.rewrite(snaps[:keepCount])
}

// enforceRetention keeps entry 0 plus the most recent MaxSnapshots-1
// entries once the log exceeds MaxSnapshots total.
func (l *Log) enforceRetention() error {
	snaps, err := l.Snapshots()
	if err != nil {
		return err
	}
	if len(snaps) <= MaxSnapshots {
		return nil
	}
	dropCount := len(snaps) - MaxSnapshots
	kept := make([]string, 0, MaxSnapshots)
	kept = append(kept, snaps[0])
	kept = append(kept, snaps[dropCount+1:]...)
	return l.rewrite(kept)
}

// rewrite replaces the log contents with one SNAPSHOT line per value,
// re-using the current wall clock for every line since the original
// per-entry timestamps are not preserved across a rewrite.
func (l *Log) rewrite(values []string) error {
	var b strings.Builder
	now := time.Now().Unix()
	for _, v := range values {
		b.WriteString(fmt.Sprintf("%s%d:%s\n", snapshotPrefix, now, v))
	}
	return atomicfile.Write(l.logPath, []byte(b.String()), 0o600)
}

// Len reports the number of recorded snapshots.
func (l *Log) Len() (int, error) {
	snaps, err := l.Snapshots()
	if err != nil {
		return 0, err
	}
	return len(snaps), nil
}
