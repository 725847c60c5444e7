// Package sessionlog provides the structured logging handler whi's core
// uses: every record goes to the base handler (normally a slog.JSONHandler
// or slog.TextHandler writing to stderr), and WARN-and-above records are
// additionally captured into a bounded in-memory ring buffer tagged with
// their originating component, so a CLI invocation can print a compact
// "what went wrong" summary without re-parsing its own log output.
package sessionlog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"time"
)

// Entry is one captured WARN-or-above record.
type Entry struct {
	Time  time.Time
	Level slog.Level
	Msg   string
	Group string // accumulated dot-separated slog group name, e.g. "history"
}

// Tag renders the entry's group as a bracketed component tag, e.g.
// "[WARN-HISTORY]"; an entry with no group renders as the bare level,
// e.g. "[WARN]".
func (e Entry) Tag() string {
	if e.Group == "" {
		return fmt.Sprintf("[%s]", e.Level.String())
	}
	return fmt.Sprintf("[%s-%s]", e.Level.String(), upper(e.Group))
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

// RingBuffer is a fixed-capacity, concurrency-safe buffer of the most
// recent Entry values; once full, the oldest entry is dropped to make
// room for the newest.
type RingBuffer struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
}

// NewRingBuffer constructs a RingBuffer holding at most capacity entries.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{capacity: capacity}
}

func (r *RingBuffer) push(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	if len(r.entries) > r.capacity {
		r.entries = r.entries[len(r.entries)-r.capacity:]
	}
}

// Entries returns a snapshot of the currently buffered entries, oldest
// first.
func (r *RingBuffer) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// TeeHandler wraps a base slog.Handler and tees records at or above
// minLevel into a RingBuffer. All records are forwarded to the base
// handler regardless of level; only the ring-buffer capture is gated by
// minLevel.
type TeeHandler struct {
	base     slog.Handler
	buffer   *RingBuffer
	minLevel slog.Level
	group    string
}

// NewTeeHandler creates a TeeHandler that delegates to base and captures
// every record whose level is >= minLevel into buffer. Passing a nil
// buffer is safe; the handler simply delegates to base without capturing.
func NewTeeHandler(base slog.Handler, minLevel slog.Level, buffer *RingBuffer) *TeeHandler {
	return &TeeHandler{base: base, buffer: buffer, minLevel: minLevel}
}

// Enabled reports whether the base handler is enabled for the given
// level. The capture threshold (minLevel) does not affect this.
func (h *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

// Handle forwards the record to the base handler, then conditionally
// captures it if the record's level meets or exceeds minLevel.
func (h *TeeHandler) Handle(ctx context.Context, record slog.Record) error {
	err := h.base.Handle(ctx, record)

	if h.buffer != nil && record.Level >= h.minLevel {
		func() {
			defer func() {
				if r := recover(); r != nil {
					fmt.Fprintf(os.Stderr, "[session-log] capture panicked: %v\n%s\n", r, debug.Stack())
				}
			}()
			h.buffer.push(Entry{Time: record.Time, Level: record.Level, Msg: record.Message, Group: h.group})
		}()
	}

	return err
}

// WithAttrs returns a new TeeHandler whose base handler has the given
// attributes applied. The buffer, minLevel, and accumulated group are
// preserved.
func (h *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return &TeeHandler{base: h.base.WithAttrs(attrs), buffer: h.buffer, minLevel: h.minLevel, group: h.group}
}

// WithGroup returns a new TeeHandler whose base handler is wrapped with
// the given group name, appended to the accumulated group string.
func (h *TeeHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newGroup := name
	if h.group != "" {
		newGroup = h.group + "." + name
	}
	return &TeeHandler{base: h.base.WithGroup(name), buffer: h.buffer, minLevel: h.minLevel, group: newGroup}
}
