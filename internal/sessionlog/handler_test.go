package sessionlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestTeeHandlerCapturesAtOrAboveMinLevel(t *testing.T) {
	var out bytes.Buffer
	base := slog.NewTextHandler(&out, nil)
	buf := NewRingBuffer(10)
	h := NewTeeHandler(base, slog.LevelWarn, buf)
	logger := slog.New(h)

	logger.Info("informational, should not be captured")
	logger.Warn("something recoverable happened")
	logger.Error("something worse happened")

	entries := buf.Entries()
	if len(entries) != 2 {
		t.Fatalf("captured %d entries, want 2: %+v", len(entries), entries)
	}
	if entries[0].Msg != "something recoverable happened" {
		t.Fatalf("entries[0].Msg = %q", entries[0].Msg)
	}
	if out.Len() == 0 {
		t.Fatal("base handler received nothing; Info should still reach it")
	}
}

func TestTeeHandlerGroupTagging(t *testing.T) {
	base := slog.NewTextHandler(&bytes.Buffer{}, nil)
	buf := NewRingBuffer(10)
	h := NewTeeHandler(base, slog.LevelWarn, buf)
	logger := slog.New(h).WithGroup("history")

	logger.Warn("truncated an out-of-range cursor")

	entries := buf.Entries()
	if len(entries) != 1 {
		t.Fatalf("captured %d entries, want 1", len(entries))
	}
	if entries[0].Group != "history" {
		t.Fatalf("Group = %q, want history", entries[0].Group)
	}
	if tag := entries[0].Tag(); tag != "[WARN-HISTORY]" {
		t.Fatalf("Tag() = %q, want [WARN-HISTORY]", tag)
	}
}

func TestRingBufferDropsOldest(t *testing.T) {
	buf := NewRingBuffer(3)
	for i := 0; i < 5; i++ {
		buf.push(Entry{Msg: string(rune('a' + i))})
	}
	entries := buf.Entries()
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	if entries[0].Msg != "c" || entries[2].Msg != "e" {
		t.Fatalf("entries = %+v, want [c d e]", entries)
	}
}

func TestTeeHandlerNilBufferIsSafe(t *testing.T) {
	base := slog.NewTextHandler(&bytes.Buffer{}, nil)
	h := NewTeeHandler(base, slog.LevelWarn, nil)
	logger := slog.New(h)
	logger.Warn("no buffer attached, must not panic")
}

func TestTeeHandlerEnabledDelegatesToBase(t *testing.T) {
	base := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError})
	h := NewTeeHandler(base, slog.LevelWarn, NewRingBuffer(10))
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("Enabled should reflect the base handler's level, not minLevel")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("Enabled should be true for a level the base handler accepts")
	}
}
