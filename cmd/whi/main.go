// Command whi is the PATH-management CLI: a thin cobra command tree over
// the core engines in internal/dispatch, internal/venv, and
// internal/transition. No mutation logic lives here — every RunE parses
// flags, calls one core operation, and prints either the transition
// protocol (for shell integration) or a human-readable result.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"whi/internal/protected"
	"whi/internal/sessionlog"
	"whi/internal/whierr"
)

func setupLogging() *sessionlog.RingBuffer {
	buf := sessionlog.NewRingBuffer(64)
	base := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
	slog.SetDefault(slog.New(sessionlog.NewTeeHandler(base, slog.LevelWarn, buf)))
	return buf
}

func main() {
	setupLogging()

	if err := protected.MigrateLegacyConfig(); err != nil {
		slog.Warn("legacy config migration failed", "error", err)
	}
	if missing := protected.ValidateCritical(); len(missing) > 0 {
		slog.Warn("critical environment variables are unset", "missing", missing)
	}

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "whi:", err)
		os.Exit(whierr.ExitCode(err))
	}
}
