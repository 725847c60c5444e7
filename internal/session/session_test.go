package session

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func withRuntimeDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)
	return dir
}

func TestDirCreatesWithSecureMode(t *testing.T) {
	withRuntimeDir(t)
	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("Dir did not create a directory")
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0o700 {
		t.Fatalf("Dir mode = %o, want 0700", info.Mode().Perm())
	}
}

func TestLogFileAndCursorFileNaming(t *testing.T) {
	withRuntimeDir(t)
	logPath, err := LogFile(4242)
	if err != nil {
		t.Fatalf("LogFile: %v", err)
	}
	if filepath.Base(logPath) != "session_4242.log" {
		t.Fatalf("LogFile base = %q", filepath.Base(logPath))
	}
	cursorPath, err := CursorFile(4242)
	if err != nil {
		t.Fatalf("CursorFile: %v", err)
	}
	if filepath.Base(cursorPath) != "session_4242.cursor" {
		t.Fatalf("CursorFile base = %q", filepath.Base(cursorPath))
	}
}

func TestVenvHashStableAcrossSpellings(t *testing.T) {
	dir := t.TempDir()
	h1, err := VenvHash(dir)
	if err != nil {
		t.Fatalf("VenvHash: %v", err)
	}
	h2, err := VenvHash(dir + string(filepath.Separator))
	if err != nil {
		t.Fatalf("VenvHash: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("hash differs for trailing-slash spelling: %x vs %x", h1, h2)
	}
}

func TestCleanupOldKeepsMostRecent(t *testing.T) {
	withRuntimeDir(t)
	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	for i := 0; i < MaxSessionFiles+5; i++ {
		path := filepath.Join(dir, "session_"+itoa(i)+".log")
		if err := os.WriteFile(path, []byte("SNAPSHOT:0:/a\n"), 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	removed, err := CleanupOld()
	if err != nil {
		t.Fatalf("CleanupOld: %v", err)
	}
	if removed != 5 {
		t.Fatalf("removed = %d, want 5", removed)
	}
	logs, err := ListLogs()
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(logs) != MaxSessionFiles {
		t.Fatalf("remaining logs = %d, want %d", len(logs), MaxSessionFiles)
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}
