package dispatch

import (
	"os"
	"path/filepath"
	"testing"

	"whi/internal/pathval"
	"whi/internal/protected"
)

func newDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	d, err := New(4242)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestCleanRecordsHistory(t *testing.T) {
	d := newDispatcher(t)
	current := pathval.Parse("/a:/b:/a")
	ops, err := d.Clean(current)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if len(ops) != 1 || ops[0].Value != "/a:/b" {
		t.Fatalf("ops = %+v", ops)
	}
}

func TestDeleteDoesNotRefuseProtectedPaths(t *testing.T) {
	// No dispatcher operation consults ProtectedPaths, so a user asking to
	// delete a protected entry gets it deleted.
	d := newDispatcher(t)
	d.ProtectedPaths = protected.NewSet([]string{"/usr/bin"})
	current := pathval.Parse("/usr/bin:/opt/tool")
	ops, err := d.Delete(current, []int{1})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(ops) != 1 || ops[0].Value != "/opt/tool" {
		t.Fatalf("ops = %+v", ops)
	}
}

func TestDeleteFiltersSelfExeDir(t *testing.T) {
	exe, err := os.Executable()
	if err != nil {
		t.Skipf("os.Executable unavailable: %v", err)
	}
	selfDir := filepath.Dir(exe)

	d := newDispatcher(t)
	current := pathval.Parse(selfDir + ":/opt/tool")
	ops, err := d.Delete(current, []int{1, 2})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(ops) != 1 || ops[0].Value != selfDir {
		t.Fatalf("ops = %+v, want self-exe dir left in place", ops)
	}
}

func TestUndoRedoThroughDispatcher(t *testing.T) {
	d := newDispatcher(t)
	current := pathval.Parse("/a:/b")
	if _, err := d.Clean(current); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	moved := pathval.Parse("/b:/a")
	if _, err := d.Move(moved, 2, 1); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if _, err := d.Undo(1); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if _, err := d.Redo(1); err != nil {
		t.Fatalf("Redo: %v", err)
	}
}

func TestUndoRedoWithCount(t *testing.T) {
	d := newDispatcher(t)
	// Four recorded states: entry 0 through entry 3.
	if _, err := d.Clean(pathval.Parse("/a:/b")); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if _, err := d.Move(pathval.Parse("/a:/b"), 2, 1); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if _, err := d.Move(pathval.Parse("/b:/a"), 2, 1); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if _, err := d.Move(pathval.Parse("/a:/b"), 2, 1); err != nil {
		t.Fatalf("Move: %v", err)
	}
	ops, err := d.Undo(2)
	if err != nil {
		t.Fatalf("Undo(2): %v", err)
	}
	if len(ops) != 1 || ops[0].Value != "/b:/a" {
		t.Fatalf("Undo(2) ops = %+v", ops)
	}
	// Overshooting the count clamps at entry 0 instead of erroring, since
	// there is still room to move.
	ops, err = d.Undo(10)
	if err != nil {
		t.Fatalf("Undo(10) should clamp, got error: %v", err)
	}
	if len(ops) != 1 || ops[0].Value != "/a:/b" {
		t.Fatalf("Undo(10) ops = %+v, want clamped to entry 0", ops)
	}
	if _, err := d.Undo(1); err == nil {
		t.Fatal("expected OutOfRange once already at entry 0")
	}
}

func TestResetMovesCursorWithoutErasingHistory(t *testing.T) {
	d := newDispatcher(t)
	if _, err := d.Clean(pathval.Parse("/a:/b")); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if _, err := d.Move(pathval.Parse("/a:/b"), 2, 1); err != nil {
		t.Fatalf("Move: %v", err)
	}
	ops, err := d.Reset()
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if len(ops) != 1 || ops[0].Value != "/a:/b" {
		t.Fatalf("Reset ops = %+v, want entry 0", ops)
	}
	// History survives the reset, so redo can move forward again.
	redoOps, err := d.Redo(1)
	if err != nil {
		t.Fatalf("Redo after Reset: %v", err)
	}
	if len(redoOps) != 1 || redoOps[0].Value != "/b:/a" {
		t.Fatalf("Redo ops = %+v", redoOps)
	}
}

func TestSaveApplyRoundTrip(t *testing.T) {
	d := newDispatcher(t)
	current := pathval.Parse("/a:/b")
	if err := d.Save(current); err != nil {
		t.Fatalf("Save: %v", err)
	}
	ops, err := d.Apply()
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(ops) != 1 || ops[0].Value != "/a:/b" {
		t.Fatalf("ops = %+v", ops)
	}
}

func TestNamedProfileRoundTrip(t *testing.T) {
	newDispatcher(t) // sets HOME
	if err := SaveProfile("work", pathval.Parse("/a:/b")); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	names, err := ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if len(names) != 1 || names[0] != "work" {
		t.Fatalf("names = %v", names)
	}
	loaded, err := LoadProfile("work")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if loaded.Serialize() != "/a:/b" {
		t.Fatalf("loaded = %q", loaded.Serialize())
	}
	if err := RemoveProfile("work"); err != nil {
		t.Fatalf("RemoveProfile: %v", err)
	}
	if _, err := LoadProfile("work"); err == nil {
		t.Fatal("expected NotFound after RemoveProfile")
	}
}
