package venv

import (
	"path/filepath"
	"reflect"
	"testing"

	"whi/internal/manifest"
	"whi/internal/protected"
	"whi/internal/transition"
)

func TestActivateDeactivateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	pid := 9001
	manifestContent := "!path.prepend\n./bin\n!env.set\nX 1\n"
	currentPath := []string{"/usr/bin", "/bin"}
	env := EnvSnapshot{"PATH": "/usr/bin:/bin", "HOME": "/home/x"}

	ops, err := Activate(pid, dir, manifestContent, currentPath, env, protected.DefaultVars())
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	wantPath := "./bin:/usr/bin:/bin"
	wantActivate := []transition.Op{
		transition.PathOp(wantPath),
		transition.SetOp("WHI_VENV_NAME", filepath.Base(dir)),
		transition.SetOp("WHI_VENV_DIR", dir),
		transition.SetOp("X", "1"),
	}
	if !reflect.DeepEqual(ops, wantActivate) {
		t.Fatalf("Activate ops = %+v, want %+v", ops, wantActivate)
	}

	state, err := CurrentState(pid)
	if err != nil {
		t.Fatalf("CurrentState: %v", err)
	}
	if !state.Active || state.Dir != dir {
		t.Fatalf("state = %+v", state)
	}

	if _, err := Activate(pid, dir, manifestContent, currentPath, env, protected.DefaultVars()); err == nil {
		t.Fatal("expected AlreadyActive error on second Activate")
	}

	deactivateOps, err := Deactivate(pid, env)
	if err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	wantDeactivate := []transition.Op{
		transition.PathOp("/usr/bin:/bin"),
		transition.UnsetOp("WHI_VENV_NAME"),
		transition.UnsetOp("WHI_VENV_DIR"),
		transition.UnsetOp("X"),
	}
	if !reflect.DeepEqual(deactivateOps, wantDeactivate) {
		t.Fatalf("Deactivate ops = %+v, want %+v", deactivateOps, wantDeactivate)
	}

	finalState, err := CurrentState(pid)
	if err != nil {
		t.Fatalf("CurrentState: %v", err)
	}
	if finalState.Active {
		t.Fatal("expected inactive after Deactivate")
	}
}

func TestDeactivateWithoutActivateIsInactiveVenv(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	if _, err := Deactivate(4242, EnvSnapshot{}); err == nil {
		t.Fatal("expected InactiveVenv error")
	}
}

func TestApplyEnvOperationsOrdering(t *testing.T) {
	// Ordering matters: a Set followed by a Replace that doesn't list the
	// same name must unset it, since Replace observes Set's effect.
	ops := []manifest.EnvOperation{
		{Kind: manifest.EnvSet, Name: "FOO", Value: "1"},
		{Kind: manifest.EnvReplace, Replace: []manifest.EnvPair{{Name: "BAR", Value: "2"}}},
	}
	env := EnvSnapshot{}
	transitionOps, sim := applyEnvOperations(ops, env, protected.NewSet(nil))
	if sim["FOO"] != "" {
		t.Fatalf("FOO should have been unset by Replace, sim = %+v", sim)
	}
	if sim["BAR"] != "2" {
		t.Fatalf("BAR = %q, want 2", sim["BAR"])
	}
	foundUnsetFoo := false
	for _, op := range transitionOps {
		if op.Kind == transition.OpUnset && op.Name == "FOO" {
			foundUnsetFoo = true
		}
	}
	if !foundUnsetFoo {
		t.Fatalf("expected UNSET FOO op, got %+v", transitionOps)
	}
}

func TestApplyEnvOperationsProtectedVarsNeverImplicitlyUnset(t *testing.T) {
	ops := []manifest.EnvOperation{
		{Kind: manifest.EnvReplace, Replace: []manifest.EnvPair{{Name: "FOO", Value: "1"}}},
	}
	env := EnvSnapshot{"PATH": "/usr/bin", "FOO": "old"}
	_, sim := applyEnvOperations(ops, env, protected.NewSet([]string{"PATH"}))
	if sim["PATH"] != "/usr/bin" {
		t.Fatalf("PATH should survive implicit replace-unset, sim = %+v", sim)
	}
}

func TestApplyEnvOperationsExplicitUnsetIgnoresProtection(t *testing.T) {
	ops := []manifest.EnvOperation{
		{Kind: manifest.EnvUnset, Name: "PATH"},
	}
	env := EnvSnapshot{"PATH": "/usr/bin"}
	_, sim := applyEnvOperations(ops, env, protected.NewSet([]string{"PATH"}))
	if _, exists := sim["PATH"]; exists {
		t.Fatal("explicit unset must not be exempted by protection")
	}
}
