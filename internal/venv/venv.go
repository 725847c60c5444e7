// Package venv implements activation and deactivation of a whifile-driven
// virtual PATH/environment scope: the ability to layer a manifest's PATH
// and environment directives on top of the current shell, and to restore
// exactly what was there before when leaving.
package venv

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"whi/internal/atomicfile"
	"whi/internal/history"
	"whi/internal/manifest"
	"whi/internal/protected"
	"whi/internal/session"
	"whi/internal/shellexpand"
	"whi/internal/transition"
	"whi/internal/whierr"
)

const (
	fileVenvDir     = "venv_dir"
	fileVenvRestore = "venv_restore"
	fileVenvEnvKeys = "venv_env_keys"
)

// State describes whether a venv is currently active for a session, and
// if so, which directory it was activated from.
type State struct {
	Active bool
	Dir    string
}

// CurrentState inspects the session's venv marker to report whether a
// venv is active, searching every venv subdirectory for pid since the
// marker lives alongside the scope it activated, not at a fixed path.
func CurrentState(pid int) (State, error) {
	dir, err := session.Dir()
	if err != nil {
		return State{}, err
	}
	venvsRoot := filepath.Join(dir, sessionDirName(pid), "venvs")
	entries, err := os.ReadDir(venvsRoot)
	if os.IsNotExist(err) {
		return State{}, nil
	}
	if err != nil {
		return State{}, whierr.New("venv.CurrentState", whierr.IoFailure, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		marker := filepath.Join(venvsRoot, e.Name(), fileVenvDir)
		data, err := os.ReadFile(marker)
		if err == nil {
			return State{Active: true, Dir: strings.TrimSpace(string(data))}, nil
		}
	}
	return State{}, nil
}

func sessionDirName(pid int) string { return "session_" + strconv.Itoa(pid) }

// EnvSnapshot is the portion of the process environment venv state cares
// about, as a name/value map. It keeps no ordering of names.
type EnvSnapshot map[string]string

// Activate layers manifestContent's directives onto currentPath and the
// process environment, returning the transition operations the caller
// must emit and persisting enough state for a later Deactivate to undo
// exactly this. venvDir is the directory the whifile was found in (used
// for scope isolation); it must not already have an active venv.
func Activate(pid int, venvDir string, manifestContent string, currentPath []string, env EnvSnapshot, protectedVars protected.Set) ([]transition.Op, error) {
	state, err := CurrentState(pid)
	if err != nil {
		return nil, err
	}
	if state.Active {
		return nil, whierr.New("venv.Activate", whierr.AlreadyActive, nil)
	}

	m, err := manifest.Parse(manifestContent)
	if err != nil {
		return nil, err
	}

	hash, err := session.VenvHash(venvDir)
	if err != nil {
		return nil, err
	}
	stateDir, err := session.VenvDir(pid, hash)
	if err != nil {
		return nil, err
	}

	newPath, err := manifest.ApplyPathSections(currentPath, m.Path)
	if err != nil {
		return nil, err
	}

	envOps, _ := applyEnvOperations(m.Env, env, protectedVars)
	envKeys := setNames(envOps)
	if err := writeStateFiles(stateDir, venvDir, strings.Join(currentPath, ":"), envKeys); err != nil {
		return nil, err
	}

	ops := []transition.Op{
		transition.PathOp(strings.Join(newPath, ":")),
		transition.SetOp("WHI_VENV_NAME", filepath.Base(venvDir)),
		transition.SetOp("WHI_VENV_DIR", venvDir),
	}
	ops = append(ops, envOps...)

	log := history.Open(session.VenvLogFile(stateDir), session.VenvCursorFile(stateDir))
	if err := log.Reset(strings.Join(newPath, ":")); err != nil {
		return nil, err
	}

	return ops, nil
}

// Deactivate reverses the most recent Activate for pid, restoring the
// saved PATH and unsetting WHI_VENV_NAME, WHI_VENV_DIR, and every
// environment variable name recorded in venv_env_keys (the names Activate
// itself set). It is an error to call Deactivate when no venv is active.
func Deactivate(pid int, env EnvSnapshot) ([]transition.Op, error) {
	state, err := CurrentState(pid)
	if err != nil {
		return nil, err
	}
	if !state.Active {
		return nil, whierr.New("venv.Deactivate", whierr.InactiveVenv, nil)
	}

	hash, err := session.VenvHash(state.Dir)
	if err != nil {
		return nil, err
	}
	stateDir, err := session.VenvDir(pid, hash)
	if err != nil {
		return nil, err
	}

	restorePath, savedKeys, err := readStateFiles(stateDir)
	if err != nil {
		return nil, err
	}

	ops := []transition.Op{
		transition.PathOp(restorePath),
		transition.UnsetOp("WHI_VENV_NAME"),
		transition.UnsetOp("WHI_VENV_DIR"),
	}
	for _, name := range savedKeys {
		ops = append(ops, transition.UnsetOp(name))
	}

	for _, f := range []string{fileVenvDir, fileVenvRestore, fileVenvEnvKeys} {
		_ = os.Remove(filepath.Join(stateDir, f))
	}

	return ops, nil
}

// UpdateRestorePath refreshes the active venv's saved restore PATH to
// newPath. Used by the "apply" operation so that exiting the venv after a
// subsequent apply restores the freshly-saved PATH rather than the
// pre-activation one.
func UpdateRestorePath(pid int, newPath []string) error {
	state, err := CurrentState(pid)
	if err != nil {
		return err
	}
	if !state.Active {
		return whierr.New("venv.UpdateRestorePath", whierr.InactiveVenv, nil)
	}
	hash, err := session.VenvHash(state.Dir)
	if err != nil {
		return err
	}
	stateDir, err := session.VenvDir(pid, hash)
	if err != nil {
		return err
	}
	return atomicfile.Write(filepath.Join(stateDir, fileVenvRestore), []byte(strings.Join(newPath, ":")), 0o600)
}

func writeStateFiles(stateDir, venvDir, restorePath string, envKeys []string) error {
	if err := atomicfile.Write(filepath.Join(stateDir, fileVenvDir), []byte(venvDir), 0o600); err != nil {
		return whierr.New("venv.Activate", whierr.IoFailure, err)
	}
	if err := atomicfile.Write(filepath.Join(stateDir, fileVenvRestore), []byte(restorePath), 0o600); err != nil {
		return whierr.New("venv.Activate", whierr.IoFailure, err)
	}
	if err := atomicfile.Write(filepath.Join(stateDir, fileVenvEnvKeys), []byte(strings.Join(envKeys, "\n")), 0o600); err != nil {
		return whierr.New("venv.Activate", whierr.IoFailure, err)
	}
	return nil
}

func readStateFiles(stateDir string) (restorePath string, envKeys []string, err error) {
	data, rerr := os.ReadFile(filepath.Join(stateDir, fileVenvRestore))
	if rerr != nil {
		return "", nil, whierr.New("venv.Deactivate", whierr.IoFailure, rerr)
	}
	restorePath = string(data)
	keysData, kerr := os.ReadFile(filepath.Join(stateDir, fileVenvEnvKeys))
	if kerr != nil && !os.IsNotExist(kerr) {
		return "", nil, whierr.New("venv.Deactivate", whierr.IoFailure, kerr)
	}
	if len(keysData) > 0 {
		envKeys = strings.Split(strings.TrimRight(string(keysData), "\n"), "\n")
	}
	return restorePath, envKeys, nil
}

// applyEnvOperations walks m's ordered env operations against env, a
// simulated view of the process environment, and returns the transition
// ops that realize them plus the updated simulated env. Set and Unset map
// directly to SET/UNSET; Replace first unsets every non-protected
// existing key not among the replacement pairs, then sets every pair.
// Explicit Unset is NOT filtered by protectedVars — only Replace's
// implicit unsets are.
func applyEnvOperations(ops []manifest.EnvOperation, env EnvSnapshot, protectedVars protected.Set) ([]transition.Op, EnvSnapshot) {
	sim := make(EnvSnapshot, len(env))
	for k, v := range env {
		sim[k] = v
	}
	lookup := func(name string) string { return sim[name] }

	var out []transition.Op
	for _, op := range ops {
		switch op.Kind {
		case manifest.EnvSet:
			value := shellexpand.Expand(op.Value, lookup)
			sim[op.Name] = value
			out = append(out, transition.SetOp(op.Name, value))
		case manifest.EnvUnset:
			delete(sim, op.Name)
			out = append(out, transition.UnsetOp(op.Name))
		case manifest.EnvReplace:
			keep := make([]string, 0, len(op.Replace))
			for _, pair := range op.Replace {
				keep = append(keep, pair.Name)
			}
			toUnset := protected.ApplyImplicitUnset(sortedKeys(sim), keep, protectedVars)
			for _, name := range toUnset {
				delete(sim, name)
				out = append(out, transition.UnsetOp(name))
			}
			for _, pair := range op.Replace {
				value := shellexpand.Expand(pair.Value, lookup)
				sim[pair.Name] = value
				out = append(out, transition.SetOp(pair.Name, value))
			}
		}
	}
	return out, sim
}

// setNames returns the Name of every SET operation in ops, in order. This
// is what gets persisted as venv_env_keys: the variables this activation
// introduced, which Deactivate must later unset.
func setNames(ops []transition.Op) []string {
	names := make([]string, 0, len(ops))
	for _, op := range ops {
		if op.Kind == transition.OpSet {
			names = append(names, op.Name)
		}
	}
	return names
}

func sortedKeys(m EnvSnapshot) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
