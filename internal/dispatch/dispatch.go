// Package dispatch wires the CLI command surface to the core primitives:
// it reads the current PATH, mutates it through pathval/manifest/venv,
// records the result through history, and returns the transition
// operations the caller must emit.
package dispatch

import (
	"os"
	"path/filepath"
	"strings"

	"whi/internal/atomicfile"
	"whi/internal/diffengine"
	"whi/internal/history"
	"whi/internal/namefilter"
	"whi/internal/pathval"
	"whi/internal/protected"
	"whi/internal/session"
	"whi/internal/transition"
	"whi/internal/venv"
	"whi/internal/whierr"
)

// Dispatcher holds the guard sets and session identity shared by every
// operation in one CLI invocation.
type Dispatcher struct {
	PID            int
	ProtectedPaths protected.Set
	ProtectedVars  protected.Set
}

// New loads the protected sets (creating them with defaults on first run)
// and binds a Dispatcher to pid.
func New(pid int) (*Dispatcher, error) {
	paths, err := protected.LoadPaths()
	if err != nil {
		return nil, err
	}
	vars, err := protected.LoadVars()
	if err != nil {
		return nil, err
	}
	return &Dispatcher{PID: pid, ProtectedPaths: paths, ProtectedVars: vars}, nil
}

func (d *Dispatcher) globalLog() (*history.Log, error) {
	logPath, err := session.LogFile(d.PID)
	if err != nil {
		return nil, err
	}
	cursorPath, err := session.CursorFile(d.PID)
	if err != nil {
		return nil, err
	}
	return history.Open(logPath, cursorPath), nil
}

func (d *Dispatcher) activeLog() (*history.Log, error) {
	state, err := venv.CurrentState(d.PID)
	if err != nil {
		return nil, err
	}
	if !state.Active {
		return d.globalLog()
	}
	hash, err := session.VenvHash(state.Dir)
	if err != nil {
		return nil, err
	}
	stateDir, err := session.VenvDir(d.PID, hash)
	if err != nil {
		return nil, err
	}
	return history.Open(session.VenvLogFile(stateDir), session.VenvCursorFile(stateDir)), nil
}

func (d *Dispatcher) record(newPath pathval.PathValue) ([]transition.Op, error) {
	log, err := d.activeLog()
	if err != nil {
		return nil, err
	}
	if err := log.Append(newPath.Serialize()); err != nil {
		return nil, err
	}
	return []transition.Op{transition.PathOp(newPath.Serialize())}, nil
}

// Clean deduplicates current, keeping first occurrences.
func (d *Dispatcher) Clean(current pathval.PathValue) ([]transition.Op, error) {
	cleaned, _ := current.Clean()
	return d.record(cleaned)
}

// Move repositions the entry at from to to (both 1-based).
func (d *Dispatcher) Move(current pathval.PathValue, from, to int) ([]transition.Op, error) {
	moved, err := current.Move(from, to)
	if err != nil {
		return nil, err
	}
	return d.record(moved)
}

// Swap exchanges the entries at i and j (both 1-based).
func (d *Dispatcher) Swap(current pathval.PathValue, i, j int) ([]transition.Op, error) {
	swapped, err := current.Swap(i, j)
	if err != nil {
		return nil, err
	}
	return d.record(swapped)
}

// Delete removes the entries at indices, silently dropping any index that
// refers to the directory containing the running binary (in both its
// as-given and canonicalized forms) rather than deleting it out from under
// the caller.
func (d *Dispatcher) Delete(current pathval.PathValue, indices []int) ([]transition.Op, error) {
	selfDirs := selfProtectedDirs()
	filtered := make([]int, 0, len(indices))
	for _, i := range indices {
		if i >= 1 && i <= current.Len() && selfDirs[current.Entries()[i-1]] {
			continue
		}
		filtered = append(filtered, i)
	}
	deleted, err := current.Delete(filtered)
	if err != nil {
		return nil, err
	}
	return d.record(deleted)
}

// DeleteFuzzy deletes every entry matching pattern (order-preserving,
// substring token match); binaryName narrows to directories containing
// that executable. It is an error if no entry matches.
func (d *Dispatcher) DeleteFuzzy(current pathval.PathValue, pattern, binaryName string) ([]transition.Op, error) {
	matches := current.FindFuzzy(pattern, binaryName)
	if len(matches) == 0 {
		return nil, whierr.New("dispatch.DeleteFuzzy", whierr.NotFound, nil)
	}
	indices := make([]int, len(matches))
	for i, m := range matches {
		indices[i] = m.Index
	}
	return d.Delete(current, indices)
}

func selfProtectedDirs() map[string]bool {
	dirs := map[string]bool{}
	exe, err := os.Executable()
	if err != nil {
		return dirs
	}
	dir := filepath.Dir(exe)
	dirs[dir] = true
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dirs[resolved] = true
	}
	return dirs
}

// PreferIndex moves the entry currently at index to the front.
func (d *Dispatcher) PreferIndex(current pathval.PathValue, index int) ([]transition.Op, error) {
	return d.Move(current, index, 1)
}

// PreferPath moves the entry matching target (after tilde expansion) to
// the front.
func (d *Dispatcher) PreferPath(current pathval.PathValue, target string) ([]transition.Op, error) {
	idx := current.FindPath(target)
	if idx == 0 {
		return nil, whierr.New("dispatch.PreferPath", whierr.NotFound, nil)
	}
	return d.Move(current, idx, 1)
}

// PreferFuzzy moves the first fuzzy match of pattern to the front.
func (d *Dispatcher) PreferFuzzy(current pathval.PathValue, pattern, binaryName string) ([]transition.Op, error) {
	matches := current.FindFuzzy(pattern, binaryName)
	if len(matches) == 0 {
		return nil, whierr.New("dispatch.PreferFuzzy", whierr.NotFound, nil)
	}
	return d.Move(current, matches[0].Index, 1)
}

// Undo moves the cursor n steps earlier in the active scope's history,
// clamped to index 0. It is an error to undo when already at entry 0.
func (d *Dispatcher) Undo(n int) ([]transition.Op, error) {
	if n < 1 {
		n = 1
	}
	log, err := d.activeLog()
	if err != nil {
		return nil, err
	}
	snaps, err := log.Snapshots()
	if err != nil {
		return nil, err
	}
	pos, ok, err := log.Cursor()
	if err != nil {
		return nil, err
	}
	if !ok {
		pos = len(snaps) - 1
	}
	if pos <= 0 {
		return nil, whierr.New("dispatch.Undo", whierr.OutOfRange, nil)
	}
	target := pos - n
	if target < 0 {
		target = 0
	}
	if err := log.SetCursor(target); err != nil {
		return nil, err
	}
	return []transition.Op{transition.PathOp(snaps[target])}, nil
}

// Redo moves the cursor n steps later in the active scope's history,
// clamped to the last entry (clearing the cursor once it reaches the
// latest entry). It is an error to redo when already at the latest entry.
func (d *Dispatcher) Redo(n int) ([]transition.Op, error) {
	if n < 1 {
		n = 1
	}
	log, err := d.activeLog()
	if err != nil {
		return nil, err
	}
	snaps, err := log.Snapshots()
	if err != nil {
		return nil, err
	}
	pos, ok, err := log.Cursor()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, whierr.New("dispatch.Redo", whierr.OutOfRange, nil)
	}
	target := pos + n
	if target >= len(snaps)-1 {
		if err := log.ClearCursor(); err != nil {
			return nil, err
		}
		return []transition.Op{transition.PathOp(snaps[len(snaps)-1])}, nil
	}
	if err := log.SetCursor(target); err != nil {
		return nil, err
	}
	return []transition.Op{transition.PathOp(snaps[target])}, nil
}

// Reset moves the active scope's cursor back to entry 0, leaving the rest
// of the history intact so a subsequent Redo still works.
func (d *Dispatcher) Reset() ([]transition.Op, error) {
	log, err := d.activeLog()
	if err != nil {
		return nil, err
	}
	snaps, err := log.Snapshots()
	if err != nil {
		return nil, err
	}
	if err := log.SetCursor(0); err != nil {
		return nil, err
	}
	return []transition.Op{transition.PathOp(snaps[0])}, nil
}

// Diff compares current against the saved-PATH slot, reporting every
// entry's category.
func (d *Dispatcher) Diff(current pathval.PathValue) ([]diffengine.Entry, error) {
	saved, err := ReadSavedPath()
	if os.IsNotExist(err) {
		return nil, whierr.New("dispatch.Diff", whierr.NotFound, nil)
	}
	if err != nil {
		return nil, err
	}
	return diffengine.ComputeDiff(current.Entries(), saved.Entries(), nil, nil), nil
}

// Save persists current as the saved-PATH slot.
func (d *Dispatcher) Save(current pathval.PathValue) error {
	return WriteSavedPath(current)
}

// Apply re-applies the saved-PATH slot to the live PATH. If a venv is
// active, it also refreshes the venv's restore point to this freshly
// saved PATH, per the resolved design decision that a later "exit"
// should restore to what was last applied, not to the pre-activation
// PATH.
func (d *Dispatcher) Apply() ([]transition.Op, error) {
	saved, err := ReadSavedPath()
	if err != nil {
		return nil, err
	}
	ops, err := d.record(saved)
	if err != nil {
		return nil, err
	}
	state, err := venv.CurrentState(d.PID)
	if err != nil {
		return nil, err
	}
	if state.Active {
		if err := venv.UpdateRestorePath(d.PID, saved.Entries()); err != nil {
			return nil, err
		}
	}
	return ops, nil
}

// LoadNamed applies the PATH saved under a named profile to the live
// PATH.
func (d *Dispatcher) LoadNamed(name string) ([]transition.Op, error) {
	p, err := LoadProfile(name)
	if err != nil {
		return nil, err
	}
	return d.record(p)
}

// VenvFile locates and returns the contents of the whifile governing dir,
// searching dir and its ancestors.
func VenvFile(dir string) (path, content string, err error) {
	for cur := dir; ; {
		candidate := filepath.Join(cur, "whifile")
		data, readErr := os.ReadFile(candidate)
		if readErr == nil {
			return candidate, string(data), nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", "", whierr.New("dispatch.VenvFile", whierr.NotFound, nil)
		}
		cur = parent
	}
}

// VenvSource activates the venv whose whifile governs dir.
func (d *Dispatcher) VenvSource(dir string, current pathval.PathValue, env venv.EnvSnapshot) ([]transition.Op, error) {
	venvDir, content, err := VenvFile(dir)
	if err != nil {
		return nil, err
	}
	return venv.Activate(d.PID, filepath.Dir(venvDir), content, current.Entries(), env, d.ProtectedVars)
}

// VenvExit deactivates the currently active venv.
func (d *Dispatcher) VenvExit(env venv.EnvSnapshot) ([]transition.Op, error) {
	return venv.Deactivate(d.PID, env)
}

// savedPathPath returns "$HOME/.whi/saved_path".
func savedPathPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", whierr.New("dispatch.savedPathPath", whierr.IoFailure, err)
	}
	return filepath.Join(home, ".whi", "saved_path"), nil
}

// ReadSavedPath reads the saved-PATH slot.
func ReadSavedPath() (pathval.PathValue, error) {
	path, err := savedPathPath()
	if err != nil {
		return pathval.PathValue{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pathval.PathValue{}, err
	}
	return pathval.Parse(strings.TrimSpace(string(data))), nil
}

// WriteSavedPath atomically writes the saved-PATH slot.
func WriteSavedPath(p pathval.PathValue) error {
	path, err := savedPathPath()
	if err != nil {
		return err
	}
	return atomicfile.Write(path, []byte(p.Serialize()), 0o600)
}

// profilesDir returns "$HOME/.whi/profiles".
func profilesDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", whierr.New("dispatch.profilesDir", whierr.IoFailure, err)
	}
	return filepath.Join(home, ".whi", "profiles"), nil
}

// SaveProfile writes current under name.
func SaveProfile(name string, current pathval.PathValue) error {
	dir, err := profilesDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, namefilter.SanitizeProfileName(name))
	return atomicfile.Write(path, []byte(current.Serialize()), 0o600)
}

// LoadProfile reads the PATH saved under name.
func LoadProfile(name string) (pathval.PathValue, error) {
	dir, err := profilesDir()
	if err != nil {
		return pathval.PathValue{}, err
	}
	data, err := os.ReadFile(filepath.Join(dir, namefilter.SanitizeProfileName(name)))
	if os.IsNotExist(err) {
		return pathval.PathValue{}, whierr.New("dispatch.LoadProfile", whierr.NotFound, nil)
	}
	if err != nil {
		return pathval.PathValue{}, whierr.New("dispatch.LoadProfile", whierr.IoFailure, err)
	}
	return pathval.Parse(strings.TrimSpace(string(data))), nil
}

// ListProfiles returns every saved profile name.
func ListProfiles() ([]string, error) {
	dir, err := profilesDir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, whierr.New("dispatch.ListProfiles", whierr.IoFailure, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// RemoveProfile deletes the profile saved under name.
func RemoveProfile(name string) error {
	dir, err := profilesDir()
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(dir, namefilter.SanitizeProfileName(name))); err != nil {
		if os.IsNotExist(err) {
			return whierr.New("dispatch.RemoveProfile", whierr.NotFound, nil)
		}
		return whierr.New("dispatch.RemoveProfile", whierr.IoFailure, err)
	}
	return nil
}
