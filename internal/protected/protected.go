// Package protected manages the guard sets: protected PATH directories
// (GuardPaths partitions a list against them; no dispatcher or venv
// operation calls it, so nothing keeps these directories on PATH), and
// protected environment variable names that survive an implicit
// !env.replace unset (though not an explicit !env.unset).
package protected

import (
	"os"
	"path/filepath"
	"strings"

	"whi/internal/atomicfile"
	"whi/internal/whierr"
)

const (
	varsHeader  = "# whi protected environment variables"
	pathsHeader = "# whi protected paths"
)

// Set is an ordered, duplicate-free collection of protected strings
// (either directory paths or environment variable names). Order is
// preserved on load/save/add so presentation stays stable, satisfying the
// guard's order-preserving dedup requirement.
type Set struct {
	items []string
	index map[string]struct{}
}

// NewSet builds a Set from items, deduplicating and preserving first
// occurrence order.
func NewSet(items []string) Set {
	s := Set{index: make(map[string]struct{}, len(items))}
	for _, item := range items {
		s.add(item)
	}
	return s
}

func (s *Set) add(item string) {
	if _, ok := s.index[item]; ok {
		return
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	s.index[item] = struct{}{}
	s.items = append(s.items, item)
}

// Items returns the ordered, deduplicated contents.
func (s Set) Items() []string { return append([]string(nil), s.items...) }

// Contains reports whether item is present.
func (s Set) Contains(item string) bool {
	_, ok := s.index[item]
	return ok
}

func parseHeaderedFile(content, header string) (Set, error) {
	lines := strings.Split(content, "\n")
	sawHeader := false
	var items []string
	for _, raw := range lines {
		line := stripInlineComment(raw)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if strings.TrimSpace(line) == header {
				sawHeader = true
			}
			continue
		}
		items = append(items, line)
	}
	if !sawHeader {
		return Set{}, whierr.Newf("protected.Parse", whierr.ParseFailure, "missing %s header", header)
	}
	return NewSet(items), nil
}

// stripInlineComment removes a trailing "# ..." comment that is not
// itself the start of the line, so entries can carry an explanatory note.
func stripInlineComment(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return line
	}
	if idx := strings.Index(line, " #"); idx >= 0 {
		return line[:idx]
	}
	if idx := strings.Index(line, "\t#"); idx >= 0 {
		return line[:idx]
	}
	return line
}

func formatHeaderedFile(header string, s Set) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')
	for _, item := range s.Items() {
		b.WriteString(item)
		b.WriteByte('\n')
	}
	return b.String()
}

// VarsPath returns "$HOME/.whi/protected_vars".
func VarsPath() (string, error) { return whiFile("protected_vars") }

// PathsPath returns "$HOME/.whi/protected_paths".
func PathsPath() (string, error) { return whiFile("protected_paths") }

func whiFile(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", whierr.New("protected.whiFile", whierr.IoFailure, err)
	}
	return filepath.Join(home, ".whi", name), nil
}

// LoadVars reads the protected environment variable set, creating it with
// DefaultVars() if absent.
func LoadVars() (Set, error) { return load(VarsPath, varsHeader, DefaultVars) }

// LoadPaths reads the protected path set, creating it with
// DefaultPaths() if absent.
func LoadPaths() (Set, error) { return load(PathsPath, pathsHeader, DefaultPaths) }

func load(pathFn func() (string, error), header string, defaults func() Set) (Set, error) {
	path, err := pathFn()
	if err != nil {
		return Set{}, err
	}
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		set := defaults()
		if saveErr := save(path, header, set); saveErr != nil {
			return Set{}, saveErr
		}
		return set, nil
	}
	if err != nil {
		return Set{}, whierr.New("protected.load", whierr.IoFailure, err)
	}
	return parseHeaderedFile(string(content), header)
}

// SaveVars atomically writes s as the protected environment variable set.
func SaveVars(s Set) error {
	path, err := VarsPath()
	if err != nil {
		return err
	}
	return save(path, varsHeader, s)
}

// SavePaths atomically writes s as the protected path set.
func SavePaths(s Set) error {
	path, err := PathsPath()
	if err != nil {
		return err
	}
	return save(path, pathsHeader, s)
}

func save(path, header string, s Set) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return whierr.New("protected.save", whierr.IoFailure, err)
	}
	return atomicfile.Write(path, []byte(formatHeaderedFile(header, s)), 0o644)
}

// CriticalVars is the subset of protected variables whose absence from
// the environment is always worth surfacing, regardless of what the
// on-disk protected_vars set contains.
func CriticalVars() []string {
	return []string{"PATH", "HOME", "SHELL", "TERM", "USER"}
}

// ValidateCritical reports the subset of CriticalVars that are unset in
// the process environment, for a non-fatal startup warning.
func ValidateCritical() []string {
	var missing []string
	for _, name := range CriticalVars() {
		if _, ok := os.LookupEnv(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// GuardPaths splits candidate into entries that are safe to remove and
// entries that are protected and must be refused, preserving order within
// each returned slice.
func GuardPaths(candidate []string, protectedPaths Set) (removable []string, blocked []string) {
	for _, c := range candidate {
		if protectedPaths.Contains(c) {
			blocked = append(blocked, c)
			continue
		}
		removable = append(removable, c)
	}
	return removable, blocked
}

// ApplyImplicitUnset computes the set of environment variable names that
// an !env.replace directive would implicitly unset: every name in
// currentKeys not present in keepNames, excluding anything in
// protectedVars. Explicit !env.unset directives are not filtered here —
// protection only exempts implicit removal.
func ApplyImplicitUnset(currentKeys []string, keepNames []string, protectedVars Set) []string {
	keep := make(map[string]struct{}, len(keepNames))
	for _, n := range keepNames {
		keep[n] = struct{}{}
	}
	var toUnset []string
	for _, name := range currentKeys {
		if _, keeping := keep[name]; keeping {
			continue
		}
		if protectedVars.Contains(name) {
			continue
		}
		toUnset = append(toUnset, name)
	}
	return toUnset
}
