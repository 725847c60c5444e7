// Package pathval implements PathValue, the pure in-memory representation
// of a colon-separated PATH list. Every operation returns a new value (or
// mutates a receiver that the caller owns outright) so composing them in
// tests never raises aliasing concerns.
package pathval

import (
	"os"
	"path/filepath"
	"strings"

	"whi/internal/whierr"
)

// PathValue is an ordered sequence of directory strings.
type PathValue struct {
	entries []string
}

// Parse splits a colon-separated PATH string into a PathValue. An empty
// segment is interpreted as the current directory ("."); an empty input
// produces an empty PathValue.
func Parse(s string) PathValue {
	if s == "" {
		return PathValue{}
	}
	parts := strings.Split(s, ":")
	entries := make([]string, len(parts))
	for i, p := range parts {
		if p == "" {
			entries[i] = "."
		} else {
			entries[i] = p
		}
	}
	return PathValue{entries: entries}
}

// New builds a PathValue directly from an ordered slice of entries.
func New(entries []string) PathValue {
	return PathValue{entries: append([]string(nil), entries...)}
}

// Serialize joins the entries back into a colon-separated string.
func (p PathValue) Serialize() string {
	return strings.Join(p.entries, ":")
}

// Entries returns a copy of the underlying ordered entries.
func (p PathValue) Entries() []string {
	return append([]string(nil), p.entries...)
}

// Len reports the number of entries.
func (p PathValue) Len() int { return len(p.entries) }

// Indices returns the 1-based positions of every entry.
func (p PathValue) Indices() []int {
	idx := make([]int, len(p.entries))
	for i := range p.entries {
		idx[i] = i + 1
	}
	return idx
}

func inRange(i, n int) bool { return i >= 1 && i <= n }

// Move removes the entry at 1-based position from and re-inserts it at the
// 1-based position to, computed after removal. from == to is a no-op that
// succeeds.
func (p PathValue) Move(from, to int) (PathValue, error) {
	n := len(p.entries)
	if !inRange(from, n) || !inRange(to, n) {
		return p, whierr.New("pathval.Move", whierr.OutOfRange, nil)
	}
	if from == to {
		return p.clone(), nil
	}
	entries := append([]string(nil), p.entries...)
	item := entries[from-1]
	entries = append(entries[:from-1], entries[from:]...)
	pos := to - 1
	entries = append(entries[:pos], append([]string{item}, entries[pos:]...)...)
	return PathValue{entries: entries}, nil
}

// Swap exchanges the entries at 1-based positions i and j. i == j is a
// no-op.
func (p PathValue) Swap(i, j int) (PathValue, error) {
	n := len(p.entries)
	if !inRange(i, n) || !inRange(j, n) {
		return p, whierr.New("pathval.Swap", whierr.OutOfRange, nil)
	}
	entries := append([]string(nil), p.entries...)
	entries[i-1], entries[j-1] = entries[j-1], entries[i-1]
	return PathValue{entries: entries}, nil
}

// Delete removes the set of 1-based positions in indices in a single pass.
// Duplicates collapse; every index must be valid or the whole call fails.
func (p PathValue) Delete(indices []int) (PathValue, error) {
	n := len(p.entries)
	toDelete := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if !inRange(i, n) {
			return p, whierr.New("pathval.Delete", whierr.OutOfRange, nil)
		}
		toDelete[i] = struct{}{}
	}
	entries := make([]string, 0, n)
	for i, e := range p.entries {
		if _, gone := toDelete[i+1]; gone {
			continue
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return p, whierr.New("pathval.Delete", whierr.EmptyResult, nil)
	}
	return PathValue{entries: entries}, nil
}

// Clean preserves the first occurrence of each distinct entry (plain
// string equality, no normalization) and returns the list of original
// 1-based indices that were removed, in ascending order.
func (p PathValue) Clean() (PathValue, []int) {
	seen := make(map[string]struct{}, len(p.entries))
	entries := make([]string, 0, len(p.entries))
	var removed []int
	for i, e := range p.entries {
		if _, ok := seen[e]; ok {
			removed = append(removed, i+1)
			continue
		}
		seen[e] = struct{}{}
		entries = append(entries, e)
	}
	return PathValue{entries: entries}, removed
}

// FindPath returns the first 1-based index whose entry equals target after
// tilde expansion, or 0 if not found.
func (p PathValue) FindPath(target string) int {
	target = ExpandTilde(target)
	for i, e := range p.entries {
		if e == target {
			return i + 1
		}
	}
	return 0
}

// FuzzyMatch pairs a 1-based index with the matched entry.
type FuzzyMatch struct {
	Index int
	Path  string
}

// FindFuzzy performs an order-preserving, case-insensitive substring match:
// the pattern is split on whitespace into tokens, and a path matches iff
// every token appears in the lowercased path at a position strictly after
// the previous token's match end. When binaryName is non-empty, only
// directories containing an executable file of that name qualify.
func (p PathValue) FindFuzzy(pattern string, binaryName string) []FuzzyMatch {
	tokens := strings.Fields(strings.ToLower(pattern))
	var matches []FuzzyMatch
	for i, e := range p.entries {
		if !fuzzyMatches(tokens, e) {
			continue
		}
		if binaryName != "" && !dirHasExecutable(e, binaryName) {
			continue
		}
		matches = append(matches, FuzzyMatch{Index: i + 1, Path: e})
	}
	return matches
}

func fuzzyMatches(tokens []string, path string) bool {
	lower := strings.ToLower(path)
	pos := 0
	for _, tok := range tokens {
		idx := strings.Index(lower[pos:], tok)
		if idx < 0 {
			return false
		}
		pos += idx + len(tok)
	}
	return true
}

// dirHasExecutable reports whether dir holds a non-directory entry called
// name that IsExecutable accepts (platform-specific; see exec_unix.go /
// exec_windows.go).
func dirHasExecutable(dir, name string) bool {
	full := filepath.Join(dir, name)
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return false
	}
	return IsExecutable(info)
}

// InsertAt inserts entry at 1-based position pos without deduplication; pos is
// clamped to [1, n+1].
func (p PathValue) InsertAt(entry string, pos int) PathValue {
	n := len(p.entries)
	if pos < 1 {
		pos = 1
	}
	if pos > n+1 {
		pos = n + 1
	}
	entries := append([]string(nil), p.entries[:pos-1]...)
	entries = append(entries, entry)
	entries = append(entries, p.entries[pos-1:]...)
	return PathValue{entries: entries}
}

// Add inserts entry at position 1 unless it is already present, in which
// case the list is left unchanged.
func (p PathValue) Add(entry string) PathValue {
	for _, e := range p.entries {
		if e == entry {
			return p.clone()
		}
	}
	return p.InsertAt(entry, 1)
}

func (p PathValue) clone() PathValue {
	return PathValue{entries: append([]string(nil), p.entries...)}
}

// ExpandTilde expands a leading "~" or "~/" using the HOME environment
// variable. "~user" forms are left literal, matching the original path
// resolver's documented limitation.
func ExpandTilde(path string) string {
	home := os.Getenv("HOME")
	if path == "~" {
		if home != "" {
			return home
		}
		return path
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok && home != "" {
		return filepath.Join(home, rest)
	}
	return path
}
