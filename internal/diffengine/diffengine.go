// Package diffengine computes a structured comparison between the
// current PATH and a saved PATH, categorizing every entry so a "whi diff"
// can explain exactly what changed and why.
package diffengine

// ChangeKind categorizes one diff entry.
type ChangeKind int

const (
	Added ChangeKind = iota
	Removed
	MovedExplicit
	MovedImplicit
	Unchanged
)

// Entry is one categorized PATH directory in the diff output.
type Entry struct {
	Path string
	Kind ChangeKind
	// FromIndex/ToIndex are 1-based positions in saved/current
	// respectively; 0 means "absent from that side".
	FromIndex int
	ToIndex   int
}

// ComputeDiff compares current against saved and returns one Entry per
// distinct directory across both lists, in three passes:
//
//  1. every path in explicitlyDeleted that still appears in saved is
//     reported Removed (it was removed by an explicit delete, not merely
//     absent from current for other reasons);
//  2. every remaining path present in saved but absent from current is
//     reported Removed (dropped by a prepend/replace/prefer operation,
//     not an explicit delete);
//  3. an ordered walk of current classifies each entry as Added (not in
//     saved), Unchanged (same position in both), MovedExplicit (its
//     position changed and it is listed in affected), or MovedImplicit
//     (its position changed as a side effect of other entries moving).
func ComputeDiff(current, saved []string, affected map[string]bool, explicitlyDeleted []string) []Entry {
	savedIndex := make(map[string]int, len(saved))
	for i, p := range saved {
		savedIndex[p] = i + 1
	}
	currentIndex := make(map[string]int, len(current))
	for i, p := range current {
		currentIndex[p] = i + 1
	}

	var entries []Entry
	reported := make(map[string]bool)

	for _, p := range explicitlyDeleted {
		if from, ok := savedIndex[p]; ok && !reported[p] {
			entries = append(entries, Entry{Path: p, Kind: Removed, FromIndex: from})
			reported[p] = true
		}
	}

	for i, p := range saved {
		if reported[p] {
			continue
		}
		if _, stillPresent := currentIndex[p]; !stillPresent {
			entries = append(entries, Entry{Path: p, Kind: Removed, FromIndex: i + 1})
			reported[p] = true
		}
	}

	for i, p := range current {
		if reported[p] {
			continue
		}
		to := i + 1
		from, wasInSaved := savedIndex[p]
		switch {
		case !wasInSaved:
			entries = append(entries, Entry{Path: p, Kind: Added, ToIndex: to})
		case from == to:
			entries = append(entries, Entry{Path: p, Kind: Unchanged, FromIndex: from, ToIndex: to})
		case affected[p]:
			entries = append(entries, Entry{Path: p, Kind: MovedExplicit, FromIndex: from, ToIndex: to})
		default:
			entries = append(entries, Entry{Path: p, Kind: MovedImplicit, FromIndex: from, ToIndex: to})
		}
		reported[p] = true
	}

	return entries
}
