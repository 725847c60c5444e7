//go:build windows

package pathval

import "os"

// IsExecutable reports whether info describes a regular file. Windows has
// no POSIX executable bit; any regular file, empty or not, is treated as a
// candidate, matching PATHEXT-less "does this directory contain an entry
// by this name" semantics rather than true executability.
func IsExecutable(info os.FileInfo) bool {
	return info.Mode().IsRegular()
}
