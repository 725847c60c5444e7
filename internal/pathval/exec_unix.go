//go:build !windows

package pathval

import "os"

// IsExecutable reports whether info describes a regular file with any of
// the owner/group/other executable bits set.
func IsExecutable(info os.FileInfo) bool {
	return info.Mode().IsRegular() && info.Mode()&0o111 != 0
}
