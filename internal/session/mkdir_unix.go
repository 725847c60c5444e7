//go:build !windows

package session

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// mkdirSecure creates dir (and any missing parents) with mode 0700,
// matching the original session directory's hardened permissions even
// when the runtime base directory is shared across users.
func mkdirSecure(dir string) error {
	if info, err := os.Stat(dir); err == nil {
		if !info.IsDir() {
			return unix.ENOTDIR
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0o700); err != nil {
		return err
	}
	if err := unix.Mkdir(dir, 0o700); err != nil && err != unix.EEXIST {
		return err
	}
	return nil
}
