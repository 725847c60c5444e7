//go:build windows

package session

import "os"

// mkdirSecure creates dir (and any missing parents). Windows ACLs do not
// map onto the 0700 unix mode bit; directory inheritance from %TEMP%'s
// per-user ACL is relied upon instead.
func mkdirSecure(dir string) error {
	return os.MkdirAll(dir, 0o700)
}
