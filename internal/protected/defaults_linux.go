//go:build linux

package protected

// DefaultPaths returns the built-in protected directories for Linux,
// mirroring typical distro PATH ordering.
func DefaultPaths() Set {
	return NewSet([]string{
		"/usr/local/sbin", "/usr/local/bin",
		"/usr/sbin", "/usr/bin",
		"/sbin", "/bin",
	})
}
