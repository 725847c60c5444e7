//go:build darwin

package protected

// DefaultPaths returns the built-in protected directories for macOS,
// mirroring the order Homebrew and the base system populate PATH in.
func DefaultPaths() Set {
	return NewSet([]string{
		"/usr/local/bin", "/usr/local/sbin",
		"/usr/bin", "/bin",
		"/usr/sbin", "/sbin",
	})
}
