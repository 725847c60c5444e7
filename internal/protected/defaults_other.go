//go:build !darwin && !linux

package protected

// DefaultPaths returns the built-in protected directories for platforms
// without a distribution-specific convention.
func DefaultPaths() Set {
	return NewSet([]string{"/usr/bin", "/bin"})
}
