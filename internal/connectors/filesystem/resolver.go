package filesystem

import "strings"

// ResolvePath converts a filesystem ref to a local path.
// Handles file:// URIs and bare paths.
func ResolvePath(ref string) string {
	// Strip file:// prefix for local paths
	if strings.HasPrefix(ref, "file://") {
		return strings.TrimPrefix(ref, "file://")
	}
	// Bare paths pass through unchanged
	return ref
}
