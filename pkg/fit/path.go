package fit

import "strings"

// NormalizePath converts backslashes to forward slashes so archive member
// paths compare reliably regardless of the platform that created them.
// Idempotent: already-normalized paths come back unchanged.
func NormalizePath(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}

// SplitDirFile splits a normalized path into its directory and filename
// components. The directory is empty when the path has no separator.
func SplitDirFile(name string) (dir string, file string) {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// IsMonitorFIT reports whether a normalized path points to a .fit file under
// a "Monitor" directory somewhere in the path, both case-insensitive.
func IsMonitorFIT(name string) bool {
	if !strings.HasSuffix(strings.ToLower(name), ".fit") {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part != "" && strings.EqualFold(part, "monitor") {
			return true
		}
	}
	return false
}
