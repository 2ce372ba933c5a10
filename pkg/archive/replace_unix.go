//go:build !windows

package archive

import "os"

// replaceFile atomically substitutes dst with src. POSIX rename replaces an
// existing destination in one step, so the path at dst always holds either
// the old file or the new one.
func replaceFile(src, dst string) error {
	return os.Rename(src, dst)
}
