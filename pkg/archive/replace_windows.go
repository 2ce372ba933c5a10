//go:build windows

package archive

import "os"

// replaceFile substitutes dst with src. Windows refuses to rename over an
// existing file, so the destination is removed first; the per-path guard
// keeps other workers out of the gap between the two calls.
func replaceFile(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		if err := os.Remove(dst); err != nil {
			return err
		}
	}
	return os.Rename(src, dst)
}
