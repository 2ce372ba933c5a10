package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/AI-READI/fitpack/pkg/common"
	"github.com/AI-READI/fitpack/pkg/fit"
)

// Extract unpacks the archive at src into dir, normalizing member paths and
// rejecting entries that would escape dir through ".." segments or absolute
// names.
func Extract(src, dir string) error {
	// Tolerate zip.ErrInsecurePath: member names are normalized and checked
	// against the extraction root below before anything touches disk.
	zr, err := zip.OpenReader(src)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		if errors.Is(err, zip.ErrFormat) {
			return fmt.Errorf("%w: %s", common.ErrMalformedArchive, src)
		}
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer zr.Close()

	root := filepath.Clean(dir)
	for _, f := range zr.File {
		name := fit.NormalizePath(f.Name)
		dest := filepath.Join(root, filepath.FromSlash(name))
		if dest != root && !strings.HasPrefix(dest, root+string(os.PathSeparator)) {
			return fmt.Errorf("entry %q escapes extraction root", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0755); err != nil {
				return fmt.Errorf("creating directory %s: %w", name, err)
			}
			continue
		}

		if err := extractFile(f, dest); err != nil {
			return fmt.Errorf("extracting %s: %w", name, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	perm := f.Mode().Perm()
	if perm == 0 {
		perm = 0644
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
