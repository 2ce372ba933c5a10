package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AI-READI/fitpack/pkg/common"
	"github.com/AI-READI/fitpack/pkg/fit"
)

// Rewriter repacks ZIP archives with a set of entries removed. The archive
// is never mutated in place: a replacement is built next to it and swapped
// in atomically.
type Rewriter struct {
	logger  common.Logger
	replace func(src, dst string) error
}

func NewRewriter(logger common.Logger) *Rewriter {
	if logger == nil {
		logger = common.DefaultLogger()
	}
	return &Rewriter{
		logger:  logger,
		replace: replaceFile,
	}
}

// Rewrite builds a copy of the archive at path without the entries whose
// normalized names appear in victims, then atomically substitutes it for the
// original. Retained entries keep their original order and raw compressed
// bytes; only their names are normalized to forward slashes. An empty victim
// set is a no-op: the original file is not touched and no temp file is
// created. Returns the number of entries dropped.
func (r *Rewriter) Rewrite(path string, victims map[string]struct{}) (int, error) {
	if len(victims) == 0 {
		return 0, nil
	}

	// ErrInsecurePath is expected here: backslash member names are exactly
	// what this tool normalizes away. The reader is still fully usable and
	// no raw name ever reaches the filesystem.
	zr, err := zip.OpenReader(path)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		if errors.Is(err, zip.ErrFormat) {
			return 0, fmt.Errorf("%w: %s", common.ErrMalformedArchive, path)
		}
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}

	tmp := tempPath(path)
	out, err := os.Create(tmp)
	if err != nil {
		zr.Close()
		return 0, fmt.Errorf("creating temp archive: %w", err)
	}

	removed, err := r.repack(zr, out, victims)
	if err != nil {
		out.Close()
		zr.Close()
		r.cleanup(tmp)
		return 0, err
	}

	if err := out.Close(); err != nil {
		zr.Close()
		r.cleanup(tmp)
		return 0, fmt.Errorf("closing temp archive: %w", err)
	}

	// The reader must be closed before the swap: some platforms refuse to
	// rename over a file with an open handle.
	if err := zr.Close(); err != nil {
		r.cleanup(tmp)
		return 0, fmt.Errorf("closing %s: %w", path, err)
	}

	if err := r.replace(tmp, path); err != nil {
		r.cleanup(tmp)
		return 0, fmt.Errorf("%w: %s: %v", common.ErrReplaceFailed, path, err)
	}

	return removed, nil
}

// cleanup removes a temp archive left behind by a failed rewrite.
func (r *Rewriter) cleanup(tmp string) {
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		r.logger.Error("Failed to remove temp archive %s: %v", tmp, err)
	}
}

func (r *Rewriter) repack(zr *zip.ReadCloser, out *os.File, victims map[string]struct{}) (int, error) {
	zw := zip.NewWriter(out)

	if zr.Comment != "" {
		if err := zw.SetComment(zr.Comment); err != nil {
			return 0, fmt.Errorf("setting archive comment: %w", err)
		}
	}

	removed := 0
	for _, f := range zr.File {
		norm := fit.NormalizePath(f.Name)
		if _, drop := victims[norm]; drop {
			removed++
			continue
		}
		if err := copyEntry(zw, f, norm); err != nil {
			zw.Close()
			return 0, fmt.Errorf("copying entry %s: %w", norm, err)
		}
	}

	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("finalizing archive: %w", err)
	}
	return removed, nil
}

// copyEntry copies one member into zw under the given name without
// recompressing. The header carries over the compression method, timestamp
// and external attributes of the original entry.
func copyEntry(zw *zip.Writer, f *zip.File, name string) error {
	hdr := f.FileHeader
	hdr.Name = name

	w, err := zw.CreateRaw(&hdr)
	if err != nil {
		return err
	}
	rc, err := f.OpenRaw()
	if err != nil {
		return err
	}
	_, err = io.Copy(w, rc)
	return err
}
