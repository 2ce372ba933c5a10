package dedup

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/karrick/godirwalk"

	"github.com/AI-READI/fitpack/pkg/common"
	"github.com/AI-READI/fitpack/pkg/fit"
)

type DeduplicateDirOptions struct {
	Dir    string
	Logger common.Logger
}

// DeduplicateDir removes duplicate Monitor FIT copies from an extracted
// directory tree on disk. The same grouping rules apply as for archives;
// victims are unlinked directly.
func DeduplicateDir(opts DeduplicateDirOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = common.DefaultLogger()
	}

	info, err := os.Stat(opts.Dir)
	if err != nil {
		return fmt.Errorf("%w: %s", common.ErrSourceNotFound, opts.Dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", common.ErrNotDirectory, opts.Dir)
	}

	logger.Info("Processing folder: %s", opts.Dir)

	entries, err := classifyTree(opts.Dir)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		logger.Info("No Monitor FIT files found in folder")
		return nil
	}
	logger.Info("Found %d Monitor FIT files to process", len(entries))

	victims := fit.PlanDeletions(entries)
	if len(victims) == 0 {
		logger.Info("No copy-suffix groups (...0000[0-9]) needing cleanup; nothing to delete.")
		return nil
	}
	logger.Info("Removing %d duplicate files", len(victims))

	removed := 0
	for _, victim := range victims {
		full := filepath.Join(opts.Dir, filepath.FromSlash(victim))
		if _, err := os.Stat(full); err != nil {
			logger.Info("Warning: expected file not found: %s", victim)
			continue
		}
		if keep, ok := fit.KeeperPath(victim); ok {
			logger.Info("DELETE: %s -> KEEP: %s", victim, keep)
		}
		if err := os.Remove(full); err != nil {
			return fmt.Errorf("removing %s: %w", victim, err)
		}
		removed++
	}

	logger.Info("Removed %d duplicate files from %s", removed, opts.Dir)
	return nil
}

// classifyTree walks dir and returns the monitor-FIT files beneath it as
// entries relative to dir.
func classifyTree(dir string) ([]fit.Entry, error) {
	var entries []fit.Entry
	err := godirwalk.Walk(dir, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			norm := fit.NormalizePath(filepath.ToSlash(rel))
			if fit.IsMonitorFIT(norm) {
				d, name := fit.SplitDirFile(norm)
				entries = append(entries, fit.Entry{Dir: d, Name: name})
			}
			return nil
		},
		Unsorted: false,
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	return entries, nil
}
