package dedup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/karrick/godirwalk"
	"golang.org/x/sync/errgroup"

	"github.com/AI-READI/fitpack/pkg/common"
)

type CleanOptions struct {
	RootDir string
	// Workers bounds how many archives are processed concurrently.
	// Defaults to 1 (sequential); the per-path guard makes higher values
	// safe even when the same archive is listed twice.
	Workers int
	Locks   *common.PathLocks
	Logger  common.Logger
}

type CleanResult struct {
	Processed int
	Failed    int
}

// CleanDirectory discovers FIT-*.zip archives directly inside RootDir
// (non-recursive) and deduplicates each one in place. A failing archive is
// logged and counted but never aborts the batch; the returned error is
// reserved for a missing or non-directory root.
func CleanDirectory(opts CleanOptions) (CleanResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = common.DefaultLogger()
	}

	info, err := os.Stat(opts.RootDir)
	if err != nil {
		return CleanResult{}, fmt.Errorf("%w: %s", common.ErrSourceNotFound, opts.RootDir)
	}
	if !info.IsDir() {
		return CleanResult{}, fmt.Errorf("%w: %s", common.ErrNotDirectory, opts.RootDir)
	}

	archives, err := findArchives(opts.RootDir)
	if err != nil {
		return CleanResult{}, err
	}
	if len(archives) == 0 {
		logger.Info("No FIT-*.zip files found in %s", opts.RootDir)
		return CleanResult{}, nil
	}
	logger.Info("Found %d archives in %s", len(archives), opts.RootDir)

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	var failed atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for _, path := range archives {
		path := path
		g.Go(func() error {
			err := DeduplicateArchive(DeduplicateOptions{
				ArchivePath: path,
				Locks:       opts.Locks,
				Logger:      logger,
			})
			if err != nil {
				logger.Error("Failed to process %s: %v", path, err)
				failed.Add(1)
			}
			return nil
		})
	}
	g.Wait()

	result := CleanResult{
		Processed: len(archives),
		Failed:    int(failed.Load()),
	}
	logger.Info("Done: %d archives processed, %d failed", result.Processed, result.Failed)
	return result, nil
}

// findArchives lists FIT-*.zip files directly inside root. Discovery is
// deliberately non-recursive: device exports land flat in one folder.
func findArchives(root string) ([]string, error) {
	dirents, err := godirwalk.ReadDirents(root, nil)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	var archives []string
	for _, de := range dirents {
		if !de.IsRegular() {
			continue
		}
		name := de.Name()
		if strings.HasPrefix(name, "FIT-") && strings.EqualFold(filepath.Ext(name), ".zip") {
			archives = append(archives, filepath.Join(root, name))
		}
	}

	sort.Strings(archives)
	return archives, nil
}
