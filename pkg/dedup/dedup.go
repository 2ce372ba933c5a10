package dedup

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/AI-READI/fitpack/pkg/archive"
	"github.com/AI-READI/fitpack/pkg/common"
	"github.com/AI-READI/fitpack/pkg/fit"
)

// SetLogLevel configures the logging verbosity for the library.
// Valid levels: "debug", "info", "warn", "error", "disabled"
func SetLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "disabled", "none", "off":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	default:
		return fmt.Errorf("invalid log level %q: must be one of: debug, info, warn, error, disabled", level)
	}
	return nil
}

// defaultLocks guards archives for callers that do not inject their own
// registry.
var defaultLocks = common.NewPathLocks()

type DeduplicateOptions struct {
	ArchivePath string
	Locks       *common.PathLocks
	Logger      common.Logger
	// DisableFileLock skips the sidecar flock; the in-process guard from
	// Locks still serializes callers within this process.
	DisableFileLock bool
}

// DeduplicateArchive removes duplicate Monitor FIT copies from a single ZIP
// archive in place. The whole read-plan-rewrite-replace cycle runs under the
// per-path guard, so concurrent calls on the same archive serialize while
// distinct archives proceed in parallel. Archives with nothing to clean are
// reported as success without being rewritten.
func DeduplicateArchive(opts DeduplicateOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = common.DefaultLogger()
	}
	locks := opts.Locks
	if locks == nil {
		locks = defaultLocks
	}

	unlock := locks.Lock(opts.ArchivePath)
	defer unlock()

	if !opts.DisableFileLock {
		lockPath := opts.ArchivePath + ".lock"
		fileLock := flock.New(lockPath)
		if err := fileLock.Lock(); err != nil {
			return fmt.Errorf("acquiring file lock for %s: %w", opts.ArchivePath, err)
		}
		defer os.Remove(lockPath)
		defer fileLock.Unlock()
	}

	return deduplicateLocked(opts.ArchivePath, logger)
}

func deduplicateLocked(path string, logger common.Logger) error {
	logger.Info("Processing %s", filepath.Base(path))

	names, entries, err := classifyArchive(path)
	if err != nil {
		logger.Error("Failed to read %s: %v", filepath.Base(path), err)
		return err
	}

	if len(entries) == 0 {
		logger.Info("No Monitor/*.FIT entries found; skipping cleanup.")
		return nil
	}

	victims := fit.PlanDeletions(entries)
	if len(victims) == 0 {
		logger.Info("No copy-suffix groups (...0000[0-9]) needing cleanup; nothing to delete.")
		return nil
	}

	victimSet := make(map[string]struct{}, len(victims))
	for _, victim := range victims {
		victimSet[victim] = struct{}{}
		logDeletion(logger, victim, names)
	}

	removed, err := archive.NewRewriter(logger).Rewrite(path, victimSet)
	if err != nil {
		logger.Error("Failed to repack %s: %v", filepath.Base(path), err)
		return err
	}

	logger.Info("Successfully repacked %s (%d duplicates removed)", filepath.Base(path), removed)
	return nil
}

// classifyArchive reads the archive's directory and returns the set of
// normalized member names plus the monitor-FIT entries among them.
func classifyArchive(path string) (map[string]struct{}, []fit.Entry, error) {
	// Backslash member names trip zip.ErrInsecurePath since Go 1.20; the
	// reader is still usable and normalization below removes the hazard.
	zr, err := zip.OpenReader(path)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		if errors.Is(err, zip.ErrFormat) {
			return nil, nil, fmt.Errorf("%w: %s", common.ErrMalformedArchive, path)
		}
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer zr.Close()

	names := make(map[string]struct{}, len(zr.File))
	var entries []fit.Entry
	for _, f := range zr.File {
		norm := fit.NormalizePath(f.Name)
		names[norm] = struct{}{}
		if fit.IsMonitorFIT(norm) {
			dir, name := fit.SplitDirFile(norm)
			entries = append(entries, fit.Entry{Dir: dir, Name: name})
		}
	}
	return names, entries, nil
}

// logDeletion reports a victim together with the keeper it collapses into.
// The keeper's bare filename is only shown when the keeper entry actually
// exists in the archive.
func logDeletion(logger common.Logger, victim string, names map[string]struct{}) {
	keep, ok := fit.KeeperPath(victim)
	if !ok {
		return
	}
	if _, present := names[keep]; present {
		_, keepName := fit.SplitDirFile(keep)
		logger.Info("DELETE: %s -> KEEP: %s", victim, keepName)
	} else {
		logger.Info("DELETE: %s -> KEEP: (expected ...00000 not found)", victim)
	}
}
