package dedup

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AI-READI/fitpack/pkg/archive"
	"github.com/AI-READI/fitpack/pkg/common"
)

type ExtractOptions struct {
	ArchivePath string
	// OutputPath is the directory to extract into. When empty a temporary
	// directory is created, and removed again if extraction or
	// deduplication fails.
	OutputPath string
	Logger     common.Logger
}

// ExtractAndDeduplicate extracts an archive, removes duplicate Monitor FIT
// copies from the extracted files, and returns the extraction directory.
// Unlike the batch entry points this one propagates errors to the caller: it
// has no batch context to continue past.
func ExtractAndDeduplicate(opts ExtractOptions) (string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = common.DefaultLogger()
	}

	if _, err := os.Stat(opts.ArchivePath); err != nil {
		return "", fmt.Errorf("%w: %s", common.ErrSourceNotFound, opts.ArchivePath)
	}

	extractDir := opts.OutputPath
	cleanupTemp := false
	if extractDir == "" {
		dir, err := os.MkdirTemp("", "fitpack-dedup-")
		if err != nil {
			return "", fmt.Errorf("creating extraction dir: %w", err)
		}
		extractDir = dir
		cleanupTemp = true
	} else if err := os.MkdirAll(extractDir, 0755); err != nil {
		return "", fmt.Errorf("creating extraction dir: %w", err)
	}

	logger.Info("Extracting %s to %s", filepath.Base(opts.ArchivePath), extractDir)

	if err := archive.Extract(opts.ArchivePath, extractDir); err != nil {
		logger.Error("Error during extraction: %v", err)
		if cleanupTemp {
			os.RemoveAll(extractDir)
		}
		return "", err
	}

	if err := DeduplicateDir(DeduplicateDirOptions{Dir: extractDir, Logger: logger}); err != nil {
		logger.Error("Error during deduplication: %v", err)
		if cleanupTemp {
			os.RemoveAll(extractDir)
		}
		return "", err
	}

	logger.Info("Deduplication complete. Extracted folder: %s", extractDir)
	return extractDir, nil
}
