package dedup

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI-READI/fitpack/pkg/common"
)

// recordLogger captures log lines so tests can assert on decisions.
type recordLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordLogger) Error(format string, args ...interface{}) {
	l.Info(format, args...)
}

func (l *recordLogger) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if line == substr {
			return true
		}
	}
	return false
}

func writeArchive(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()

	zw := zip.NewWriter(out)
	for name, data := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func archiveNames(t *testing.T, path string) []string {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		require.ErrorIs(t, err, zip.ErrInsecurePath)
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func archiveContent(t *testing.T, path, name string) string {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		require.ErrorIs(t, err, zip.ErrInsecurePath)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(data)
		}
	}
	t.Fatalf("entry %q not found in %s", name, path)
	return ""
}

func TestDeduplicateArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "FIT-123.zip")

	writeArchive(t, path, map[string]string{
		`GARMIN\Monitor\2024-01-01\M1I00000.FIT`: "keeper",
		`GARMIN\Monitor\2024-01-01\M1I00001.FIT`: "dup one",
		`GARMIN\Monitor\2024-01-01\M1I00005.FIT`: "dup five",
		`GARMIN\Monitor\2024-01-01\M1I_0050.FIT`: "not a copy",
		"GARMIN/Device/device.fit":               "device data",
	})

	logger := &recordLogger{}
	err := DeduplicateArchive(DeduplicateOptions{ArchivePath: path, Logger: logger})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"GARMIN/Monitor/2024-01-01/M1I00000.FIT",
		"GARMIN/Monitor/2024-01-01/M1I_0050.FIT",
		"GARMIN/Device/device.fit",
	}, archiveNames(t, path))

	// Keeper bytes survive the rewrite untouched.
	assert.Equal(t, "keeper", archiveContent(t, path, "GARMIN/Monitor/2024-01-01/M1I00000.FIT"))
	assert.Equal(t, "device data", archiveContent(t, path, "GARMIN/Device/device.fit"))

	assert.True(t, logger.contains("DELETE: GARMIN/Monitor/2024-01-01/M1I00001.FIT -> KEEP: M1I00000.FIT"))
	assert.True(t, logger.contains("DELETE: GARMIN/Monitor/2024-01-01/M1I00005.FIT -> KEEP: M1I00000.FIT"))
}

func TestDeduplicateArchiveNoKeeperDeletesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "FIT-123.zip")

	writeArchive(t, path, map[string]string{
		"GARMIN/Monitor/M1I00001.FIT": "dup one",
		"GARMIN/Monitor/M1I00002.FIT": "dup two",
	})
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, DeduplicateArchive(DeduplicateOptions{ArchivePath: path, Logger: common.NopLogger()}))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "archive must not be rewritten when no group has a keeper")
}

func TestDeduplicateArchiveNoMonitorEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "FIT-123.zip")

	writeArchive(t, path, map[string]string{
		"GARMIN/Device/device.fit": "device",
		"Fitness/X.fit":            "not monitor",
	})
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, DeduplicateArchive(DeduplicateOptions{ArchivePath: path, Logger: common.NopLogger()}))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDeduplicateArchiveIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "FIT-123.zip")

	writeArchive(t, path, map[string]string{
		"GARMIN/Monitor/M1I00000.FIT": "keeper",
		"GARMIN/Monitor/M1I00003.FIT": "dup",
	})

	require.NoError(t, DeduplicateArchive(DeduplicateOptions{ArchivePath: path, Logger: common.NopLogger()}))
	afterFirst, err := os.ReadFile(path)
	require.NoError(t, err)

	// Second run finds no victims and must not rewrite the file.
	require.NoError(t, DeduplicateArchive(DeduplicateOptions{ArchivePath: path, Logger: common.NopLogger()}))
	afterSecond, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, afterFirst, afterSecond)
}

func TestDeduplicateArchiveMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "FIT-bad.zip")
	require.NoError(t, os.WriteFile(path, []byte("not a zip at all"), 0644))

	err := DeduplicateArchive(DeduplicateOptions{ArchivePath: path, Logger: common.NopLogger()})
	assert.ErrorIs(t, err, common.ErrMalformedArchive)
}

func TestDeduplicateArchiveConcurrentDistinctPaths(t *testing.T) {
	dir := t.TempDir()

	paths := make([]string, 8)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("FIT-%03d.zip", i))
		writeArchive(t, paths[i], map[string]string{
			"GARMIN/Monitor/M1I00000.FIT": "keeper",
			"GARMIN/Monitor/M1I00001.FIT": "dup",
		})
	}

	locks := common.NewPathLocks()
	var wg sync.WaitGroup
	errs := make([]error, len(paths))
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			errs[i] = DeduplicateArchive(DeduplicateOptions{
				ArchivePath: path,
				Locks:       locks,
				Logger:      common.NopLogger(),
			})
		}(i, path)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "archive %d", i)
		assert.ElementsMatch(t, []string{"GARMIN/Monitor/M1I00000.FIT"}, archiveNames(t, paths[i]))
	}
}

func TestDeduplicateArchiveConcurrentSamePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "FIT-123.zip")

	writeArchive(t, path, map[string]string{
		"GARMIN/Monitor/M1I00000.FIT": "keeper",
		"GARMIN/Monitor/M1I00001.FIT": "dup one",
		"GARMIN/Monitor/M1I00002.FIT": "dup two",
	})

	locks := common.NewPathLocks()
	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = DeduplicateArchive(DeduplicateOptions{
				ArchivePath: path,
				Locks:       locks,
				Logger:      common.NopLogger(),
			})
		}(i)
	}
	wg.Wait()

	// Serialized: the first caller rewrites, the rest see a clean archive.
	for i, err := range errs {
		require.NoError(t, err, "caller %d", i)
	}
	assert.ElementsMatch(t, []string{"GARMIN/Monitor/M1I00000.FIT"}, archiveNames(t, path))
}

func TestSetLogLevel(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"warn", false},
		{"warning", false},
		{"error", false},
		{"disabled", false},
		{"DEBUG", false},
		{"verbose", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			err := SetLogLevel(tt.level)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
			} else {
				require.NoError(t, err)
			}
		})
	}
	require.NoError(t, SetLogLevel("info"))
}
