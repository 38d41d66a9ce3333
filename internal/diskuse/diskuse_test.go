package diskuse

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskUseWithCache(t *testing.T) {
	base := t.TempDir()
	testDir := filepath.Join(base, "test")
	cacheFile := filepath.Join(base, "cache.bin")

	require.NoError(t, os.Mkdir(testDir, 0o755))
	createTestTree(t, testDir)

	func() {
		analyzer := New(cacheFile)
		defer analyzer.Close()

		size, err := analyzer.Scan(testDir)
		require.NoError(t, err)
		assert.Equal(t, uint64(71), size)

		require.NoError(t, analyzer.SaveCache())
	}()

	require.FileExists(t, cacheFile)

	analyzer := New(cacheFile)
	defer analyzer.Close()

	size, err := analyzer.Scan(testDir)
	require.NoError(t, err)
	assert.Equal(t, uint64(71), size)

	count, err := analyzer.FileCount(testDir, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), count)
}

func TestDiskUseIgnoreCache(t *testing.T) {
	base := t.TempDir()
	testDir := filepath.Join(base, "test")
	cacheFile := filepath.Join(base, "cache.bin")

	require.NoError(t, os.Mkdir(testDir, 0o755))
	createTestTree(t, testDir)

	analyzer := New(cacheFile)
	defer analyzer.Close()

	size, err := analyzer.Scan(testDir)
	require.NoError(t, err)
	assert.Equal(t, uint64(71), size)

	time.Sleep(mtimeSlack)
	require.NoError(t, os.WriteFile(filepath.Join(testDir, "new_file.txt"), []byte("New content"), 0o644))

	size, err = analyzer.ScanWithOptions(testDir, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(82), size)

	count, err := analyzer.FileCount(testDir, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), count)
}

func TestDiskUseIgnoreCacheNeverWrites(t *testing.T) {
	base := t.TempDir()
	testDir := filepath.Join(base, "test")
	cacheFile := filepath.Join(base, "cache.bin")

	require.NoError(t, os.Mkdir(testDir, 0o755))
	createTestTree(t, testDir)

	func() {
		analyzer := New(cacheFile)
		defer analyzer.Close()

		_, err := analyzer.ScanWithOptions(testDir, true)
		require.NoError(t, err)

		// Bypassing scans leave the store clean, so the cached value is
		// still absent.
		count, err := analyzer.FileCount(testDir, false)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), count)
	}()

	assert.NoFileExists(t, cacheFile, "a bypassing scan must not persist anything")
}

func TestDiskUseCacheManagement(t *testing.T) {
	base := t.TempDir()
	testDir := filepath.Join(base, "test")
	cacheFile := filepath.Join(base, "cache.bin")

	require.NoError(t, os.Mkdir(testDir, 0o755))
	createTestTree(t, testDir)

	analyzer := New(cacheFile)
	defer analyzer.Close()

	assert.Equal(t, cacheFile, analyzer.CachePath())

	_, err := analyzer.Scan(testDir)
	require.NoError(t, err)
	require.NoError(t, analyzer.SaveCache())
	require.FileExists(t, cacheFile)

	require.NoError(t, analyzer.ClearCache())
	assert.Nil(t, analyzer.Stats(testDir))

	require.NoError(t, analyzer.DeleteCache())
	assert.NoFileExists(t, cacheFile)
}

func TestDiskUseScanMissingRoot(t *testing.T) {
	base := t.TempDir()

	analyzer := New(filepath.Join(base, "cache.bin"))
	defer analyzer.Close()

	_, err := analyzer.Scan(filepath.Join(base, "no-such-dir"))
	assert.Error(t, err)
}

func TestDiskUseUpdatedTreeThroughCache(t *testing.T) {
	base := t.TempDir()
	testDir := filepath.Join(base, "test")
	cacheFile := filepath.Join(base, "cache.bin")

	require.NoError(t, os.Mkdir(testDir, 0o755))
	createTestTree(t, testDir)

	analyzer := New(cacheFile)
	defer analyzer.Close()

	_, err := analyzer.Scan(testDir)
	require.NoError(t, err)

	time.Sleep(mtimeSlack)
	require.NoError(t, os.RemoveAll(filepath.Join(testDir, "subdir2")))

	size, err := analyzer.Scan(testDir)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), size)

	count, err := analyzer.FileCount(testDir, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}
