package diskuse

// DiskUse is the high-level disk usage analyzer, combining the scanner
// with the persistent cache store.
//
// A DiskUse is not safe for concurrent use; top-level calls must be
// serialized by the caller.
type DiskUse struct {
	cache *Manager
}

// New creates an analyzer backed by the cache file at cachePath.
func New(cachePath string) *DiskUse {
	return &DiskUse{cache: NewManager(cachePath)}
}

// NewWithDefaultCache creates an analyzer using the default cache location.
func NewWithDefaultCache() *DiskUse {
	return New(DefaultCachePath())
}

// Scan computes the total size in bytes of the subtree rooted at path,
// reusing cached subtrees where they are still valid and updating the
// cache with the result.
func (d *DiskUse) Scan(path string) (uint64, error) {
	return d.ScanWithOptions(path, false)
}

// ScanWithOptions scans path. When ignoreCache is true the cache store is
// neither read nor written and the result reflects the live filesystem
// exactly.
func (d *DiskUse) ScanWithOptions(path string, ignoreCache bool) (uint64, error) {
	// Scan from the canonical root so every child key in the resulting
	// tree is canonical too.
	canonical := canonicalPath(path)

	var cached *DirStat
	if !ignoreCache {
		cached = d.cache.Get(canonical)
	}

	stat, err := scanDirectory(canonical, cached)
	if err != nil {
		return 0, err
	}

	if !ignoreCache {
		d.cache.Update(canonical, stat)
	}

	return stat.TotalSize, nil
}

// Stats returns the cached tree for a previously scanned root, or nil.
func (d *DiskUse) Stats(path string) *DirStat {
	return d.cache.Get(path)
}

// FileCount returns the number of regular files under path. When
// ignoreCache is true the files are recounted from the live filesystem;
// otherwise the cached value is returned, 0 if the root was never scanned.
func (d *DiskUse) FileCount(path string, ignoreCache bool) (uint64, error) {
	if ignoreCache {
		return countFiles(path)
	}

	if stats := d.Stats(path); stats != nil {
		return stats.FileCount, nil
	}

	return 0, nil
}

// SaveCache persists the cache if it has unsaved changes.
func (d *DiskUse) SaveCache() error {
	return d.cache.Save()
}

// ClearCache empties the cache and persists the empty state immediately.
func (d *DiskUse) ClearCache() error {
	return d.cache.Clear()
}

// DeleteCache removes the backing cache file.
func (d *DiskUse) DeleteCache() error {
	return d.cache.Delete()
}

// CachePath returns the location of the backing cache file.
func (d *DiskUse) CachePath() string {
	return d.cache.Path()
}

// Close saves a dirty cache best-effort. Safe to defer alongside explicit
// SaveCache calls.
func (d *DiskUse) Close() {
	d.cache.Close()
}
