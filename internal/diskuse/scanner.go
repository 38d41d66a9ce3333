package diskuse

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apex/log"
	"github.com/charlievieth/fastwalk"
	"golang.org/x/sync/errgroup"
)

// pruneDeletedDirs removes children whose directories no longer exist on
// disk, recursing into survivors so deletions are caught at every depth.
// It reports whether anything was removed anywhere in the subtree.
func pruneDeletedDirs(cached *DirStat) bool {
	pruned := false

	for path, child := range cached.Children {
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			delete(cached.Children, path)

			pruned = true

			continue
		}

		if pruneDeletedDirs(child) {
			pruned = true
		}
	}

	return pruned
}

// reaggregate rebuilds a pruned node's totals from its surviving children
// plus the regular files directly under path, and refreshes LastScan.
// Surviving subtrees are trusted as-is; only the immediate listing is re-read.
func reaggregate(path string, node *DirStat) {
	var totalSize, fileCount uint64

	for _, child := range node.Children {
		totalSize += child.TotalSize
		fileCount += child.FileCount
	}

	if entries, err := os.ReadDir(path); err == nil {
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil {
				continue // entry vanished between listing and stat
			}

			if info.Mode().IsRegular() {
				totalSize += uint64(info.Size()) //nolint:gosec // Regular file sizes are non-negative
				fileCount++
			}
		}
	}

	node.TotalSize = totalSize
	node.FileCount = fileCount
	node.LastScan = time.Now()
}

// dirChangedSinceLastScan reports whether path or anything beneath it has
// changed since the cached entry was computed. Deleted directories are
// assumed to have been pruned already.
//
// The directory's own mtime catches file additions and removals at this
// level; the per-subdirectory mtime check catches additions the parent's
// mtime does not reflect on all filesystems; the recursion catches deep
// changes that bump no ancestor mtime at all.
func dirChangedSinceLastScan(path string, cached *DirStat) bool {
	info, err := os.Stat(path)
	if err != nil || info.ModTime().After(cached.LastScan) {
		return true
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return true
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue // entry vanished between listing and stat
		}

		if info.ModTime().After(cached.LastScan) {
			return true
		}

		// Only cached children are walked here: an uncached subdirectory
		// is a structurally new subtree, and the walker's cache miss for
		// it forces a full fresh sub-scan anyway.
		entryPath := filepath.Join(path, entry.Name())
		if child := cached.Child(entryPath); child != nil {
			if dirChangedSinceLastScan(entryPath, child) {
				return true
			}
		}
	}

	return false
}

// scanDirectory computes statistics for the subtree rooted at path.
//
// When a cached entry is supplied it is pruned and validated first; a
// still-valid entry is returned without touching any file content. An
// invalid entry falls through to a fresh listing, with the cached children
// consulted per subdirectory so unchanged branches stay on the fast path.
//
// Only a failure to list path itself is an error. Unreadable
// subdirectories contribute nothing and are omitted from Children.
func scanDirectory(path string, cached *DirStat) (*DirStat, error) {
	if cached != nil {
		pruned := cached.Clone()
		if pruneDeletedDirs(pruned) {
			log.Debugf("pruned deleted entries under %s", path)
			reaggregate(path, pruned)
		}

		// Pruning alone does not make the entry reusable; mtimes must
		// still agree.
		if !dirChangedSinceLastScan(path, pruned) {
			log.Debugf("cache hit for %s", path)

			return pruned, nil
		}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("listing directory %q: %w", path, err)
	}

	var (
		totalSize, fileCount uint64
		subdirs              []string
	)

	for _, entry := range entries {
		if entry.IsDir() {
			subdirs = append(subdirs, filepath.Join(path, entry.Name()))

			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue // entry vanished between listing and stat
		}

		if info.Mode().IsRegular() {
			totalSize += uint64(info.Size()) //nolint:gosec // Regular file sizes are non-negative
			fileCount++
		}
	}

	children := make(map[string]*DirStat, len(subdirs))

	if len(subdirs) > 1 {
		// Fan out across siblings. Each recursive call reads a disjoint
		// subtree and consults only its own cache entry, so the mutex
		// guards nothing but the collection map.
		var (
			mu    sync.Mutex
			group errgroup.Group
		)

		group.SetLimit(runtime.GOMAXPROCS(0))

		for _, subdir := range subdirs {
			subdir := subdir
			group.Go(func() error {
				child, err := scanDirectory(subdir, cached.Child(subdir))
				if err != nil {
					return nil //nolint:nilerr // Unreadable subtrees are omitted, not fatal
				}

				mu.Lock()
				children[child.Path] = child
				mu.Unlock()

				return nil
			})
		}

		_ = group.Wait()
	} else {
		for _, subdir := range subdirs {
			child, err := scanDirectory(subdir, cached.Child(subdir))
			if err != nil {
				continue
			}

			children[child.Path] = child
		}
	}

	for _, child := range children {
		totalSize += child.TotalSize
		fileCount += child.FileCount
	}

	// Stamped after every child has been collected, so a parent's
	// LastScan is never older than a descendant's.
	return &DirStat{
		Path:      path,
		TotalSize: totalSize,
		FileCount: fileCount,
		LastScan:  time.Now(),
		Children:  children,
	}, nil
}

// countFiles recounts regular files under path without consulting any
// cache. A bypassing recount needs no tree or merge, so the flat parallel
// traversal from fastwalk fits.
func countFiles(path string) (uint64, error) {
	if info, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("accessing path %q: %w", path, err)
	} else if !info.IsDir() {
		return 0, fmt.Errorf("path %q is not a directory", path)
	}

	var count atomic.Uint64

	conf := &fastwalk.Config{
		Follow: false, // Don't follow symlinks
	}

	err := fastwalk.Walk(conf, path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Silently skip errors
		}

		if d.Type().IsRegular() {
			count.Add(1)
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walking %q: %w", path, err)
	}

	return count.Load(), nil
}
