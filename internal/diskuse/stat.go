package diskuse

import (
	"time"
)

// DirStat holds aggregate statistics for a directory subtree.
//
// A node's aggregates cover the directory's own regular files plus the
// aggregates of every child in Children. Children is keyed by the child's
// canonical absolute path, so each node is reachable from exactly one
// parent and the structure forms a strict ownership tree.
type DirStat struct {
	// Path is the canonical absolute path of the directory.
	Path string `json:"path"`
	// TotalSize is the cumulative size in bytes of all regular files in the subtree.
	TotalSize uint64 `json:"total_size"`
	// FileCount is the number of regular files in the subtree.
	FileCount uint64 `json:"file_count"`
	// LastScan is when the statistics were last computed or confirmed valid.
	LastScan time.Time `json:"last_scan"`
	// Children maps immediate subdirectory paths to their statistics.
	Children map[string]*DirStat `json:"children"`
}

// Clone returns a deep copy of the subtree rooted at d.
// Scans prune and re-aggregate on a copy so the cache store's own entry
// is never mutated by an in-flight scan.
func (d *DirStat) Clone() *DirStat {
	if d == nil {
		return nil
	}

	clone := &DirStat{
		Path:      d.Path,
		TotalSize: d.TotalSize,
		FileCount: d.FileCount,
		LastScan:  d.LastScan,
		Children:  make(map[string]*DirStat, len(d.Children)),
	}

	for path, child := range d.Children {
		clone.Children[path] = child.Clone()
	}

	return clone
}

// Child returns the cached statistics for an immediate subdirectory,
// or nil if the path is not present.
func (d *DirStat) Child(path string) *DirStat {
	if d == nil {
		return nil
	}

	return d.Children[path]
}
