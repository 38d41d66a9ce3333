package diskuse

import (
	"os"
	"path/filepath"
)

const (
	// cacheDirEnv overrides the directory holding the cache file.
	cacheDirEnv = "ACME_DISK_USE_CACHE"
	// cacheFileName is the blob file created inside the cache directory.
	cacheFileName = "cache.bin"
)

// DefaultCachePath resolves where the persisted cache blob lives.
// Precedence:
//  1. $ACME_DISK_USE_CACHE, if set and non-empty
//  2. os.UserCacheDir()/acme-disk-use
//  3. the current directory
func DefaultCachePath() string {
	if dir, ok := os.LookupEnv(cacheDirEnv); ok && dir != "" {
		return filepath.Join(dir, cacheFileName)
	}

	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "acme-disk-use", cacheFileName)
	}

	return cacheFileName
}

// canonicalPath resolves path to an absolute, symlink-free form. A path
// that cannot be resolved (typically because it does not exist) falls
// back to the cleaned absolute form so lookups stay deterministic.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}

	return abs
}
