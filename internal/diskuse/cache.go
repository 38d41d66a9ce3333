package diskuse

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"
)

// cacheFormatVersion tags the persisted blob layout.
const cacheFormatVersion = 1

// cacheState is the persisted form of the cache: one scan tree per
// canonical root path, plus the format version.
type cacheState struct {
	// Roots maps canonical root paths to their scan trees.
	Roots map[string]*DirStat `json:"roots"`
	// Version is the persisted format version.
	Version uint32 `json:"version"`
}

// Manager is a persistent, path-keyed store of scan trees with lazy
// write-back: mutations only mark the store dirty, and the blob is written
// on an explicit Save, an eager Clear, or best-effort on Close.
//
// A Manager is not safe for concurrent use; callers must serialize
// top-level calls. Concurrent processes sharing one cache file race on
// Save with last-writer-wins.
type Manager struct {
	cache     cacheState
	cachePath string
	dirty     bool
}

// NewManager opens the cache backed by the file at cachePath. Loading is
// best-effort: an unreadable or corrupt file yields an empty cache, never
// an error.
func NewManager(cachePath string) *Manager {
	return &Manager{
		cache:     loadCache(cachePath),
		cachePath: cachePath,
	}
}

// loadCache reads the persisted state, trying the binary format first and
// falling back to the legacy JSON format for caches written by older
// versions. Anything unreadable degrades to empty.
func loadCache(cachePath string) cacheState {
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return emptyCacheState()
	}

	var binState cacheState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&binState); err == nil {
		if binState.Roots == nil {
			binState.Roots = make(map[string]*DirStat)
		}

		return binState
	}

	var jsonState cacheState
	if err := json.Unmarshal(data, &jsonState); err == nil {
		log.Debugf("cache %s loaded via legacy JSON format", cachePath)

		if jsonState.Roots == nil {
			jsonState.Roots = make(map[string]*DirStat)
		}

		return jsonState
	}

	log.Warnf("cache %s is unreadable, starting empty", cachePath)

	return emptyCacheState()
}

func emptyCacheState() cacheState {
	return cacheState{
		Roots:   make(map[string]*DirStat),
		Version: cacheFormatVersion,
	}
}

// Get returns the cached tree for path, or nil if absent. The lookup key
// is canonicalized so callers may pass any spelling of the path.
func (m *Manager) Get(path string) *DirStat {
	return m.cache.Roots[canonicalPath(path)]
}

// Update inserts or replaces the entry for path and marks the store
// dirty. Canonicalization happens here, once, so every key in the mapping
// is already canonical.
func (m *Manager) Update(path string, stat *DirStat) {
	m.cache.Roots[canonicalPath(path)] = stat
	m.dirty = true
}

// Save persists the cache in the binary format. It is a no-op unless the
// store is dirty. The blob is written to a temporary file and renamed
// into place so a crash mid-write cannot corrupt a previously saved file.
func (m *Manager) Save() error {
	if !m.dirty {
		return nil
	}

	dir := filepath.Dir(m.cachePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory %q: %w", dir, err)
	}

	m.cache.Version = cacheFormatVersion

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m.cache); err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*")
	if err != nil {
		return fmt.Errorf("creating temporary cache file: %w", err)
	}

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return fmt.Errorf("writing cache: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("closing temporary cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), m.cachePath); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("installing cache file: %w", err)
	}

	m.dirty = false

	return nil
}

// Clear empties the cache and saves immediately. Clearing is eager, not
// lazy: the user asked for the cache to be gone now.
func (m *Manager) Clear() error {
	m.cache = emptyCacheState()
	m.dirty = true

	return m.Save()
}

// Delete removes the backing cache file. A missing file is not an error.
func (m *Manager) Delete() error {
	if err := os.Remove(m.cachePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting cache file %q: %w", m.cachePath, err)
	}

	return nil
}

// Path returns the location of the backing cache file.
func (m *Manager) Path() string {
	return m.cachePath
}

// Close saves a dirty cache best-effort. There is no caller left to
// receive a failure at disposal time, so it is logged and swallowed.
func (m *Manager) Close() {
	if !m.dirty {
		return
	}

	if err := m.Save(); err != nil {
		log.WithError(err).Warnf("failed to save cache %s on close", m.cachePath)
	}
}
