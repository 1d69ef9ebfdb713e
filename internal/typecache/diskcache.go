// Package typecache persists a checker.TypeCache to disk between runs,
// keyed by a module's content hash, so a CLI invocation on an unchanged
// module graph can skip re-checking entirely (spec.md §4.5's TypeCache
// described as "safely serialized structurally, all ids are dense u32
// values" — this is the driver-facing store that exercises that guarantee).
package typecache

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"surge/internal/checker"
	"surge/internal/project"
)

// schemaVersion increments whenever Payload's wire shape changes; a mismatch
// is treated as a cache miss rather than a decode error.
const schemaVersion uint16 = 1

// DiskCache stores one Payload per module, addressed by its ModuleHash
// (content hash plus every dependency's export hash, so a change anywhere
// upstream invalidates the entry). Thread-safe for concurrent access across
// the driver's per-file worker pool.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Payload bundles a module's cached TypeCache with the hashes needed to
// decide whether it is still valid for a given rebuild.
type Payload struct {
	Schema         uint16
	ModuleHash     project.Digest
	DependencyHash project.Digest
	Broken         bool
	Cache          []byte // checker.TypeCache.MarshalBinary output
}

// OpenDiskCache initializes and returns a disk cache at the standard
// XDG-style cache location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "mods", hexKey+".tc")
}

// Put serializes a module's TypeCache and writes it to disk, keyed by
// moduleHash. Writes go through a temp file plus rename for atomicity, so a
// crash mid-write never leaves a half-written entry for Get to trip over.
func (c *DiskCache) Put(moduleHash project.Digest, depHash project.Digest, broken bool, tc *checker.TypeCache) error {
	if c == nil {
		return nil
	}
	encoded, err := tc.MarshalBinary()
	if err != nil {
		return err
	}
	payload := &Payload{
		Schema:         schemaVersion,
		ModuleHash:     moduleHash,
		DependencyHash: depHash,
		Broken:         broken,
		Cache:          encoded,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(moduleHash)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmpName := f.Name()
	defer os.Remove(tmpName)

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, p)
}

// Get reads back a module's cached TypeCache, validating it against the
// caller's current moduleHash/depHash — a mismatch (the module or one of its
// dependencies changed since the entry was written) reports a miss rather
// than stale data.
func (c *DiskCache) Get(moduleHash, depHash project.Digest) (*checker.TypeCache, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(moduleHash)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload Payload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != schemaVersion || payload.ModuleHash != moduleHash || payload.DependencyHash != depHash {
		return nil, false, nil
	}
	tc := &checker.TypeCache{}
	if err := tc.UnmarshalBinary(payload.Cache); err != nil {
		return nil, false, err
	}
	return tc, true, nil
}

// DropAll invalidates the whole cache, useful after a schema change: it
// renames the directory aside and then removes the renamed copy before
// returning.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
