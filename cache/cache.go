package cache

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/gogpu/svgmesh/document"
	"github.com/gogpu/svgmesh/internal/lru"
	"github.com/gogpu/svgmesh/mesh"
)

// Default configuration constants.
const (
	// DefaultMaxEntries is the default maximum number of cached meshes.
	DefaultMaxEntries = 256

	// DefaultMaxBytes is the default budget for packed mesh data.
	DefaultMaxBytes = 64 << 20

	// entryOverhead is charged per entry on top of the mesh data.
	entryOverhead = 256
)

// Config configures a Cache. Zero fields take their defaults.
type Config struct {
	// MaxEntries bounds the number of cached meshes. Negative means
	// unlimited.
	MaxEntries int
	// MaxBytes bounds the summed size of cached meshes. Negative means
	// unlimited.
	MaxBytes int64
	// Retention is how long an unreferenced entry may stay idle before
	// Sweep reclaims it. Zero keeps idle entries until evicted by budget.
	Retention time.Duration
	// BuildTimeout bounds how long GetOrBuild waits for a build. Zero
	// leaves only the caller's context.
	BuildTimeout time.Duration
	// Now returns the current time. Tests inject a fake clock here.
	Now func() time.Time
}

// DefaultConfig returns a configuration with default budgets.
func DefaultConfig() Config {
	return Config{
		MaxEntries: DefaultMaxEntries,
		MaxBytes:   DefaultMaxBytes,
		Now:        time.Now,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxEntries == 0 {
		c.MaxEntries = DefaultMaxEntries
	}
	if c.MaxBytes == 0 {
		c.MaxBytes = DefaultMaxBytes
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

var errNoMesh = errors.New("build returned no mesh")

// entry is one cached mesh.
type entry struct {
	key  Key
	mesh *mesh.Mesh
	size int64
	refs int
	// indexed is false once the entry is evicted or invalidated. Held
	// handles keep working; the entry is dropped on the last release.
	indexed  bool
	lastUsed time.Time
	node     *lru.Node[Key, *entry]
}

// Cache is a concurrency-safe store of tessellated meshes.
//
// Cache must not be copied after creation (has mutex).
type Cache struct {
	cfg   Config
	group singleflight.Group

	mu      sync.Mutex
	entries map[Key]*entry
	idle    lru.List[Key, *entry]
	bytes   int64
	// flights tracks the builds running per content hash. Invalidate
	// bumps the generation of a flight, and a build that finishes under
	// an older generation is not indexed.
	flights map[document.Hash]*flight
	stats   Stats
}

// flight counts running builds of one content hash.
type flight struct {
	builds int
	gen    uint64
}

// New creates a cache with the given configuration.
func New(cfg Config) *Cache {
	return &Cache{
		cfg:     cfg.withDefaults(),
		entries: make(map[Key]*entry),
		flights: make(map[document.Hash]*flight),
	}
}

// Get returns a handle to the cached mesh for key without building.
// The caller must Release the handle.
func (c *Cache) Get(key Key) (*Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return c.acquire(e), true
}

// GetOrBuild returns a handle to the mesh for key, calling build when the
// key is absent. Concurrent calls for the same key share one build. The
// caller must Release the returned handle.
//
// Waiting ends early when ctx is done or Config.BuildTimeout elapses; the
// build itself keeps running and its result is cached for later callers.
func (c *Cache) GetOrBuild(ctx context.Context, key Key, build func() (*mesh.Mesh, error)) (*Handle, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.stats.Hits++
		h := c.acquire(e)
		c.mu.Unlock()
		return h, nil
	}
	c.stats.Misses++
	c.mu.Unlock()

	if c.cfg.BuildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.BuildTimeout)
		defer cancel()
	}

	ch := c.group.DoChan(key.String(), func() (any, error) {
		return c.runBuild(key, build)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		e := res.Val.(*entry)
		c.mu.Lock()
		h := c.acquire(e)
		c.mu.Unlock()
		return h, nil
	case <-ctx.Done():
		go c.settle(ch)
		return nil, fmt.Errorf("cache: waiting for build of %s: %w", key.Content.Short(), ctx.Err())
	}
}

// settle waits for a build whose caller stopped waiting. A fresh entry
// nobody acquired becomes idle so the budgets can reclaim it.
func (c *Cache) settle(ch <-chan singleflight.Result) {
	res := <-ch
	if res.Err != nil {
		return
	}
	e := res.Val.(*entry)
	c.mu.Lock()
	defer c.mu.Unlock()
	if e.refs > 0 || e.node != nil || !e.indexed {
		return
	}
	e.node = c.idle.PushFront(e.key, e)
	c.evictLocked()
}

// runBuild executes build for key and indexes the result. It never
// panics: a panic in build becomes a *BuildError.
//
// A fresh entry is indexed outside the idle list, so budget enforcement
// cannot drop it before the waiters acquire it.
func (c *Cache) runBuild(key Key, build func() (*mesh.Mesh, error)) (e *entry, err error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		// Another build for this key finished between the lookup and
		// the singleflight call.
		c.mu.Unlock()
		return e, nil
	}
	c.stats.Builds++
	f := c.flights[key.Content]
	if f == nil {
		f = &flight{}
		c.flights[key.Content] = f
	}
	f.builds++
	gen := f.gen
	c.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			Logger().Error("cache: build panicked",
				"content", key.Content.Short(), "panic", r, "stack", string(debug.Stack()))
			err = &BuildError{Key: key, Err: fmt.Errorf("%v", r), Panicked: true}
			e = nil
			c.mu.Lock()
			c.stats.Failures++
			c.land(key.Content, f)
			c.mu.Unlock()
		}
	}()

	start := c.cfg.Now()
	m, err := build()
	if err == nil && m == nil {
		err = errNoMesh
	}
	if err != nil {
		c.mu.Lock()
		c.stats.Failures++
		c.land(key.Content, f)
		c.mu.Unlock()
		Logger().Warn("cache: build failed", "content", key.Content.Short(), "err", err)
		return nil, &BuildError{Key: key, Err: err}
	}

	e = &entry{
		key:  key,
		mesh: m,
		size: int64(m.ByteSize()) + entryOverhead,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	e.lastUsed = c.cfg.Now()
	c.land(key.Content, f)
	if f.gen != gen {
		// Invalidated while building: hand the mesh to the waiters but
		// keep it out of the index.
		Logger().Debug("cache: build outdated by invalidation", "content", key.Content.Short())
		return e, nil
	}
	e.indexed = true
	c.entries[key] = e
	c.bytes += e.size
	Logger().Debug("cache: built",
		"content", key.Content.Short(),
		"triangles", m.TriangleCount(),
		"bytes", e.size,
		"elapsed", e.lastUsed.Sub(start))
	c.sweepLocked()
	c.evictLocked()
	return e, nil
}

// land ends one build of content. Must hold c.mu.
func (c *Cache) land(content document.Hash, f *flight) {
	f.builds--
	if f.builds == 0 && c.flights[content] == f {
		delete(c.flights, content)
	}
}

// acquire takes a reference to e. Must hold c.mu.
func (c *Cache) acquire(e *entry) *Handle {
	if e.refs == 0 && e.node != nil {
		c.idle.Remove(e.node)
		e.node = nil
	}
	e.refs++
	e.lastUsed = c.cfg.Now()
	return &Handle{c: c, e: e}
}

// release drops a reference to e.
func (c *Cache) release(e *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e.refs--
	e.lastUsed = c.cfg.Now()
	if e.refs > 0 || !e.indexed {
		return
	}
	e.node = c.idle.PushFront(e.key, e)
	c.evictLocked()
}

// evictLocked drops least recently used idle entries until the cache
// fits its budgets. Must hold c.mu.
func (c *Cache) evictLocked() {
	for c.overBudget() {
		n := c.idle.RemoveBack()
		if n == nil {
			// Everything left is referenced.
			return
		}
		n.Value.node = nil
		c.unindex(n.Value)
		c.stats.Evictions++
		Logger().Debug("cache: evicted", "content", n.Key.Content.Short(), "bytes", n.Value.size)
	}
}

func (c *Cache) overBudget() bool {
	if c.cfg.MaxEntries > 0 && len(c.entries) > c.cfg.MaxEntries {
		return true
	}
	return c.cfg.MaxBytes > 0 && c.bytes > c.cfg.MaxBytes
}

// unindex removes e from the index. Must hold c.mu.
func (c *Cache) unindex(e *entry) {
	if !e.indexed {
		return
	}
	e.indexed = false
	delete(c.entries, e.key)
	c.bytes -= e.size
}

// Sweep reclaims unreferenced entries idle for longer than
// Config.Retention and returns how many were removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked()
}

func (c *Cache) sweepLocked() int {
	if c.cfg.Retention <= 0 {
		return 0
	}
	now := c.cfg.Now()
	removed := 0
	for n := c.idle.Back(); n != nil; n = c.idle.Back() {
		if now.Sub(n.Value.lastUsed) <= c.cfg.Retention {
			break
		}
		c.idle.Remove(n)
		n.Value.node = nil
		c.unindex(n.Value)
		removed++
	}
	c.stats.Expired += uint64(removed)
	return removed
}

// Invalidate makes every entry built from content unreachable and returns
// how many were dropped from the index. Idle entries are reclaimed at
// once; referenced ones stay valid for their holders and are reclaimed
// on the last Release. Builds for content already in flight are not
// indexed when they finish.
func (c *Cache) Invalidate(content document.Hash) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f := c.flights[content]; f != nil {
		f.gen++
	}
	n := 0
	for key, e := range c.entries {
		if key.Content != content {
			continue
		}
		if e.node != nil {
			c.idle.Remove(e.node)
			e.node = nil
		}
		c.unindex(e)
		n++
	}
	c.stats.Invalidations += uint64(n)
	if n > 0 {
		Logger().Debug("cache: invalidated", "content", content.Short(), "entries", n)
	}
	return n
}

// Len returns the number of indexed entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Entries = len(c.entries)
	s.Idle = c.idle.Len()
	s.Bytes = c.bytes
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}

// Stats contains cache statistics.
type Stats struct {
	// Entries is the current number of indexed meshes.
	Entries int
	// Idle is the number of indexed meshes with no outstanding handle.
	Idle int
	// Bytes is the summed size of indexed meshes.
	Bytes int64
	// Hits and Misses count lookups.
	Hits   uint64
	Misses uint64
	// HitRate is the cache hit rate 0.0 to 1.0.
	HitRate float64
	// Builds counts build invocations; Failures counts those that
	// returned an error or panicked.
	Builds   uint64
	Failures uint64
	// Evictions counts entries dropped for budget, Expired those dropped
	// by retention, Invalidations those dropped by Invalidate.
	Evictions     uint64
	Expired       uint64
	Invalidations uint64
}
