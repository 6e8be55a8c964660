package render

import (
	"image"
	"sync"
)

// tileState is the lifecycle of a cached tile: Stale -> Rendering -> Valid,
// and Valid -> Stale on invalidation.
type tileState uint8

const (
	tileStale tileState = iota
	tileRendering
	tileValid
)

// tileEntry is one cached tile. Access is guarded by its shard's lock.
type tileEntry struct {
	state tileState

	// pubGen is the generation of the published image content.
	pubGen uint64

	// renderGen is the generation of the in-flight render task, meaningful
	// while state is Rendering.
	renderGen uint64

	// dirtyAfter is the generation of the latest invalidation touching
	// this tile. Content published from an older generation stays stale.
	dirtyAfter uint64

	img *image.RGBA
}

// shardCount spreads publish contention; a power of 2 for cheap masking.
const shardCount = 16

// cacheShard is one lock-guarded slice of the tile cache.
type cacheShard struct {
	mu      sync.Mutex
	entries map[TileKey]*tileEntry
}

// tileCache is the sharded tile store, the single structure touched by
// multiple goroutines. Publishing is last-writer-wins per tile, gated by a
// generation comparison rather than long-held locks.
type tileCache struct {
	shards [shardCount]cacheShard
}

func newTileCache() *tileCache {
	c := &tileCache{}
	for i := range c.shards {
		c.shards[i].entries = make(map[TileKey]*tileEntry)
	}
	return c
}

func (c *tileCache) shardFor(key TileKey) *cacheShard {
	// Cheap coordinate mix; shard choice only needs to spread load.
	h := uint64(uint32(key.X))*0x9E3779B1 ^ uint64(uint32(key.Y))*0x85EBCA77
	return &c.shards[h&(shardCount-1)]
}

// get returns the published image and generation if the tile is valid.
func (c *tileCache) get(key TileKey) (*image.RGBA, uint64, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || e.state != tileValid || e.img == nil {
		return nil, 0, false
	}
	return e.img, e.pubGen, true
}

// markRendering transitions a tile to Rendering unless it is already valid
// and clean, or being rendered at generation >= gen. It reports whether the
// caller should schedule a task.
func (c *tileCache) markRendering(key TileKey, gen uint64) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		s.entries[key] = &tileEntry{state: tileRendering, renderGen: gen}
		return true
	}
	if e.state == tileValid && e.dirtyAfter <= e.pubGen {
		return false
	}
	if e.state == tileRendering && e.renderGen >= gen {
		return false
	}
	e.state = tileRendering
	e.renderGen = gen
	return true
}

// publish installs a rendered tile for generation gen. A result from an
// older generation than the published content is dropped; a result older
// than the latest invalidation is installed but stays stale so it will be
// re-rendered, never presented as current.
// It reports whether the tile became valid.
func (c *tileCache) publish(key TileKey, img *image.RGBA, gen uint64) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		e = &tileEntry{}
		s.entries[key] = e
	}
	if e.img != nil && gen < e.pubGen {
		// Superseded result: it was never visible to a caller, so the
		// buffer can go straight back to the pool. Replaced images below
		// cannot; callers may still hold them through earlier frames.
		tilePool.Put(img)
		return false
	}
	e.img = img
	e.pubGen = gen
	if e.dirtyAfter > gen {
		e.state = tileStale
		return false
	}
	e.state = tileValid
	return true
}

// abort backs a cancelled task's tile out of the Rendering state so a later
// viewport request reschedules it. Content already published stays served if
// it is still clean.
func (c *tileCache) abort(key TileKey, gen uint64) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || e.state != tileRendering || e.renderGen != gen {
		return
	}
	if e.img != nil && e.dirtyAfter <= e.pubGen {
		e.state = tileValid
	} else {
		e.state = tileStale
	}
}

// invalidate marks every cached tile for which affected returns true as
// stale as of generation gen.
func (c *tileCache) invalidate(affected func(TileKey) bool, gen uint64) {
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		for key, e := range s.entries {
			if affected(key) {
				if gen > e.dirtyAfter {
					e.dirtyAfter = gen
				}
				if e.state == tileValid {
					e.state = tileStale
				}
			}
		}
		s.mu.Unlock()
	}
}

// len returns the number of cached entries, for tests and stats.
func (c *tileCache) len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}
