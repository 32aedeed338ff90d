package tiles

import (
	lru "github.com/hashicorp/golang-lru"
)

const (
	// DefaultCapacity is how many decoded tiles stay resident.
	DefaultCapacity = 20

	// DefaultMaxRequested bounds the in-flight request set before pruning.
	DefaultMaxRequested = 50

	// DefaultLoadsPerFrame caps new fetches started by a single Plan call.
	DefaultLoadsPerFrame = 3
)

// Cache tracks resident tile textures and in-flight requests. It is not
// goroutine safe; the owner applies fetch completions and runs eviction from
// its own tick.
type Cache struct {
	resident  *lru.Cache
	requested map[Address]struct{}

	capacity      int
	maxRequested  int
	loadsPerFrame int
}

// NewCache builds a cache with the default capacity and request limits.
func NewCache() *Cache {
	return NewCacheWithCapacity(DefaultCapacity)
}

// NewCacheWithCapacity builds a cache keeping at most capacity tiles
// resident after each Evict pass.
func NewCacheWithCapacity(capacity int) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	// Headroom above capacity so completions landing between Evict passes
	// never force the LRU to drop tiles on its own.
	backing, err := lru.New(capacity + DefaultMaxRequested)
	if err != nil {
		panic(err)
	}
	return &Cache{
		resident:      backing,
		requested:     make(map[Address]struct{}),
		capacity:      capacity,
		maxRequested:  DefaultMaxRequested,
		loadsPerFrame: DefaultLoadsPerFrame,
	}
}

// Get returns the resident texture for an address and refreshes its
// recency.
func (c *Cache) Get(a Address) (any, bool) {
	return c.resident.Get(a)
}

// Loading reports whether a fetch for the address is in flight.
func (c *Cache) Loading(a Address) bool {
	_, ok := c.requested[a]
	return ok
}

// Len is the number of resident tiles.
func (c *Cache) Len() int {
	return c.resident.Len()
}

// Pending is the number of in-flight requests.
func (c *Cache) Pending() int {
	return len(c.requested)
}

// Plan returns the addresses to start fetching this frame: tiles in the
// padded cover of the viewport that are neither resident nor in flight,
// capped at the per-frame load limit. Returned addresses are marked as
// requested.
func (c *Cache) Plan(layer Layer, centerLat, centerLng float64, zoom, width, height int) []Address {
	if !layer.InZoomRange(zoom) {
		return nil
	}

	var planned []Address
	Cover(centerLat, centerLng, zoom, width, height).Each(zoom, func(a Address) {
		if len(planned) >= c.loadsPerFrame {
			return
		}
		if !a.Valid() || c.resident.Contains(a) || c.Loading(a) {
			return
		}
		c.requested[a] = struct{}{}
		planned = append(planned, a)
	})
	return planned
}

// Complete applies a finished fetch. It reports false when the request was
// pruned or never planned, in which case the texture is dropped.
func (c *Cache) Complete(a Address, texture any) bool {
	if !c.Loading(a) {
		return false
	}
	delete(c.requested, a)
	c.resident.Add(a, texture)
	return true
}

// Fail drops a request so the address can be planned again later.
func (c *Cache) Fail(a Address) {
	delete(c.requested, a)
}

// Evict enforces the cache policy for the current zoom: resident tiles from
// other zooms go first, then the oldest tiles beyond capacity. An oversized
// request set is pruned down to entries at the current zoom.
func (c *Cache) Evict(zoom int) {
	for _, key := range c.resident.Keys() {
		if a, ok := key.(Address); ok && a.Z != zoom {
			c.resident.Remove(key)
		}
	}
	for c.resident.Len() > c.capacity {
		c.resident.RemoveOldest()
	}

	if len(c.requested) > c.maxRequested {
		for a := range c.requested {
			if a.Z != zoom {
				delete(c.requested, a)
			}
		}
	}
}
