package tiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressValid(t *testing.T) {
	assert.True(t, Address{Z: 0, X: 0, Y: 0}.Valid())
	assert.True(t, Address{Z: 3, X: 7, Y: 7}.Valid())
	assert.False(t, Address{Z: 3, X: 8, Y: 0}.Valid())
	assert.False(t, Address{Z: 3, X: 0, Y: -1}.Valid())
	assert.False(t, Address{Z: -1, X: 0, Y: 0}.Valid())
}

func TestAddressString(t *testing.T) {
	assert.Equal(t, "5/9/12", Address{Z: 5, X: 9, Y: 12}.String())
}

func TestCoverStaysInGrid(t *testing.T) {
	for zoom := 1; zoom <= 10; zoom++ {
		for _, lat := range []float64{-85, -40, 0, 48.8566, 85} {
			for _, lng := range []float64{-179.9, -60, 0, 2.3522, 179.9} {
				r := Cover(lat, lng, zoom, 1024, 768)
				maxCoord := 1 << zoom

				assert.GreaterOrEqual(t, r.MinX, 0)
				assert.GreaterOrEqual(t, r.MinY, 0)
				assert.Less(t, r.MaxX, maxCoord)
				assert.Less(t, r.MaxY, maxCoord)

				r.Each(zoom, func(a Address) {
					assert.True(t, a.Valid(), "%s out of range", a)
				})
			}
		}
	}
}

func TestCoverPadsByOneTile(t *testing.T) {
	// At zoom 5 a 512x512 viewport off a tile boundary touches three tile
	// columns and rows; padding widens that to five away from the grid edge.
	r := Cover(48.8566, 2.3522, 5, 512, 512)

	assert.Equal(t, 5, r.MaxX-r.MinX+1)
	assert.Equal(t, 5, r.MaxY-r.MinY+1)
}

func TestLayerURL(t *testing.T) {
	l := Layer{
		URLTemplate: "https://{s}.tiles.example.com/{z}/{x}/{y}.png",
		Subdomains:  []string{"a", "b", "c"},
	}

	assert.Equal(t, "https://a.tiles.example.com/3/1/2.png", l.URL(Address{Z: 3, X: 1, Y: 2}))
	assert.Equal(t, "https://b.tiles.example.com/3/2/2.png", l.URL(Address{Z: 3, X: 2, Y: 2}))
	assert.Equal(t, "https://c.tiles.example.com/3/3/2.png", l.URL(Address{Z: 3, X: 3, Y: 2}))
}

func TestDefaultLayerURL(t *testing.T) {
	l := DefaultLayer()
	assert.Equal(t, "https://tile.openstreetmap.org/7/63/42.png", l.URL(Address{Z: 7, X: 63, Y: 42}))
}

func TestPlanCapsLoadsPerFrame(t *testing.T) {
	c := NewCache()
	layer := DefaultLayer()

	planned := c.Plan(layer, 48.8566, 2.3522, 10, 1024, 768)

	assert.Len(t, planned, DefaultLoadsPerFrame)
	assert.Equal(t, DefaultLoadsPerFrame, c.Pending())
}

func TestPlanSkipsInFlightAndResident(t *testing.T) {
	c := NewCache()
	layer := DefaultLayer()

	first := c.Plan(layer, 0, 0, 6, 512, 512)
	require.Len(t, first, 3)

	// One completes, the rest stay in flight.
	require.True(t, c.Complete(first[0], "tex"))

	second := c.Plan(layer, 0, 0, 6, 512, 512)
	for _, a := range second {
		assert.NotContains(t, first, a)
	}
}

func TestPlanRejectsOutOfRangeZoom(t *testing.T) {
	c := NewCache()
	layer := DefaultLayer()
	layer.MaxZoom = 5

	assert.Nil(t, c.Plan(layer, 0, 0, 6, 512, 512))
	assert.Zero(t, c.Pending())
}

func TestCompleteIgnoresUnplanned(t *testing.T) {
	c := NewCache()

	applied := c.Complete(Address{Z: 4, X: 1, Y: 1}, "tex")

	assert.False(t, applied)
	assert.Zero(t, c.Len())
}

func TestFailAllowsReplan(t *testing.T) {
	c := NewCache()
	layer := DefaultLayer()

	planned := c.Plan(layer, 0, 0, 6, 256, 256)
	require.NotEmpty(t, planned)

	c.Fail(planned[0])

	replanned := c.Plan(layer, 0, 0, 6, 256, 256)
	assert.Contains(t, replanned, planned[0])
}

func TestEvictDropsOtherZoomsAndOldest(t *testing.T) {
	c := NewCacheWithCapacity(4)

	for x := 0; x < 3; x++ {
		a := Address{Z: 5, X: x, Y: 0}
		c.requested[a] = struct{}{}
		require.True(t, c.Complete(a, x))
	}
	for x := 0; x < 6; x++ {
		a := Address{Z: 6, X: x, Y: 0}
		c.requested[a] = struct{}{}
		require.True(t, c.Complete(a, x))
	}

	c.Evict(6)

	assert.Equal(t, 4, c.Len())
	for _, key := range c.resident.Keys() {
		a := key.(Address)
		assert.Equal(t, 6, a.Z, "only current zoom survives eviction")
	}
	// Oldest current-zoom tiles went first.
	_, ok := c.Get(Address{Z: 6, X: 0, Y: 0})
	assert.False(t, ok)
	_, ok = c.Get(Address{Z: 6, X: 5, Y: 0})
	assert.True(t, ok)
}

func TestEvictPrunesRequestSet(t *testing.T) {
	c := NewCache()

	for x := 0; x < 40; x++ {
		c.requested[Address{Z: 3, X: x % 8, Y: x / 8}] = struct{}{}
	}
	for x := 0; x < 30; x++ {
		c.requested[Address{Z: 4, X: x, Y: 0}] = struct{}{}
	}
	require.Greater(t, c.Pending(), DefaultMaxRequested)

	c.Evict(4)

	assert.Equal(t, 30, c.Pending())
	for a := range c.requested {
		assert.Equal(t, 4, a.Z)
	}
}

func TestCompletionAfterEvictIsIgnored(t *testing.T) {
	c := NewCache()
	layer := DefaultLayer()

	planned := c.Plan(layer, 0, 0, 6, 512, 512)
	require.NotEmpty(t, planned)

	// Prune everything by switching zoom with an oversized request set.
	for x := 0; x < DefaultMaxRequested+1; x++ {
		c.requested[Address{Z: 6, X: x % 64, Y: x / 64}] = struct{}{}
	}
	c.Evict(9)

	assert.False(t, c.Complete(planned[0], "tex"))
	assert.Zero(t, c.Len())
}
