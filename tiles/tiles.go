// Package tiles manages slippy map raster tiles: which addresses cover a
// viewport, which are resident or in flight, and when loaded tiles get
// evicted. It is frame driven and single threaded; fetch results arrive on a
// channel and are applied by the owner's tick.
package tiles

import (
	"fmt"
	"math"
	"strings"

	"github.com/slipway-maps/slipway/proj"
)

// Address uniquely identifies a map tile.
type Address struct {
	Z, X, Y int
}

// Valid reports whether the address lies inside the tile grid of its zoom.
func (a Address) Valid() bool {
	if a.Z < 0 || a.Z > proj.MaxZoom {
		return false
	}
	maxCoord := 1 << a.Z
	return a.X >= 0 && a.X < maxCoord && a.Y >= 0 && a.Y < maxCoord
}

func (a Address) String() string {
	return fmt.Sprintf("%d/%d/%d", a.Z, a.X, a.Y)
}

// Range is the inclusive grid of tiles covering a viewport.
type Range struct {
	MinX, MaxX int
	MinY, MaxY int
}

// Each visits every address in the range at the given zoom, row by row.
func (r Range) Each(zoom int, fn func(Address)) {
	for ty := r.MinY; ty <= r.MaxY; ty++ {
		for tx := r.MinX; tx <= r.MaxX; tx++ {
			fn(Address{Z: zoom, X: tx, Y: ty})
		}
	}
}

// Cover computes the tile range for a centered viewport, padded by one tile
// on every side and clamped to the grid.
func Cover(centerLat, centerLng float64, zoom, width, height int) Range {
	centerX, centerY := proj.TileFloat(centerLat, centerLng, zoom)

	halfW := float64(width) / 2.0 / proj.TileSize
	halfH := float64(height) / 2.0 / proj.TileSize

	minX := int(math.Floor(centerX-halfW)) - 1
	minY := int(math.Floor(centerY-halfH)) - 1
	maxX := int(math.Floor(centerX+halfW)) + 1
	maxY := int(math.Floor(centerY+halfH)) + 1

	maxCoord := 1 << zoom
	return Range{
		MinX: maxInt(0, minX),
		MaxX: minInt(maxCoord-1, maxX),
		MinY: maxInt(0, minY),
		MaxY: minInt(maxCoord-1, maxY),
	}
}

// Layer describes a raster tile source.
type Layer struct {
	URLTemplate string
	Subdomains  []string
	MinZoom     int
	MaxZoom     int
}

// DefaultLayer is the public OpenStreetMap raster source.
func DefaultLayer() Layer {
	return Layer{
		URLTemplate: "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Subdomains:  []string{"a", "b", "c"},
		MinZoom:     0,
		MaxZoom:     19,
	}
}

// URL expands the layer template for one address. The {s} placeholder
// rotates through the subdomains keyed on tile position, so neighboring
// tiles spread across hosts.
func (l Layer) URL(a Address) string {
	url := l.URLTemplate
	if strings.Contains(url, "{s}") && len(l.Subdomains) > 0 {
		sub := l.Subdomains[(a.X+a.Y)%len(l.Subdomains)]
		url = strings.ReplaceAll(url, "{s}", sub)
	}
	url = strings.ReplaceAll(url, "{z}", fmt.Sprintf("%d", a.Z))
	url = strings.ReplaceAll(url, "{x}", fmt.Sprintf("%d", a.X))
	url = strings.ReplaceAll(url, "{y}", fmt.Sprintf("%d", a.Y))
	return url
}

// InZoomRange reports whether the layer serves tiles at the given zoom.
func (l Layer) InZoomRange(zoom int) bool {
	return zoom >= l.MinZoom && zoom <= l.MaxZoom
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
