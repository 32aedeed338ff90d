// Package viewport owns the map view state: center coordinate, fractional
// zoom, and pixel size. All mutation goes through the operations defined
// here; callers never write the fields directly.
package viewport

import (
	"math"

	"github.com/pkg/errors"

	"github.com/slipway-maps/slipway/proj"
)

// Default view constants
const (
	DefaultLat  = 48.8566
	DefaultLng  = 2.3522
	DefaultZoom = 2.0
	MinZoom     = 1.0
	MaxZoom     = 18.0
)

// ErrBadBounds reports malformed input to FitBounds.
var ErrBadBounds = errors.New("bounds must be [swLat, swLng, neLat, neLng]")

// Viewport holds the current view over the map. Zoom is real-valued for
// smooth zoom animation; tile math always goes through TileZoom.
type Viewport struct {
	Width  int
	Height int

	centerLat float64
	centerLng float64
	zoom      float64

	minZoom float64
	maxZoom float64
}

// New creates a Viewport with the default center and zoom bounds.
func New(width, height int) *Viewport {
	return &Viewport{
		Width:     width,
		Height:    height,
		centerLat: DefaultLat,
		centerLng: DefaultLng,
		zoom:      DefaultZoom,
		minZoom:   MinZoom,
		maxZoom:   MaxZoom,
	}
}

// Center returns the current center coordinate.
func (v *Viewport) Center() (lat, lng float64) {
	return v.centerLat, v.centerLng
}

// Zoom returns the current fractional zoom level.
func (v *Viewport) Zoom() float64 {
	return v.zoom
}

// TileZoom returns the integer zoom used for the tile grid and all
// world-pixel math.
func (v *Viewport) TileZoom() int {
	return int(math.Round(v.zoom))
}

// SetZoomBounds adjusts the allowed zoom range and re-clamps the current
// zoom into it.
func (v *Viewport) SetZoomBounds(min, max float64) {
	if min > max {
		return
	}
	v.minZoom = min
	v.maxZoom = max
	v.zoom = v.clampZoom(v.zoom)
}

func (v *Viewport) clampZoom(zoom float64) float64 {
	return math.Max(v.minZoom, math.Min(v.maxZoom, zoom))
}

// SetView jumps the viewport to the given center and zoom. Zoom is clamped
// into the configured bounds; the latitude is clamped by the projection on
// use, not here.
func (v *Viewport) SetView(lat, lng, zoom float64) {
	v.centerLat = lat
	v.centerLng = lng
	v.zoom = v.clampZoom(zoom)
}

// Resize updates the pixel dimensions of the viewport.
func (v *Viewport) Resize(width, height int) {
	v.Width = width
	v.Height = height
}

// Pan moves the view by a screen-pixel delta. Positive dx means the pointer
// moved right, revealing territory to the west. The new center is clamped in
// latitude and wrapped in longitude; a non-finite result rejects the pan with
// no state mutated.
func (v *Viewport) Pan(dx, dy float64) bool {
	zoom := v.TileZoom()
	cx, cy := proj.Project(v.centerLat, v.centerLng, zoom)

	newLat, newLng := proj.Unproject(cx-dx, cy-dy, zoom)

	newLat = proj.ClampLatitude(newLat)
	newLng = proj.WrapLongitude(newLng)

	if !isFinite(newLat) || !isFinite(newLng) {
		return false
	}

	v.centerLat = newLat
	v.centerLng = newLng
	return true
}

// ZoomIn raises zoom by one level. A silent no-op at the upper bound.
func (v *Viewport) ZoomIn() bool {
	if v.zoom >= v.maxZoom {
		return false
	}
	v.zoom = v.clampZoom(v.zoom + 1)
	return true
}

// ZoomOut lowers zoom by one level. A silent no-op at the lower bound.
func (v *Viewport) ZoomOut() bool {
	if v.zoom <= v.minZoom {
		return false
	}
	v.zoom = v.clampZoom(v.zoom - 1)
	return true
}

// ZoomAtPoint changes zoom by one level while keeping the world point under
// the given screen position fixed on screen.
func (v *Viewport) ZoomAtPoint(zoomIn bool, screenX, screenY float64) bool {
	anchorLat, anchorLng := v.Unproject(screenX, screenY)

	var ok bool
	if zoomIn {
		ok = v.ZoomIn()
	} else {
		ok = v.ZoomOut()
	}
	if !ok {
		return false
	}

	// Re-center so the anchor projects back to the same screen position.
	zoom := v.TileZoom()
	ax, ay := proj.Project(anchorLat, anchorLng, zoom)
	cx := ax - (screenX - float64(v.Width)/2.0)
	cy := ay - (screenY - float64(v.Height)/2.0)

	lat, lng := proj.Unproject(cx, cy, zoom)
	v.centerLat = proj.ClampLatitude(lat)
	v.centerLng = proj.WrapLongitude(lng)
	return true
}

// Project converts a geographic coordinate to screen pixels under the current
// view.
func (v *Viewport) Project(lat, lng float64) (x, y float64) {
	zoom := v.TileZoom()
	cx, cy := proj.Project(v.centerLat, v.centerLng, zoom)
	px, py := proj.Project(lat, lng, zoom)

	x = px - cx + float64(v.Width)/2.0
	y = py - cy + float64(v.Height)/2.0
	return x, y
}

// Unproject converts a screen pixel position to a geographic coordinate under
// the current view.
func (v *Viewport) Unproject(x, y float64) (lat, lng float64) {
	zoom := v.TileZoom()
	cx, cy := proj.Project(v.centerLat, v.centerLng, zoom)

	wx := x - float64(v.Width)/2.0 + cx
	wy := y - float64(v.Height)/2.0 + cy

	return proj.Unproject(wx, wy, zoom)
}

// Bounds returns the visible extent as [swLat, swLng, neLat, neLng].
func (v *Viewport) Bounds() [4]float64 {
	return v.boundsAt(v.centerLat, v.centerLng, v.TileZoom())
}

func (v *Viewport) boundsAt(lat, lng float64, zoom int) [4]float64 {
	cx, cy := proj.Project(lat, lng, zoom)

	startX := cx - float64(v.Width)/2.0
	startY := cy - float64(v.Height)/2.0
	endX := cx + float64(v.Width)/2.0
	endY := cy + float64(v.Height)/2.0

	swLat, swLng := proj.Unproject(startX, endY, zoom)
	neLat, neLng := proj.Unproject(endX, startY, zoom)

	return [4]float64{swLat, swLng, neLat, neLng}
}

// FitBounds validates the requested extent, then moves the view to its center
// at the tightest integer zoom whose viewport fully contains it. Malformed
// input is rejected with no state mutated.
func (v *Viewport) FitBounds(bounds []float64) error {
	if len(bounds) != 4 {
		return errors.Wrapf(ErrBadBounds, "got %d values", len(bounds))
	}
	swLat, swLng, neLat, neLng := bounds[0], bounds[1], bounds[2], bounds[3]

	for _, b := range bounds {
		if !isFinite(b) {
			return errors.Wrap(ErrBadBounds, "non-finite value")
		}
	}
	if swLat < -90 || swLat > 90 || neLat < -90 || neLat > 90 {
		return errors.Wrap(ErrBadBounds, "latitude out of [-90, 90]")
	}
	if swLng < -180 || swLng > 180 || neLng < -180 || neLng > 180 {
		return errors.Wrap(ErrBadBounds, "longitude out of [-180, 180]")
	}
	if neLat <= swLat {
		return errors.Wrap(ErrBadBounds, "neLat must exceed swLat")
	}
	if neLng <= swLng {
		return errors.Wrap(ErrBadBounds, "neLng must exceed swLng")
	}

	centerLat := (swLat + neLat) / 2.0
	centerLng := (swLng + neLng) / 2.0

	zoom := v.fitZoom(swLat, swLng, neLat, neLng)
	v.SetView(centerLat, centerLng, zoom)
	return nil
}

// fitZoom searches from the maximum zoom down for the highest level whose
// full-viewport bounds still contain the requested extent.
func (v *Viewport) fitZoom(swLat, swLng, neLat, neLng float64) float64 {
	centerLat := (swLat + neLat) / 2.0
	centerLng := (swLng + neLng) / 2.0

	for zoom := int(v.maxZoom); zoom >= int(v.minZoom); zoom-- {
		b := v.boundsAt(centerLat, centerLng, zoom)
		if b[0] <= swLat && b[1] <= swLng && b[2] >= neLat && b[3] >= neLng {
			return float64(zoom)
		}
	}
	return v.minZoom
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
