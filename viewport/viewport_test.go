package viewport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetViewClampsZoom(t *testing.T) {
	v := New(800, 600)

	v.SetView(10, 20, 30)
	assert.Equal(t, MaxZoom, v.Zoom())

	v.SetView(10, 20, -3)
	assert.Equal(t, MinZoom, v.Zoom())

	lat, lng := v.Center()
	assert.Equal(t, 10.0, lat)
	assert.Equal(t, 20.0, lng)
}

func TestZoomInOutBounds(t *testing.T) {
	v := New(800, 600)

	v.SetView(0, 0, MaxZoom)
	assert.False(t, v.ZoomIn(), "zoom in at max must be a no-op")
	assert.Equal(t, MaxZoom, v.Zoom())

	v.SetView(0, 0, MinZoom)
	assert.False(t, v.ZoomOut(), "zoom out at min must be a no-op")
	assert.Equal(t, MinZoom, v.Zoom())

	v.SetView(0, 0, 5)
	assert.True(t, v.ZoomIn())
	assert.Equal(t, 6.0, v.Zoom())
	assert.True(t, v.ZoomOut())
	assert.Equal(t, 5.0, v.Zoom())
}

// Panning right by a positive dx reveals territory to the west: the center
// longitude must move negative while latitude stays put.
func TestPanRightMovesWest(t *testing.T) {
	v := New(800, 600)
	v.SetView(0, 0, 3)

	before := v.Bounds()
	require.True(t, v.Pan(256, 0))
	after := v.Bounds()

	lat, lng := v.Center()
	assert.Less(t, lng, 0.0)
	assert.InDelta(t, 0.0, lat, 1e-9)

	// Only longitude may differ between the two bounds.
	assert.InDelta(t, before[0], after[0], 1e-9, "swLat must not change")
	assert.InDelta(t, before[2], after[2], 1e-9, "neLat must not change")
	assert.Greater(t, math.Abs(before[1]-after[1]), 1e-9, "swLng must change")
	assert.Greater(t, math.Abs(before[3]-after[3]), 1e-9, "neLng must change")
}

func TestPanWrapsLongitude(t *testing.T) {
	v := New(800, 600)
	v.SetView(0, 179.9, 3)

	// Drag west, revealing east far enough to cross the antimeridian.
	require.True(t, v.Pan(-512, 0))
	_, lng := v.Center()
	assert.GreaterOrEqual(t, lng, -180.0)
	assert.LessOrEqual(t, lng, 180.0)
	assert.Less(t, lng, 0.0, "crossing east over +180 wraps to negative longitude")
}

func TestPanClampsLatitude(t *testing.T) {
	v := New(800, 600)
	v.SetView(85.0, 0, 2)

	// Drag down hard: the view moves north and must stop at the clamp.
	require.True(t, v.Pan(0, 100000))
	lat, _ := v.Center()
	assert.LessOrEqual(t, lat, 85.05112878+1e-9)
}

func TestProjectUnprojectScreenRoundTrip(t *testing.T) {
	v := New(800, 600)
	v.SetView(41.89, 12.49, 9)

	for _, p := range [][2]float64{{400, 300}, {0, 0}, {799, 599}, {123, 456}} {
		lat, lng := v.Unproject(p[0], p[1])
		x, y := v.Project(lat, lng)
		assert.InDelta(t, p[0], x, 1e-6)
		assert.InDelta(t, p[1], y, 1e-6)
	}
}

func TestFitBoundsRejectsMalformedInput(t *testing.T) {
	v := New(800, 600)
	v.SetView(1, 2, 3)

	tests := []struct {
		name   string
		bounds []float64
	}{
		{"wrong arity", []float64{10, 10, 20}},
		{"lat out of range", []float64{-91, 10, 20, 20}},
		{"lng out of range", []float64{10, -181, 20, 20}},
		{"ne lat not above sw", []float64{20, 10, 10, 20}},
		{"ne lng not above sw", []float64{10, 20, 20, 10}},
		{"non-finite", []float64{10, 10, math.NaN(), 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.FitBounds(tt.bounds)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBadBounds)

			// Rejection must leave the view untouched.
			lat, lng := v.Center()
			assert.Equal(t, 1.0, lat)
			assert.Equal(t, 2.0, lng)
			assert.Equal(t, 3.0, v.Zoom())
		})
	}
}

func TestFitBoundsSelectsTightestZoom(t *testing.T) {
	v := New(800, 600)

	require.NoError(t, v.FitBounds([]float64{10, 10, 20, 20}))

	zoom := v.Zoom()
	assert.Equal(t, zoom, math.Trunc(zoom), "fit zoom must be an integer")

	lat, lng := v.Center()
	assert.InDelta(t, 15.0, lat, 1e-9)
	assert.InDelta(t, 15.0, lng, 1e-9)

	// The selected zoom contains the bounds...
	b := v.Bounds()
	assert.LessOrEqual(t, b[0], 10.0)
	assert.LessOrEqual(t, b[1], 10.0)
	assert.GreaterOrEqual(t, b[2], 20.0)
	assert.GreaterOrEqual(t, b[3], 20.0)

	// ...and one level higher does not.
	if zoom < MaxZoom {
		v.SetView(15, 15, zoom+1)
		b = v.Bounds()
		contained := b[0] <= 10 && b[1] <= 10 && b[2] >= 20 && b[3] >= 20
		assert.False(t, contained, "zoom %v should have been too tight", zoom+1)
	}
}

func TestZoomAtPointKeepsAnchor(t *testing.T) {
	v := New(800, 600)
	v.SetView(48.85, 2.35, 8)

	anchorLat, anchorLng := v.Unproject(600, 150)
	require.True(t, v.ZoomAtPoint(true, 600, 150))

	x, y := v.Project(anchorLat, anchorLng)
	assert.InDelta(t, 600, x, 0.5)
	assert.InDelta(t, 150, y, 0.5)
}
