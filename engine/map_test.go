package engine

import (
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipway-maps/slipway/layer"
	"github.com/slipway-maps/slipway/render"
	"github.com/slipway-maps/slipway/tiles"
)

type fakeRenderer struct {
	textures   int
	tileDraws  int
	pointVerts int
	lineDraws  int
	triDraws   int
	uploads    int
	bufDraws   int
}

func (r *fakeRenderer) CreateTexture(img image.Image) (render.Texture, error) {
	r.textures++
	return img, nil
}

func (r *fakeRenderer) DrawTile(tex render.Texture, x, y float64) { r.tileDraws++ }

func (r *fakeRenderer) DrawPoints(verts []float32) { r.pointVerts += len(verts) / 7 }

func (r *fakeRenderer) DrawLines(verts []float32, width float32) { r.lineDraws++ }

func (r *fakeRenderer) DrawTriangles(verts []float32) { r.triDraws++ }

func (r *fakeRenderer) UploadTriangles(verts []float32) (render.Buffer, error) {
	r.uploads++
	return len(verts), nil
}

func (r *fakeRenderer) DrawBuffer(buf render.Buffer) { r.bufDraws++ }

type fakeFetcher struct {
	started []tiles.Address
	queue   []tiles.Completion
}

func (f *fakeFetcher) Fetch(l tiles.Layer, a tiles.Address) {
	f.started = append(f.started, a)
}

func (f *fakeFetcher) Drain(apply func(tiles.Completion)) {
	for _, c := range f.queue {
		apply(c)
	}
	f.queue = nil
}

func newTestMap() (*Map, *fakeRenderer, *fakeFetcher) {
	r := &fakeRenderer{}
	f := &fakeFetcher{}
	m := New(Config{
		Width:    800,
		Height:   600,
		Lat:      0,
		Lng:      0,
		Zoom:     3,
		Renderer: r,
		Fetcher:  f,
	})
	return m, r, f
}

func TestTickPlansTiles(t *testing.T) {
	m, _, f := newTestMap()

	m.Tick(time.Now())

	assert.Len(t, f.started, tiles.DefaultLoadsPerFrame)
	for _, a := range f.started {
		assert.Equal(t, 3, a.Z)
		assert.True(t, a.Valid())
	}
}

func TestTileCompletionIsRendered(t *testing.T) {
	m, r, f := newTestMap()
	now := time.Now()

	m.Tick(now)
	require.NotEmpty(t, f.started)

	img := image.NewRGBA(image.Rect(0, 0, 256, 256))
	for _, a := range f.started {
		f.queue = append(f.queue, tiles.Completion{Addr: a, Image: img})
	}
	started := len(f.started)
	m.Tick(now.Add(16 * time.Millisecond))

	assert.Equal(t, started, r.textures)

	m.Render()
	assert.Equal(t, started, r.tileDraws)
}

func TestFailedTileIsNotCached(t *testing.T) {
	m, r, f := newTestMap()
	now := time.Now()

	m.Tick(now)
	require.NotEmpty(t, f.started)

	f.queue = append(f.queue, tiles.Completion{Addr: f.started[0], Err: assert.AnError})
	m.Tick(now.Add(16 * time.Millisecond))

	assert.Zero(t, r.textures)
	// The failed address is free to be planned again.
	assert.Contains(t, f.started[1:], f.started[0])
}

func TestClickHitsPointFeature(t *testing.T) {
	m, _, _ := newTestMap()
	m.AddPointLayer([]layer.PointFeature{
		{Lat: 0, Lng: 0, Size: 5, Meta: map[string]any{"name": "origin"}},
	})

	var clicked *Event
	m.On(EventClick, func(ev Event) { clicked = &ev })

	x, y := m.Project(0, 0)
	now := time.Now()
	m.HandleMouseDown(x, y, now)
	m.HandleMouseUp(x+1, y-1, now.Add(80*time.Millisecond))

	require.NotNil(t, clicked)
	require.NotNil(t, clicked.Hit)
	assert.Equal(t, HitSourcePoints, clicked.Hit.Source)
	assert.Equal(t, "origin", clicked.Hit.Meta["name"])
}

func TestClickOnGeoJSONFeatureCarriesProperties(t *testing.T) {
	m, _, _ := newTestMap()

	doc := `{"type": "Feature", "geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": {"name": "origin"}}`
	handle, err := m.AddGeoJSON([]byte(doc))
	require.NoError(t, err)

	var clicked *Event
	m.On(EventClick, func(ev Event) { clicked = &ev })

	x, y := m.Project(0, 0)
	now := time.Now()
	m.HandleMouseDown(x, y, now)
	m.HandleMouseUp(x, y, now.Add(60*time.Millisecond))

	require.NotNil(t, clicked)
	require.NotNil(t, clicked.Hit)
	assert.Equal(t, HitSourceGeoJSON, clicked.Hit.Source)
	assert.Equal(t, handle, clicked.Hit.Layer)
	assert.Equal(t, 0, clicked.Hit.Feature)
	assert.Equal(t, "origin", clicked.Hit.Meta["name"])
}

func TestClickMissReportsNoHit(t *testing.T) {
	m, _, _ := newTestMap()
	m.AddPointLayer([]layer.PointFeature{{Lat: 0, Lng: 0}})

	var clicked *Event
	m.On(EventClick, func(ev Event) { clicked = &ev })

	x, y := m.Project(0, 0)
	now := time.Now()
	m.HandleMouseDown(x+200, y+200, now)
	m.HandleMouseUp(x+200, y+200, now.Add(50*time.Millisecond))

	require.NotNil(t, clicked)
	assert.Nil(t, clicked.Hit)
}

func TestDragPansWithoutClick(t *testing.T) {
	m, _, _ := newTestMap()

	var clicks, dragEnds, moves int
	m.On(EventClick, func(Event) { clicks++ })
	m.On(EventDragEnd, func(Event) { dragEnds++ })
	m.On(EventMove, func(Event) { moves++ })

	_, lngBefore := m.Center()
	now := time.Now()
	m.HandleMouseDown(400, 300, now)
	for i := 1; i <= 5; i++ {
		m.HandleMouseMove(400+float64(i)*20, 300, now.Add(time.Duration(i)*16*time.Millisecond))
	}
	m.HandleMouseUp(500, 300, now.Add(100*time.Millisecond))

	_, lngAfter := m.Center()
	assert.Less(t, lngAfter, lngBefore, "dragging east should reveal west")
	assert.Zero(t, clicks)
	assert.Equal(t, 1, dragEnds)
	assert.NotZero(t, moves)
}

func TestMomentumContinuesAfterFling(t *testing.T) {
	m, _, _ := newTestMap()
	now := time.Now()
	m.Tick(now)

	m.HandleMouseDown(400, 300, now)
	for i := 1; i <= 10; i++ {
		m.HandleMouseMove(400+float64(i)*20, 300, now.Add(time.Duration(i)*16*time.Millisecond))
	}
	m.HandleMouseUp(600, 300, now.Add(160*time.Millisecond))

	_, lngAfterRelease := m.Center()
	m.Tick(now.Add(176 * time.Millisecond))
	_, lngAfterTick := m.Center()

	assert.Less(t, lngAfterTick, lngAfterRelease, "fling should keep panning the same way")
}

func TestSetViewCancelsMomentum(t *testing.T) {
	m, _, _ := newTestMap()
	now := time.Now()
	m.Tick(now)

	m.HandleMouseDown(400, 300, now)
	for i := 1; i <= 10; i++ {
		m.HandleMouseMove(400+float64(i)*20, 300, now.Add(time.Duration(i)*16*time.Millisecond))
	}
	m.HandleMouseUp(600, 300, now.Add(160*time.Millisecond))

	m.SetView(10, 10, 5)
	m.Tick(now.Add(176 * time.Millisecond))

	lat, lng := m.Center()
	assert.InDelta(t, 10, lat, 1e-9)
	assert.InDelta(t, 10, lng, 1e-9)
}

func TestWheelZoomFiresZoomEvent(t *testing.T) {
	m, _, _ := newTestMap()

	var zooms int
	m.On(EventZoom, func(Event) { zooms++ })

	before := m.Zoom()
	m.HandleWheel(100, 100, -1)

	assert.Equal(t, before+1, m.Zoom())
	assert.Equal(t, 1, zooms)
}

func TestHoverReportsFeature(t *testing.T) {
	m, _, _ := newTestMap()
	m.AddLineLayer([]layer.LineFeature{
		{Points: [][2]float64{{0, -10}, {0, 10}}, Width: 2, Meta: map[string]any{"id": "equator"}},
	})

	var hover *Event
	m.On(EventHover, func(ev Event) { hover = &ev })

	x, y := m.Project(0, 0)
	m.HandleMouseMove(x, y, time.Now())

	require.NotNil(t, hover)
	require.NotNil(t, hover.Hit)
	assert.Equal(t, HitSourceLines, hover.Hit.Source)
	assert.Equal(t, "equator", hover.Hit.Meta["id"])
}

func TestHiddenLayerIsNotHit(t *testing.T) {
	m, _, _ := newTestMap()
	h := m.AddPointLayer([]layer.PointFeature{{Lat: 0, Lng: 0}})
	require.NoError(t, m.SetPointLayerVisible(h, false))

	var hover *Event
	m.On(EventHover, func(ev Event) { hover = &ev })

	x, y := m.Project(0, 0)
	m.HandleMouseMove(x, y, time.Now())

	require.NotNil(t, hover)
	assert.Nil(t, hover.Hit)
}

func TestOnOff(t *testing.T) {
	m, _, _ := newTestMap()

	var fired int
	id := m.On(EventMove, func(Event) { fired++ })

	m.Pan(10, 0)
	require.Equal(t, 1, fired)

	assert.True(t, m.Off(EventMove, id))
	assert.False(t, m.Off(EventMove, id))

	m.Pan(10, 0)
	assert.Equal(t, 1, fired)
}

func TestGeoJSONLayerLifecycle(t *testing.T) {
	m, _, _ := newTestMap()

	doc := `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [2.3522, 48.8566]}, "properties": {}},
		{"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[0,0],[4,0],[4,4],[0,4],[0,0]]]}, "properties": {}}
	]}`

	handle, err := m.AddGeoJSON([]byte(doc))
	require.NoError(t, err)

	count, err := m.GeoJSONFeatureCount(handle)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	style := layer.DefaultStyle()
	style.PointColor = layer.Color{1, 0, 0, 1}
	require.NoError(t, m.SetGeoJSONStyle(handle, style))

	require.NoError(t, m.ClearGeoJSONLayer(handle))
	count, err = m.GeoJSONFeatureCount(handle)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = m.GeoJSONFeatureCount(handle + 1)
	assert.ErrorIs(t, err, layer.ErrLayerIndex)
}

func TestChunkedGeoJSONSharesHandle(t *testing.T) {
	m, _, _ := newTestMap()

	doc := []byte(`{"type": "FeatureCollection", "features": [
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [1, 1]}, "properties": {}},
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [2, 2]}, "properties": {}}
	]}`)
	cut := len(doc) / 2

	h1 := m.AddGeoJSONChunk(doc[:cut], false)
	h2 := m.AddGeoJSONChunk(doc[cut:], true)

	assert.Equal(t, h1, h2)
	count, err := m.GeoJSONFeatureCount(h1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// A later stream gets a fresh layer.
	h3 := m.AddGeoJSONChunk([]byte(`{"type": "Feature", "geometry": {"type": "Point", "coordinates": [3, 3]}, "properties": {}}`), true)
	assert.NotEqual(t, h1, h3)
}

func TestRenderDrawsOverlays(t *testing.T) {
	m, r, _ := newTestMap()

	m.AddPointLayer([]layer.PointFeature{{Lat: 0, Lng: 0, Size: 4}})
	m.AddLineLayer([]layer.LineFeature{{Points: [][2]float64{{0, 0}, {5, 5}}, Width: 2}})
	m.AddPolygonLayer([]layer.PolygonFeature{{Rings: [][][2]float64{{{0, 0}, {5, 0}, {5, 5}, {0, 5}}}}})

	m.Render()

	assert.Equal(t, 1, r.pointVerts)
	assert.Equal(t, 1, r.lineDraws)
	assert.Equal(t, 1, r.triDraws)
}

func TestGeoJSONFillBufferReuse(t *testing.T) {
	m, r, _ := newTestMap()

	doc := `{"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[0,0],[4,0],[4,4],[0,4],[0,0]]]}, "properties": {}}`
	_, err := m.AddGeoJSON([]byte(doc))
	require.NoError(t, err)

	m.Render()
	m.Render()
	assert.Equal(t, 1, r.uploads, "static view should upload once")
	assert.Equal(t, 2, r.bufDraws)

	m.Pan(32, 0)
	m.Render()
	assert.Equal(t, 2, r.uploads, "view change forces a new upload")
}

func TestAddPointsExtendsLayerAndIndex(t *testing.T) {
	m, _, _ := newTestMap()

	handle := m.AddPointLayer([]layer.PointFeature{{Lat: 10, Lng: 10, Size: 4}})

	x, y := m.Project(0, 0)
	require.Nil(t, m.HitTest(x, y))

	err := m.AddPoints(handle, []layer.PointFeature{
		{Lat: 0, Lng: 0, Size: 4, Meta: map[string]any{"name": "late"}},
	})
	require.NoError(t, err)

	hit := m.HitTest(x, y)
	require.NotNil(t, hit)
	assert.Equal(t, HitSourcePoints, hit.Source)
	assert.Equal(t, handle, hit.Layer)
	assert.Equal(t, 1, hit.Feature)
	assert.Equal(t, "late", hit.Meta["name"])

	assert.Error(t, m.AddPoints(99, nil))
	assert.Error(t, m.AddLines(99, nil))
	assert.Error(t, m.AddPolygons(99, nil))
}

func TestAddLinesExtendsLayer(t *testing.T) {
	m, _, _ := newTestMap()

	handle := m.AddLineLayer(nil)
	err := m.AddLines(handle, []layer.LineFeature{
		{Points: [][2]float64{{0, -5}, {0, 5}}, Width: 2},
	})
	require.NoError(t, err)

	x, y := m.Project(0, 0)
	hit := m.HitTest(x, y)
	require.NotNil(t, hit)
	assert.Equal(t, HitSourceLines, hit.Source)
	assert.Equal(t, 0, hit.Feature)
	assert.Equal(t, 0, hit.Segment)
}

func TestAddGeoJSONLayerStartsEmpty(t *testing.T) {
	m, _, _ := newTestMap()

	handle := m.AddGeoJSONLayer()
	count, err := m.GeoJSONFeatureCount(handle)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestConfigCoordinatesApplyWithoutZoom(t *testing.T) {
	m := New(Config{
		Width:    800,
		Height:   600,
		Lat:      51.5072,
		Lng:      -0.1276,
		Renderer: &fakeRenderer{},
		Fetcher:  &fakeFetcher{},
	})

	lat, lng := m.Center()
	assert.InDelta(t, 51.5072, lat, 1e-9)
	assert.InDelta(t, -0.1276, lng, 1e-9)
	assert.Equal(t, 2.0, m.Zoom(), "zoom keeps the viewport default")
}
