// Package engine ties the map together: viewport math, momentum, tile
// lifecycle, overlay layers, hit testing, and event dispatch, all driven by
// a single goroutine calling Tick and Render once per frame.
package engine

import (
	"log"
	"time"

	"github.com/slipway-maps/slipway/geojson"
	"github.com/slipway-maps/slipway/layer"
	"github.com/slipway-maps/slipway/render"
	"github.com/slipway-maps/slipway/shape"
	"github.com/slipway-maps/slipway/spatial"
	"github.com/slipway-maps/slipway/tiles"
	"github.com/slipway-maps/slipway/viewport"
)

// Fetcher starts tile downloads and hands back completed ones. The HTTP
// implementation lives in the tiles package; tests substitute their own.
type Fetcher interface {
	Fetch(layer tiles.Layer, a tiles.Address)
	Drain(apply func(tiles.Completion))
}

// Config sets up a Map. Zero fields fall back to defaults: the Paris
// overview, the public OpenStreetMap layer, and an HTTP fetcher.
type Config struct {
	Width, Height  int
	Lat, Lng, Zoom float64
	TileLayer      tiles.Layer
	Renderer       render.Renderer
	Fetcher        Fetcher
}

// Map is the interactive map engine. It is not goroutine safe; every method
// must run on the frame goroutine.
type Map struct {
	view     *viewport.Viewport
	momentum viewport.Momentum

	tileLayer tiles.Layer
	cache     *tiles.Cache
	fetcher   Fetcher
	renderer  render.Renderer

	layers     layer.Store
	index      *spatial.Index
	hits       []hitInfo
	indexDirty bool

	stream *geojsonStream

	events dispatcher
	mouse  mouseState

	lastTick time.Time
}

type geojsonStream struct {
	buf    geojson.ChunkBuffer
	handle int
}

// New builds a Map from the config.
func New(cfg Config) *Map {
	m := &Map{
		view:       viewport.New(cfg.Width, cfg.Height),
		tileLayer:  cfg.TileLayer,
		cache:      tiles.NewCache(),
		fetcher:    cfg.Fetcher,
		renderer:   cfg.Renderer,
		index:      spatial.NewIndex(),
		indexDirty: true,
	}
	if m.tileLayer.URLTemplate == "" {
		m.tileLayer = tiles.DefaultLayer()
	}
	if m.fetcher == nil {
		m.fetcher = tiles.NewHTTPFetcher()
	}
	if cfg.Lat != 0 || cfg.Lng != 0 || cfg.Zoom != 0 {
		zoom := cfg.Zoom
		if zoom == 0 {
			zoom = m.view.Zoom()
		}
		m.view.SetView(cfg.Lat, cfg.Lng, zoom)
	}
	return m
}

// Center returns the view center in degrees.
func (m *Map) Center() (lat, lng float64) {
	return m.view.Center()
}

// Zoom returns the fractional zoom level.
func (m *Map) Zoom() float64 {
	return m.view.Zoom()
}

// Bounds returns the visible extent as [swLat, swLng, neLat, neLng].
func (m *Map) Bounds() [4]float64 {
	return m.view.Bounds()
}

// SetView recenters the map; zoom is clamped to the zoom bounds.
func (m *Map) SetView(lat, lng, zoom float64) {
	m.view.SetView(lat, lng, zoom)
	m.momentum.StartDrag()
	m.viewChanged(true)
}

// SetZoomBounds restricts the zoom range.
func (m *Map) SetZoomBounds(min, max float64) {
	m.view.SetZoomBounds(min, max)
}

// FitBounds moves the view to contain the given [swLat, swLng, neLat,
// neLng] extent at the tightest integer zoom.
func (m *Map) FitBounds(bounds []float64) error {
	if err := m.view.FitBounds(bounds); err != nil {
		return err
	}
	m.momentum.StartDrag()
	m.viewChanged(true)
	return nil
}

// Resize adjusts the viewport to a new screen size.
func (m *Map) Resize(width, height int) {
	if width == m.view.Width && height == m.view.Height {
		return
	}
	m.view.Resize(width, height)
	m.viewChanged(false)
}

// Pan shifts the view by a screen-space delta.
func (m *Map) Pan(dx, dy float64) {
	if m.view.Pan(dx, dy) {
		m.viewChanged(false)
	}
}

// ZoomIn bumps the zoom one level, keeping the center fixed.
func (m *Map) ZoomIn() {
	if m.view.ZoomIn() {
		m.viewChanged(true)
	}
}

// ZoomOut drops the zoom one level, keeping the center fixed.
func (m *Map) ZoomOut() {
	if m.view.ZoomOut() {
		m.viewChanged(true)
	}
}

// ZoomAtPoint zooms one level while keeping the geographic point under the
// given screen position fixed.
func (m *Map) ZoomAtPoint(zoomIn bool, x, y float64) {
	if m.view.ZoomAtPoint(zoomIn, x, y) {
		m.viewChanged(true)
	}
}

// Project converts geographic coordinates to screen pixels.
func (m *Map) Project(lat, lng float64) (x, y float64) {
	return m.view.Project(lat, lng)
}

// Unproject converts screen pixels to geographic coordinates.
func (m *Map) Unproject(x, y float64) (lat, lng float64) {
	return m.view.Unproject(x, y)
}

// SetTileLayer swaps the raster source and drops every cached tile.
func (m *Map) SetTileLayer(l tiles.Layer) {
	m.tileLayer = l
	m.cache = tiles.NewCache()
}

// On subscribes a handler and returns an id for Off.
func (m *Map) On(t EventType, h Handler) int {
	return m.events.on(t, h)
}

// Off removes a subscription; it reports whether one was removed.
func (m *Map) Off(t EventType, id int) bool {
	return m.events.off(t, id)
}

// AddPointLayer registers a point overlay and returns its handle.
func (m *Map) AddPointLayer(features []layer.PointFeature) int {
	m.indexDirty = true
	return m.layers.AddPoints(features)
}

// AddLineLayer registers a polyline overlay and returns its handle.
func (m *Map) AddLineLayer(features []layer.LineFeature) int {
	m.indexDirty = true
	return m.layers.AddLines(features)
}

// AddPolygonLayer registers a polygon overlay and returns its handle.
func (m *Map) AddPolygonLayer(features []layer.PolygonFeature) int {
	return m.layers.AddPolygons(features)
}

// AddPoints appends features to an existing point overlay.
func (m *Map) AddPoints(handle int, features []layer.PointFeature) error {
	l, err := m.layers.Points(handle)
	if err != nil {
		return err
	}
	l.Features = append(l.Features, features...)
	m.indexDirty = true
	return nil
}

// AddLines appends features to an existing polyline overlay.
func (m *Map) AddLines(handle int, features []layer.LineFeature) error {
	l, err := m.layers.Lines(handle)
	if err != nil {
		return err
	}
	l.Features = append(l.Features, features...)
	m.indexDirty = true
	return nil
}

// AddPolygons appends features to an existing polygon overlay.
func (m *Map) AddPolygons(handle int, features []layer.PolygonFeature) error {
	l, err := m.layers.Polygons(handle)
	if err != nil {
		return err
	}
	l.Features = append(l.Features, features...)
	return nil
}

// SetPointLayerVisible toggles a point overlay.
func (m *Map) SetPointLayerVisible(handle int, visible bool) error {
	l, err := m.layers.Points(handle)
	if err != nil {
		return err
	}
	l.Visible = visible
	m.indexDirty = true
	return nil
}

// SetLineLayerVisible toggles a polyline overlay.
func (m *Map) SetLineLayerVisible(handle int, visible bool) error {
	l, err := m.layers.Lines(handle)
	if err != nil {
		return err
	}
	l.Visible = visible
	m.indexDirty = true
	return nil
}

// SetPolygonLayerVisible toggles a polygon overlay.
func (m *Map) SetPolygonLayerVisible(handle int, visible bool) error {
	l, err := m.layers.Polygons(handle)
	if err != nil {
		return err
	}
	l.Visible = visible
	return nil
}

// AddGeoJSONLayer creates an empty GeoJSON layer and returns its handle.
// Use AddGeoJSON or AddGeoJSONChunk to create populated layers directly.
func (m *Map) AddGeoJSONLayer() int {
	return m.layers.AddGeoJSON(layer.NewGeoJSONLayer(nil))
}

// AddGeoJSON parses a complete document into a new layer and returns its
// handle.
func (m *Map) AddGeoJSON(data []byte) (int, error) {
	features, err := geojson.Parse(data)
	if err != nil {
		return 0, err
	}
	m.indexDirty = true
	return m.layers.AddGeoJSON(layer.NewGeoJSONLayer(features)), nil
}

// AddGeoJSONChunk feeds one chunk of a streamed document. The target layer
// is created on the first chunk and its handle returned from every call;
// features appear as soon as they can be parsed. Marking a chunk final
// flushes the stream and ends it.
func (m *Map) AddGeoJSONChunk(chunk []byte, final bool) int {
	if m.stream == nil {
		m.stream = &geojsonStream{
			handle: m.layers.AddGeoJSON(layer.NewGeoJSONLayer(nil)),
		}
	}
	s := m.stream

	if features := s.buf.Add(chunk, final); len(features) > 0 {
		l, err := m.layers.GeoJSON(s.handle)
		if err == nil {
			l.Features = append(l.Features, features...)
			l.RebuildCache()
			m.indexDirty = true
		}
	}

	if final {
		m.stream = nil
	}
	return s.handle
}

// GeoJSONFeatureCount returns how many features a GeoJSON layer holds.
func (m *Map) GeoJSONFeatureCount(handle int) (int, error) {
	l, err := m.layers.GeoJSON(handle)
	if err != nil {
		return 0, err
	}
	return len(l.Features), nil
}

// ClearGeoJSONLayer drops every feature from a GeoJSON layer but keeps the
// layer and its style.
func (m *Map) ClearGeoJSONLayer(handle int) error {
	l, err := m.layers.GeoJSON(handle)
	if err != nil {
		return err
	}
	l.Features = nil
	l.RebuildCache()
	m.indexDirty = true
	return nil
}

// SetGeoJSONStyle restyles a GeoJSON layer. The cached geometry is
// style-independent, so only the uploaded renderer buffer is dropped.
func (m *Map) SetGeoJSONStyle(handle int, style layer.Style) error {
	l, err := m.layers.GeoJSON(handle)
	if err != nil {
		return err
	}
	l.Style = style
	l.Cache.Buffer = nil
	return nil
}

// SetGeoJSONVisible toggles a GeoJSON layer.
func (m *Map) SetGeoJSONVisible(handle int, visible bool) error {
	l, err := m.layers.GeoJSON(handle)
	if err != nil {
		return err
	}
	l.Visible = visible
	m.indexDirty = true
	return nil
}

// ShapefileLayers are the overlay handles created by LoadShapefile; a
// handle is -1 when the file had no features of that type.
type ShapefileLayers struct {
	Points   int
	Lines    int
	Polygons int
}

// LoadShapefile reads a shapefile and registers one overlay per geometry
// type present in it.
func (m *Map) LoadShapefile(path string) (ShapefileLayers, error) {
	contents, err := shape.Load(path, layer.DefaultStyle())
	if err != nil {
		return ShapefileLayers{Points: -1, Lines: -1, Polygons: -1}, err
	}

	handles := ShapefileLayers{Points: -1, Lines: -1, Polygons: -1}
	if len(contents.Points) > 0 {
		handles.Points = m.AddPointLayer(contents.Points)
	}
	if len(contents.Lines) > 0 {
		handles.Lines = m.AddLineLayer(contents.Lines)
	}
	if len(contents.Polygons) > 0 {
		handles.Polygons = m.AddPolygonLayer(contents.Polygons)
	}
	return handles, nil
}

// Tick advances one frame: applies momentum, drains finished tile fetches,
// runs cache eviction, starts new fetches, and refreshes the hit-test index.
func (m *Map) Tick(now time.Time) {
	dt := 0.0
	if !m.lastTick.IsZero() {
		dt = now.Sub(m.lastTick).Seconds()
	}
	m.lastTick = now

	if m.momentum.Active() {
		if dx, dy, _ := m.momentum.Step(dt); dx != 0 || dy != 0 {
			if m.view.Pan(dx, dy) {
				m.viewChanged(false)
			}
		}
	}

	m.fetcher.Drain(func(c tiles.Completion) {
		if c.Err != nil {
			log.Printf("engine: tile %s failed: %v", c.Addr, c.Err)
			m.cache.Fail(c.Addr)
			return
		}
		tex, err := m.renderer.CreateTexture(c.Image)
		if err != nil {
			log.Printf("engine: tile %s texture: %v", c.Addr, err)
			m.cache.Fail(c.Addr)
			return
		}
		m.cache.Complete(c.Addr, tex)
	})

	zoom := m.view.TileZoom()
	m.cache.Evict(zoom)

	lat, lng := m.view.Center()
	for _, a := range m.cache.Plan(m.tileLayer, lat, lng, zoom, m.view.Width, m.view.Height) {
		m.fetcher.Fetch(m.tileLayer, a)
	}

	if m.indexDirty {
		m.rebuildIndex()
	}
}

// viewChanged invalidates view-derived state and fires move and zoom
// events.
func (m *Map) viewChanged(zoomed bool) {
	m.indexDirty = true
	m.emitView(EventMove)
	if zoomed {
		m.emitView(EventZoom)
	}
}

func (m *Map) emitView(t EventType) {
	if !m.events.has(t) {
		return
	}
	lat, lng := m.view.Center()
	m.events.emit(Event{
		Type:   t,
		Lat:    lat,
		Lng:    lng,
		Zoom:   m.view.Zoom(),
		Bounds: m.view.Bounds(),
	})
}
