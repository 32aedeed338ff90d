package engine

import (
	"github.com/slipway-maps/slipway/layer"
	"github.com/slipway-maps/slipway/proj"
	"github.com/slipway-maps/slipway/tess"
	"github.com/slipway-maps/slipway/tiles"
)

// cullPad keeps triangles that spill slightly past the screen edge from
// popping while panning.
const cullPad = 50.0

// viewKey identifies the exact view a screen-space upload was built for.
type viewKey struct {
	lat, lng, zoom float64
	width, height  int
}

// screenUpload is cached screen-space triangle geometry tied to one view.
type screenUpload struct {
	key viewKey
	buf any
}

// Render draws one frame: base tiles, then polygon fills, lines, and
// points, overlays on top of tiles and GeoJSON fills under programmatic
// ones.
func (m *Map) Render() {
	if m.renderer == nil {
		return
	}
	m.renderTiles()

	m.layers.EachGeoJSON(func(handle int, l *layer.GeoJSONLayer) {
		if l.Visible {
			m.renderGeoJSONFills(l)
		}
	})
	m.layers.EachPolygons(func(handle int, l *layer.PolygonLayer) {
		if l.Visible {
			m.renderPolygonLayer(l)
		}
	})

	m.layers.EachGeoJSON(func(handle int, l *layer.GeoJSONLayer) {
		if l.Visible {
			m.renderGeoJSONLines(l)
		}
	})
	m.layers.EachLines(func(handle int, l *layer.LineLayer) {
		if l.Visible {
			m.renderLineLayer(l)
		}
	})

	m.layers.EachGeoJSON(func(handle int, l *layer.GeoJSONLayer) {
		if l.Visible {
			m.renderGeoJSONPoints(l)
		}
	})
	m.layers.EachPoints(func(handle int, l *layer.PointLayer) {
		if l.Visible {
			m.renderPointLayer(l)
		}
	})
}

func (m *Map) renderTiles() {
	zoom := m.view.TileZoom()
	if !m.tileLayer.InZoomRange(zoom) {
		return
	}
	lat, lng := m.view.Center()
	centerX, centerY := proj.TileFloat(lat, lng, zoom)

	halfW := float64(m.view.Width) / 2
	halfH := float64(m.view.Height) / 2

	cover := tiles.Cover(lat, lng, zoom, m.view.Width, m.view.Height)
	cover.Each(zoom, func(a tiles.Address) {
		tex, ok := m.cache.Get(a)
		if !ok {
			return
		}
		drawX := halfW - (centerX-float64(a.X))*proj.TileSize
		drawY := halfH - (centerY-float64(a.Y))*proj.TileSize
		m.renderer.DrawTile(tex, drawX, drawY)
	})
}

func (m *Map) renderPointLayer(l *layer.PointLayer) {
	verts := make([]float32, 0, len(l.Features)*7)
	for i := range l.Features {
		f := &l.Features[i]
		x, y := m.view.Project(f.Lat, f.Lng)
		if m.offscreen(x, y, f.Size) {
			continue
		}
		verts = append(verts,
			float32(x), float32(y), float32(f.Size),
			f.Color[0], f.Color[1], f.Color[2], f.Color[3])
	}
	if len(verts) > 0 {
		m.renderer.DrawPoints(verts)
	}
}

func (m *Map) renderLineLayer(l *layer.LineLayer) {
	for i := range l.Features {
		f := &l.Features[i]
		if len(f.Points) < 2 {
			continue
		}
		verts := make([]float32, 0, (len(f.Points)-1)*12)
		for si := 0; si+1 < len(f.Points); si++ {
			x1, y1 := m.view.Project(f.Points[si][0], f.Points[si][1])
			x2, y2 := m.view.Project(f.Points[si+1][0], f.Points[si+1][1])
			verts = append(verts,
				float32(x1), float32(y1), f.Color[0], f.Color[1], f.Color[2], f.Color[3],
				float32(x2), float32(y2), f.Color[0], f.Color[1], f.Color[2], f.Color[3])
		}
		m.renderer.DrawLines(verts, float32(f.Width))
	}
}

// renderPolygonLayer triangulates outer rings per frame; programmatic
// polygon layers are small and restyled often, so caching buys little.
func (m *Map) renderPolygonLayer(l *layer.PolygonLayer) {
	for i := range l.Features {
		f := &l.Features[i]
		if len(f.Rings) == 0 {
			continue
		}
		tris := tess.Rings(f.Rings)
		if len(tris) == 0 && len(f.Rings) == 1 {
			tris = tess.EarClip(f.Rings[0])
		}
		verts := m.triangleVerts(tris, f.Color)
		if len(verts) > 0 {
			m.renderer.DrawTriangles(verts)
		}
	}
}

func (m *Map) renderGeoJSONFills(l *layer.GeoJSONLayer) {
	if len(l.Cache.Triangles) == 0 {
		return
	}

	key := m.currentViewKey()
	if up, ok := l.Cache.Buffer.(*screenUpload); ok && up.key == key {
		m.renderer.DrawBuffer(up.buf)
		return
	}

	verts := m.triangleVerts(l.Cache.Triangles, l.Style.PolygonColor)
	if len(verts) == 0 {
		return
	}
	if buf, err := m.renderer.UploadTriangles(verts); err == nil {
		l.Cache.Buffer = &screenUpload{key: key, buf: buf}
		m.renderer.DrawBuffer(buf)
		return
	}
	m.renderer.DrawTriangles(verts)
}

func (m *Map) renderGeoJSONLines(l *layer.GeoJSONLayer) {
	if len(l.Cache.Lines) == 0 {
		return
	}
	c := l.Style.LineColor
	verts := make([]float32, 0, len(l.Cache.Lines)*6)
	for si := 0; si+1 < len(l.Cache.Lines); si += 2 {
		a, b := l.Cache.Lines[si], l.Cache.Lines[si+1]
		x1, y1 := m.view.Project(a[0], a[1])
		x2, y2 := m.view.Project(b[0], b[1])
		if m.offscreen(x1, y1, cullPad) && m.offscreen(x2, y2, cullPad) {
			continue
		}
		verts = append(verts,
			float32(x1), float32(y1), c[0], c[1], c[2], c[3],
			float32(x2), float32(y2), c[0], c[1], c[2], c[3])
	}
	if len(verts) > 0 {
		m.renderer.DrawLines(verts, float32(l.Style.LineWidth))
	}
}

func (m *Map) renderGeoJSONPoints(l *layer.GeoJSONLayer) {
	if len(l.Cache.Points) == 0 {
		return
	}
	c := l.Style.PointColor
	verts := make([]float32, 0, len(l.Cache.Points)*7)
	for _, p := range l.Cache.Points {
		x, y := m.view.Project(p[0], p[1])
		if m.offscreen(x, y, l.Style.PointSize) {
			continue
		}
		verts = append(verts,
			float32(x), float32(y), float32(l.Style.PointSize),
			c[0], c[1], c[2], c[3])
	}
	if len(verts) > 0 {
		m.renderer.DrawPoints(verts)
	}
}

// triangleVerts projects a triangle list to screen space, dropping
// triangles entirely outside the padded viewport.
func (m *Map) triangleVerts(tris [][2]float64, c layer.Color) []float32 {
	verts := make([]float32, 0, len(tris)*6)
	for i := 0; i+2 < len(tris); i += 3 {
		var xs, ys [3]float64
		inside := false
		for v := 0; v < 3; v++ {
			xs[v], ys[v] = m.view.Project(tris[i+v][0], tris[i+v][1])
			if !m.offscreen(xs[v], ys[v], cullPad) {
				inside = true
			}
		}
		if !inside {
			continue
		}
		for v := 0; v < 3; v++ {
			verts = append(verts, float32(xs[v]), float32(ys[v]), c[0], c[1], c[2], c[3])
		}
	}
	return verts
}

func (m *Map) offscreen(x, y, pad float64) bool {
	return x < -pad || y < -pad ||
		x > float64(m.view.Width)+pad || y > float64(m.view.Height)+pad
}

func (m *Map) currentViewKey() viewKey {
	lat, lng := m.view.Center()
	return viewKey{
		lat:    lat,
		lng:    lng,
		zoom:   m.view.Zoom(),
		width:  m.view.Width,
		height: m.view.Height,
	}
}
