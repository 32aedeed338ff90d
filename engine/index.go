package engine

import (
	"github.com/slipway-maps/slipway/layer"
	"github.com/slipway-maps/slipway/spatial"
)

// hitInfo is the engine-side record behind one spatial entry, looked up by
// entry ID when a query hits.
type hitInfo struct {
	source  string
	kind    spatial.Kind
	layer   int
	feature int
	segment int
	meta    map[string]any
}

// rebuildIndex reprojects every hit-testable feature into screen space and
// rebuilds the R-tree. Runs whenever the view or the layer set changed.
func (m *Map) rebuildIndex() {
	var entries []*spatial.Entry
	m.hits = m.hits[:0]

	add := func(e *spatial.Entry, info hitInfo) {
		entries = append(entries, e)
		m.hits = append(m.hits, info)
	}
	tol := spatial.DefaultTolerance

	m.layers.EachPoints(func(handle int, l *layer.PointLayer) {
		if !l.Visible {
			return
		}
		for fi := range l.Features {
			f := &l.Features[fi]
			x, y := m.view.Project(f.Lat, f.Lng)
			id := len(m.hits)
			add(spatial.NewPointEntry(id, handle, fi, x, y, tol, f.Meta),
				hitInfo{source: HitSourcePoints, kind: spatial.KindPoint, layer: handle, feature: fi, meta: f.Meta})
		}
	})

	m.layers.EachLines(func(handle int, l *layer.LineLayer) {
		if !l.Visible {
			return
		}
		for fi := range l.Features {
			f := &l.Features[fi]
			for si := 0; si+1 < len(f.Points); si++ {
				x1, y1 := m.view.Project(f.Points[si][0], f.Points[si][1])
				x2, y2 := m.view.Project(f.Points[si+1][0], f.Points[si+1][1])
				id := len(m.hits)
				add(spatial.NewSegmentEntry(id, handle, fi, si, x1, y1, x2, y2, tol, f.Meta),
					hitInfo{source: HitSourceLines, kind: spatial.KindSegment, layer: handle, feature: fi, segment: si, meta: f.Meta})
			}
		}
	})

	m.layers.EachGeoJSON(func(handle int, l *layer.GeoJSONLayer) {
		if !l.Visible {
			return
		}
		props := func(feature int) map[string]any {
			if feature >= 0 && feature < len(l.Features) {
				return l.Features[feature].Properties
			}
			return nil
		}
		for pi, p := range l.Cache.Points {
			x, y := m.view.Project(p[0], p[1])
			feature := l.Cache.PointFeature[pi]
			id := len(m.hits)
			add(spatial.NewPointEntry(id, handle, feature, x, y, tol, props(feature)),
				hitInfo{source: HitSourceGeoJSON, kind: spatial.KindPoint, layer: handle, feature: feature, meta: props(feature)})
		}
		for si := 0; si+1 < len(l.Cache.Lines); si += 2 {
			a, b := l.Cache.Lines[si], l.Cache.Lines[si+1]
			x1, y1 := m.view.Project(a[0], a[1])
			x2, y2 := m.view.Project(b[0], b[1])
			feature := l.Cache.SegmentFeature[si/2]
			id := len(m.hits)
			add(spatial.NewSegmentEntry(id, handle, feature, si/2, x1, y1, x2, y2, tol, props(feature)),
				hitInfo{source: HitSourceGeoJSON, kind: spatial.KindSegment, layer: handle, feature: feature, segment: si / 2, meta: props(feature)})
		}
	})

	m.index.Rebuild(entries)
	m.indexDirty = false
}
