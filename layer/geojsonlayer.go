package layer

import (
	"log"

	"github.com/slipway-maps/slipway/geojson"
	"github.com/slipway-maps/slipway/tess"
)

const (
	// Rings beyond this size are skipped rather than triangulated; they
	// stall the frame and are almost always bad data.
	maxRingPoints = 1000

	// Hard ceiling on cached vertices per layer.
	maxCacheVertices = 1_000_000
)

// GeometryCache holds the screen-ready geometry derived from a GeoJSON
// layer's features. Points and Lines are [lat, lng] positions (Lines as
// consecutive segment endpoint pairs), Triangles a flat triangle list.
// PointFeature and SegmentFeature map each point and segment pair back to
// the feature it came from. Buffer is an optional renderer-owned upload of
// the triangles.
type GeometryCache struct {
	Points         [][2]float64
	PointFeature   []int
	Lines          [][2]float64
	SegmentFeature []int
	Triangles      [][2]float64
	Buffer         any
	VertexCount    int
}

// GeoJSONLayer renders parsed GeoJSON features with a shared style. The
// geometry cache is rebuilt when features or style change, not per frame.
type GeoJSONLayer struct {
	Features []geojson.Feature
	Visible  bool
	Style    Style
	Cache    GeometryCache
}

// NewGeoJSONLayer builds a visible layer with the default style and a
// populated geometry cache.
func NewGeoJSONLayer(features []geojson.Feature) *GeoJSONLayer {
	l := &GeoJSONLayer{
		Features: features,
		Visible:  true,
		Style:    DefaultStyle(),
	}
	l.RebuildCache()
	return l
}

// RebuildCache regenerates cached geometry from the layer's features. Any
// previous renderer buffer is discarded; the caller re-uploads when needed.
func (l *GeoJSONLayer) RebuildCache() {
	l.Cache = GeometryCache{}

	for i := range l.Features {
		if l.Cache.VertexCount >= maxCacheVertices {
			log.Printf("layer: geometry cache full at feature %d of %d", i, len(l.Features))
			break
		}
		geom := &l.Features[i].Geometry
		switch geom.Kind {
		case geojson.KindPoint:
			l.cachePoint(i, geom.Point)
		case geojson.KindMultiPoint:
			for _, p := range geom.Points {
				l.cachePoint(i, p)
			}
		case geojson.KindLine:
			l.cacheLine(i, geom.Line)
		case geojson.KindMultiLine:
			for _, line := range geom.Lines {
				l.cacheLine(i, line)
			}
		case geojson.KindPolygon:
			l.cachePolygon(i, geom.Rings)
		case geojson.KindMultiPolygon:
			for _, rings := range geom.Polygons {
				l.cachePolygon(i, rings)
			}
		}
	}
}

func (l *GeoJSONLayer) cachePoint(feature int, p [2]float64) {
	l.Cache.Points = append(l.Cache.Points, latLng(p))
	l.Cache.PointFeature = append(l.Cache.PointFeature, feature)
	l.Cache.VertexCount++
}

func (l *GeoJSONLayer) cacheLine(feature int, line [][2]float64) {
	if len(line) < 2 {
		return
	}
	for i := 0; i+1 < len(line); i++ {
		l.Cache.Lines = append(l.Cache.Lines, latLng(line[i]), latLng(line[i+1]))
		l.Cache.SegmentFeature = append(l.Cache.SegmentFeature, feature)
		l.Cache.VertexCount += 2
	}
}

func (l *GeoJSONLayer) cachePolygon(feature int, rings [][][2]float64) {
	if len(rings) == 0 || len(rings[0]) < 3 {
		return
	}

	kept := make([][][2]float64, 0, len(rings))
	for ri, ring := range rings {
		if len(ring) > maxRingPoints {
			log.Printf("layer: skipping polygon ring %d with %d points", ri, len(ring))
			if ri == 0 {
				return
			}
			continue
		}
		flipped := make([][2]float64, len(ring))
		for i, p := range ring {
			flipped[i] = latLng(p)
		}
		kept = append(kept, flipped)
	}
	if len(kept) == 0 {
		return
	}

	tris := tess.Rings(kept)
	l.Cache.Triangles = append(l.Cache.Triangles, tris...)
	l.Cache.VertexCount += len(tris)

	// Outline follows the outer ring only; holes stay unstroked.
	l.cacheLine(feature, closeRing(rings[0]))
}

// closeRing returns the ring with its first point appended when the source
// data left it open.
func closeRing(ring [][2]float64) [][2]float64 {
	if len(ring) < 2 || ring[0] == ring[len(ring)-1] {
		return ring
	}
	closed := make([][2]float64, 0, len(ring)+1)
	closed = append(closed, ring...)
	return append(closed, ring[0])
}

// latLng flips a GeoJSON [lng, lat] position into [lat, lng].
func latLng(p [2]float64) [2]float64 {
	return [2]float64{p[1], p[0]}
}
