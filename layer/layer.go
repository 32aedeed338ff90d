// Package layer holds the vector overlay model: point, line, and polygon
// layers added programmatically, and GeoJSON layers with a cached
// triangulation. Coordinates throughout are [lat, lng] degrees.
package layer

// PointFeature is a single styled marker.
type PointFeature struct {
	Lat, Lng float64
	Size     float64
	Color    Color
	Meta     map[string]any
}

// LineFeature is a polyline with at least two vertices.
type LineFeature struct {
	Points [][2]float64
	Color  Color
	Width  float64
	Meta   map[string]any
}

// PolygonFeature is an outer ring plus optional hole rings.
type PolygonFeature struct {
	Rings [][][2]float64
	Color Color
	Meta  map[string]any
}

// PointLayer groups point features that show and hide together.
type PointLayer struct {
	Features []PointFeature
	Visible  bool
}

// LineLayer groups polylines that show and hide together.
type LineLayer struct {
	Features []LineFeature
	Visible  bool
}

// PolygonLayer groups polygons that show and hide together.
type PolygonLayer struct {
	Features []PolygonFeature
	Visible  bool
}

// Style carries the default rendering parameters of a GeoJSON layer.
type Style struct {
	PointColor   Color
	PointSize    float64
	LineColor    Color
	LineWidth    float64
	PolygonColor Color
}

// DefaultStyle matches the familiar web-map blue.
func DefaultStyle() Style {
	blue := Color{0.2, 0.533, 1, 1}
	return Style{
		PointColor:   blue,
		PointSize:    5,
		LineColor:    blue,
		LineWidth:    2,
		PolygonColor: Color{0.2, 0.533, 1, 0.2},
	}
}
