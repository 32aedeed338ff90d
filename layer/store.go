package layer

import "github.com/pkg/errors"

// ErrLayerIndex is returned when a layer handle does not name an existing
// layer of the requested type.
var ErrLayerIndex = errors.New("layer: index out of range")

// Store owns every overlay layer of a map. Layers are addressed by the
// integer handle returned when they were added; handles are stable for the
// lifetime of the store.
type Store struct {
	points   []*PointLayer
	lines    []*LineLayer
	polygons []*PolygonLayer
	geojsons []*GeoJSONLayer
}

// AddPoints registers a new visible point layer and returns its handle.
func (s *Store) AddPoints(features []PointFeature) int {
	s.points = append(s.points, &PointLayer{Features: features, Visible: true})
	return len(s.points) - 1
}

// AddLines registers a new visible line layer and returns its handle.
func (s *Store) AddLines(features []LineFeature) int {
	s.lines = append(s.lines, &LineLayer{Features: features, Visible: true})
	return len(s.lines) - 1
}

// AddPolygons registers a new visible polygon layer and returns its handle.
func (s *Store) AddPolygons(features []PolygonFeature) int {
	s.polygons = append(s.polygons, &PolygonLayer{Features: features, Visible: true})
	return len(s.polygons) - 1
}

// AddGeoJSON registers a parsed GeoJSON layer and returns its handle.
func (s *Store) AddGeoJSON(l *GeoJSONLayer) int {
	s.geojsons = append(s.geojsons, l)
	return len(s.geojsons) - 1
}

func (s *Store) Points(i int) (*PointLayer, error) {
	if i < 0 || i >= len(s.points) {
		return nil, errors.Wrapf(ErrLayerIndex, "point layer %d", i)
	}
	return s.points[i], nil
}

func (s *Store) Lines(i int) (*LineLayer, error) {
	if i < 0 || i >= len(s.lines) {
		return nil, errors.Wrapf(ErrLayerIndex, "line layer %d", i)
	}
	return s.lines[i], nil
}

func (s *Store) Polygons(i int) (*PolygonLayer, error) {
	if i < 0 || i >= len(s.polygons) {
		return nil, errors.Wrapf(ErrLayerIndex, "polygon layer %d", i)
	}
	return s.polygons[i], nil
}

func (s *Store) GeoJSON(i int) (*GeoJSONLayer, error) {
	if i < 0 || i >= len(s.geojsons) {
		return nil, errors.Wrapf(ErrLayerIndex, "geojson layer %d", i)
	}
	return s.geojsons[i], nil
}

// EachPoints visits point layers in insertion order.
func (s *Store) EachPoints(fn func(handle int, l *PointLayer)) {
	for i, l := range s.points {
		fn(i, l)
	}
}

// EachLines visits line layers in insertion order.
func (s *Store) EachLines(fn func(handle int, l *LineLayer)) {
	for i, l := range s.lines {
		fn(i, l)
	}
}

// EachPolygons visits polygon layers in insertion order.
func (s *Store) EachPolygons(fn func(handle int, l *PolygonLayer)) {
	for i, l := range s.polygons {
		fn(i, l)
	}
}

// EachGeoJSON visits GeoJSON layers in insertion order.
func (s *Store) EachGeoJSON(fn func(handle int, l *GeoJSONLayer)) {
	for i, l := range s.geojsons {
		fn(i, l)
	}
}
