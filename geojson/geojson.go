// Package geojson parses GeoJSON documents into flat feature lists. It
// keeps coordinates exactly as parsed ([lng, lat] order, extra ordinates
// dropped) and leaves styling and projection to the callers.
package geojson

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/buger/jsonparser"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Kind identifies the geometry variant populated in a Geometry.
type Kind int

const (
	KindPoint Kind = iota
	KindMultiPoint
	KindLine
	KindMultiLine
	KindPolygon
	KindMultiPolygon
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "Point"
	case KindMultiPoint:
		return "MultiPoint"
	case KindLine:
		return "LineString"
	case KindMultiLine:
		return "MultiLineString"
	case KindPolygon:
		return "Polygon"
	case KindMultiPolygon:
		return "MultiPolygon"
	}
	return "unknown"
}

// Geometry is a tagged union; only the field matching Kind is set.
// Positions are [lng, lat] as they appear on the wire.
type Geometry struct {
	Kind     Kind
	Point    [2]float64
	Points   [][2]float64
	Line     [][2]float64
	Lines    [][][2]float64
	Rings    [][][2]float64
	Polygons [][][][2]float64
}

// Feature is one GeoJSON feature with its decoded geometry and properties.
type Feature struct {
	ID         string
	Geometry   Geometry
	Properties map[string]any
}

type rawGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

type rawFeature struct {
	ID         any            `json:"id"`
	Type       string         `json:"type"`
	Geometry   *rawGeometry   `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type rawCollection struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
}

// Parse decodes a GeoJSON document. FeatureCollection, Feature, and bare
// geometry documents are accepted. Features whose geometry cannot be decoded
// are skipped with a logged warning; a document without a recognizable type
// is an error.
func Parse(data []byte) ([]Feature, error) {
	docType, err := jsonparser.GetString(data, "type")
	if err != nil {
		return nil, errors.Wrap(err, "geojson: document has no type")
	}

	switch docType {
	case "FeatureCollection":
		var coll rawCollection
		if err := jsonAPI.Unmarshal(data, &coll); err != nil {
			return nil, errors.Wrap(err, "geojson: decode FeatureCollection")
		}
		features := make([]Feature, 0, len(coll.Features))
		for i, rf := range coll.Features {
			f, err := convertFeature(rf)
			if err != nil {
				log.Printf("geojson: skipping feature %d: %v", i, err)
				continue
			}
			features = append(features, f)
		}
		return features, nil

	case "Feature":
		var rf rawFeature
		if err := jsonAPI.Unmarshal(data, &rf); err != nil {
			return nil, errors.Wrap(err, "geojson: decode Feature")
		}
		f, err := convertFeature(rf)
		if err != nil {
			return nil, err
		}
		return []Feature{f}, nil

	case "Point", "MultiPoint", "LineString", "MultiLineString", "Polygon", "MultiPolygon":
		var rg rawGeometry
		if err := jsonAPI.Unmarshal(data, &rg); err != nil {
			return nil, errors.Wrap(err, "geojson: decode geometry")
		}
		geom, err := convertGeometry(&rg)
		if err != nil {
			return nil, err
		}
		return []Feature{{Geometry: geom, Properties: map[string]any{}}}, nil
	}

	return nil, errors.Errorf("geojson: unsupported document type %q", docType)
}

func convertFeature(rf rawFeature) (Feature, error) {
	if rf.Geometry == nil {
		return Feature{}, errors.New("feature has no geometry")
	}
	geom, err := convertGeometry(rf.Geometry)
	if err != nil {
		return Feature{}, err
	}
	props := rf.Properties
	if props == nil {
		props = map[string]any{}
	}
	return Feature{ID: featureID(rf.ID), Geometry: geom, Properties: props}, nil
}

func featureID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func convertGeometry(rg *rawGeometry) (Geometry, error) {
	switch rg.Type {
	case "Point":
		var pos []float64
		if err := jsonAPI.Unmarshal(rg.Coordinates, &pos); err != nil {
			return Geometry{}, errors.Wrap(err, "Point coordinates")
		}
		p, err := position(pos)
		if err != nil {
			return Geometry{}, err
		}
		return Geometry{Kind: KindPoint, Point: p}, nil

	case "MultiPoint":
		pts, err := decodeLine(rg.Coordinates)
		if err != nil {
			return Geometry{}, errors.Wrap(err, "MultiPoint coordinates")
		}
		return Geometry{Kind: KindMultiPoint, Points: pts}, nil

	case "LineString":
		line, err := decodeLine(rg.Coordinates)
		if err != nil {
			return Geometry{}, errors.Wrap(err, "LineString coordinates")
		}
		return Geometry{Kind: KindLine, Line: line}, nil

	case "MultiLineString":
		lines, err := decodeRings(rg.Coordinates)
		if err != nil {
			return Geometry{}, errors.Wrap(err, "MultiLineString coordinates")
		}
		return Geometry{Kind: KindMultiLine, Lines: lines}, nil

	case "Polygon":
		rings, err := decodeRings(rg.Coordinates)
		if err != nil {
			return Geometry{}, errors.Wrap(err, "Polygon coordinates")
		}
		return Geometry{Kind: KindPolygon, Rings: rings}, nil

	case "MultiPolygon":
		var nested [][][][]float64
		if err := jsonAPI.Unmarshal(rg.Coordinates, &nested); err != nil {
			return Geometry{}, errors.Wrap(err, "MultiPolygon coordinates")
		}
		polys := make([][][][2]float64, 0, len(nested))
		for _, poly := range nested {
			rings := make([][][2]float64, 0, len(poly))
			for _, ring := range poly {
				conv, err := positions(ring)
				if err != nil {
					return Geometry{}, err
				}
				rings = append(rings, conv)
			}
			polys = append(polys, rings)
		}
		return Geometry{Kind: KindMultiPolygon, Polygons: polys}, nil
	}

	return Geometry{}, errors.Errorf("unsupported geometry type %q", rg.Type)
}

func decodeLine(raw json.RawMessage) ([][2]float64, error) {
	var coords [][]float64
	if err := jsonAPI.Unmarshal(raw, &coords); err != nil {
		return nil, err
	}
	return positions(coords)
}

func decodeRings(raw json.RawMessage) ([][][2]float64, error) {
	var nested [][][]float64
	if err := jsonAPI.Unmarshal(raw, &nested); err != nil {
		return nil, err
	}
	rings := make([][][2]float64, 0, len(nested))
	for _, ring := range nested {
		conv, err := positions(ring)
		if err != nil {
			return nil, err
		}
		rings = append(rings, conv)
	}
	return rings, nil
}

func positions(coords [][]float64) ([][2]float64, error) {
	out := make([][2]float64, 0, len(coords))
	for _, c := range coords {
		p, err := position(c)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func position(c []float64) ([2]float64, error) {
	if len(c) < 2 {
		return [2]float64{}, errors.Errorf("position has %d ordinates, need 2", len(c))
	}
	return [2]float64{c[0], c[1]}, nil
}
