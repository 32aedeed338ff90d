// Package shape loads ESRI shapefiles into overlay layer features. Point,
// polyline, and polygon records are supported; DBF attributes ride along as
// feature metadata.
package shape

import (
	"log"

	shp "github.com/jonas-p/go-shp"
	"github.com/pkg/errors"

	"github.com/slipway-maps/slipway/layer"
)

// Contents is the result of loading one shapefile, split by geometry type.
type Contents struct {
	Points   []layer.PointFeature
	Lines    []layer.LineFeature
	Polygons []layer.PolygonFeature
}

// Load reads a shapefile and converts every supported record. Unsupported
// shape types are skipped with a logged warning. Styling uses the given
// style's colors and sizes.
func Load(path string, style layer.Style) (Contents, error) {
	r, err := shp.Open(path)
	if err != nil {
		return Contents{}, errors.Wrapf(err, "shape: open %s", path)
	}
	defer r.Close()

	fields := r.Fields()
	var out Contents

	for r.Next() {
		row, s := r.Shape()
		attrs := readAttributes(r, fields, row)

		switch g := s.(type) {
		case *shp.Point:
			out.Points = append(out.Points, layer.PointFeature{
				Lat:   g.Y,
				Lng:   g.X,
				Size:  style.PointSize,
				Color: style.PointColor,
				Meta:  attrs,
			})
		case *shp.PolyLine:
			for _, part := range splitParts(g.Parts, g.Points) {
				if len(part) < 2 {
					continue
				}
				out.Lines = append(out.Lines, layer.LineFeature{
					Points: part,
					Color:  style.LineColor,
					Width:  style.LineWidth,
					Meta:   attrs,
				})
			}
		case *shp.Polygon:
			rings := splitParts(g.Parts, g.Points)
			if len(rings) == 0 {
				continue
			}
			out.Polygons = append(out.Polygons, layer.PolygonFeature{
				Rings: rings,
				Color: style.PolygonColor,
				Meta:  attrs,
			})
		default:
			log.Printf("shape: skipping record %d with unsupported type %T", row, s)
		}
	}

	return out, nil
}

// splitParts turns a shapefile's flat point list into per-part [lat, lng]
// rings using the part start offsets.
func splitParts(parts []int32, points []shp.Point) [][][2]float64 {
	out := make([][][2]float64, 0, len(parts))
	for pi := 0; pi < len(parts); pi++ {
		start := parts[pi]
		end := int32(len(points))
		if pi+1 < len(parts) {
			end = parts[pi+1]
		}
		if end <= start {
			continue
		}
		part := make([][2]float64, 0, end-start)
		for i := start; i < end; i++ {
			part = append(part, [2]float64{points[i].Y, points[i].X})
		}
		out = append(out, part)
	}
	return out
}

func readAttributes(r *shp.Reader, fields []shp.Field, row int) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	attrs := make(map[string]any, len(fields))
	for i, f := range fields {
		attrs[f.String()] = r.ReadAttribute(row, i)
	}
	return attrs
}
