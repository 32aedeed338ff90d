package tess

import (
	earcut "github.com/flywave/go-earcut"
)

// Rings triangulates a polygon given as an outer ring followed by zero or
// more hole rings. The result is a flat triangle list in the same [lat, lng]
// coordinate space as the input. An empty or degenerate outer ring yields
// nil, and holes with fewer than 3 points are dropped.
func Rings(rings [][][2]float64) [][2]float64 {
	if len(rings) == 0 || len(rings[0]) < 3 {
		return nil
	}

	var flat []float64
	var holeIndices []int
	var points [][2]float64

	for ri, ring := range rings {
		if ri > 0 {
			if len(ring) < 3 {
				continue
			}
			holeIndices = append(holeIndices, len(points))
		}
		for _, p := range ring {
			// earcut wants planar x/y, so feed it lng/lat.
			flat = append(flat, p[1], p[0])
			points = append(points, p)
		}
	}

	indices, err := earcut.Earcut(flat, holeIndices, 2)
	if err != nil || len(indices) < 3 {
		return nil
	}

	triangles := make([][2]float64, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(points) {
			return nil
		}
		triangles = append(triangles, points[idx])
	}
	return triangles
}
