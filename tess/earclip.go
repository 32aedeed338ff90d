// Package tess turns polygon rings into triangle lists. Simple single-ring
// polygons go through ear clipping; rings with holes go through earcut.
// All coordinates are geographic [lat, lng] pairs; callers project to screen
// space at draw time.
package tess

// EarClip triangulates a single ring by repeatedly removing convex "ear"
// vertices. It returns a flat triangle list (three vertices per triangle).
// Rings with fewer than 3 points yield nothing. The only loop guard is "stop
// when no ear is found", which can under-triangulate self-intersecting
// input; hole-bearing polygons must use Rings instead.
func EarClip(ring [][2]float64) [][2]float64 {
	if len(ring) < 3 {
		return nil
	}

	var triangles [][2]float64
	vertices := make([][2]float64, len(ring))
	copy(vertices, ring)

	// Clipping assumes counter-clockwise winding; flip clockwise input.
	if signedArea(vertices) < 0 {
		for i, j := 0, len(vertices)-1; i < j; i, j = i+1, j-1 {
			vertices[i], vertices[j] = vertices[j], vertices[i]
		}
	}

	for len(vertices) >= 3 {
		earFound := false

		for i := 0; i < len(vertices); i++ {
			prev := vertices[(i+len(vertices)-1)%len(vertices)]
			curr := vertices[i]
			next := vertices[(i+1)%len(vertices)]

			if isConvex(prev, curr, next) && !anyPointInTriangle(vertices, prev, curr, next) {
				triangles = append(triangles, prev, curr, next)
				vertices = append(vertices[:i], vertices[i+1:]...)
				earFound = true
				break
			}
		}

		if !earFound {
			break
		}
	}

	return triangles
}

// isConvex reports whether curr is a convex vertex of the ring, via the z
// component of the cross product of the adjacent edges.
func isConvex(prev, curr, next [2]float64) bool {
	dx1 := curr[0] - prev[0]
	dy1 := curr[1] - prev[1]
	dx2 := next[0] - curr[0]
	dy2 := next[1] - curr[1]
	return dx1*dy2-dy1*dx2 > 0
}

func anyPointInTriangle(vertices [][2]float64, a, b, c [2]float64) bool {
	for _, v := range vertices {
		if v == a || v == b || v == c {
			continue
		}
		if pointInTriangle(v, a, b, c) {
			return true
		}
	}
	return false
}

// pointInTriangle uses the barycentric coordinate method.
func pointInTriangle(p, a, b, c [2]float64) bool {
	v0 := [2]float64{c[0] - a[0], c[1] - a[1]}
	v1 := [2]float64{b[0] - a[0], b[1] - a[1]}
	v2 := [2]float64{p[0] - a[0], p[1] - a[1]}

	dot00 := v0[0]*v0[0] + v0[1]*v0[1]
	dot01 := v0[0]*v1[0] + v0[1]*v1[1]
	dot02 := v0[0]*v2[0] + v0[1]*v2[1]
	dot11 := v1[0]*v1[0] + v1[1]*v1[1]
	dot12 := v1[0]*v2[0] + v1[1]*v2[1]

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return u >= 0 && v >= 0 && u+v < 1
}

// Area returns the absolute shoelace area of a ring.
func Area(ring [][2]float64) float64 {
	a := signedArea(ring)
	if a < 0 {
		a = -a
	}
	return a
}

func signedArea(ring [][2]float64) float64 {
	if len(ring) < 3 {
		return 0
	}
	sum := 0.0
	for i := range ring {
		j := (i + 1) % len(ring)
		sum += ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
	}
	return sum / 2.0
}

// TriangleArea sums the absolute area of a flat triangle list as produced by
// EarClip or Rings.
func TriangleArea(triangles [][2]float64) float64 {
	total := 0.0
	for i := 0; i+2 < len(triangles); i += 3 {
		a, b, c := triangles[i], triangles[i+1], triangles[i+2]
		area := (b[0]-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(b[1]-a[1])
		if area < 0 {
			area = -area
		}
		total += area / 2.0
	}
	return total
}
