package proj

import "math"

// Constants for Web Mercator projection
const (
	// TileSize is the size of map tiles in pixels
	TileSize = 256
	// MaxZoom is the maximum zoom level supported
	MaxZoom = 21

	// MaxLatitude is the latitude limit of Web Mercator (arctan(sinh(π)))
	MaxLatitude = 85.05112878
	// MinLatitude mirrors MaxLatitude
	MinLatitude = -85.05112878

	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
)

// pow2 contains pre-calculated powers of 2 for zoom levels 0-21
var pow2 = [MaxZoom + 1]float64{
	1, 2, 4, 8, 16, 32, 64, 128, 256, 512,
	1024, 2048, 4096, 8192, 16384, 32768, 65536,
	131072, 262144, 524288, 1048576, 2097152,
}

// Scale returns 2^zoom for an integer zoom level, clamped to the supported
// range.
func Scale(zoom int) float64 {
	if zoom < 0 {
		return pow2[0]
	}
	if zoom > MaxZoom {
		return pow2[MaxZoom]
	}
	return pow2[zoom]
}

// ClampLatitude limits a latitude to the Web Mercator valid range.
func ClampLatitude(lat float64) float64 {
	if lat > MaxLatitude {
		return MaxLatitude
	}
	if lat < MinLatitude {
		return MinLatitude
	}
	return lat
}

// WrapLongitude normalizes a longitude into [-180, 180]. Longitude is wrapped
// around the antimeridian, never clamped.
func WrapLongitude(lng float64) float64 {
	lng = math.Mod(lng, 360.0)
	if lng > 180.0 {
		lng -= 360.0
	} else if lng < -180.0 {
		lng += 360.0
	}
	return lng
}

// Project converts WGS84 coordinates to world pixel coordinates at the
// specified integer zoom level. Longitude maps linearly to x; latitude maps
// through the Web Mercator logarithmic-tangent formula after clamping to
// ±85.05112878.
//
// Returns:
//   - x: World pixel X coordinate in [0, 2^zoom·TileSize)
//   - y: World pixel Y coordinate in [0, 2^zoom·TileSize)
func Project(lat, lng float64, zoom int) (x, y float64) {
	lat = ClampLatitude(lat)

	n := Scale(zoom)

	xTile := (lng + 180.0) / 360.0 * n

	latRad := lat * degToRad
	yTile := (1.0 - math.Log(math.Tan(math.Pi/4.0+latRad/2.0))/math.Pi) / 2.0 * n

	return xTile * TileSize, yTile * TileSize
}

// Unproject converts world pixel coordinates back to WGS84 coordinates at the
// specified integer zoom level. It is the exact inverse of Project to float
// precision, using atan(sinh(·)) for latitude.
func Unproject(x, y float64, zoom int) (lat, lng float64) {
	n := Scale(zoom)

	tileX := x / TileSize
	tileY := y / TileSize

	lng = tileX/n*360.0 - 180.0

	a := math.Pi * (1.0 - 2.0*(tileY/n))
	lat = math.Atan(math.Sinh(a)) * radToDeg

	return lat, lng
}

// TileFloat converts WGS84 coordinates to fractional tile coordinates at the
// specified zoom level.
func TileFloat(lat, lng float64, zoom int) (x, y float64) {
	px, py := Project(lat, lng, zoom)
	return px / TileSize, py / TileSize
}
