// Package render abstracts the drawing backend behind a small interface so
// the engine stays testable without a display. The one real implementation
// draws with ebiten; tests use a recording fake.
package render

import "image"

// Texture is a backend-owned tile image.
type Texture any

// Buffer is a backend-owned upload of triangle vertices, reused across
// frames until the source geometry changes.
type Buffer any

// Vertex layouts are flat float32 slices:
//
//	points:    x, y, size, r, g, b, a  (7 per point)
//	lines:     x, y, r, g, b, a        (6 per endpoint, endpoints in pairs)
//	triangles: x, y, r, g, b, a        (6 per vertex, vertices in triples)
type Renderer interface {
	CreateTexture(img image.Image) (Texture, error)
	DrawTile(tex Texture, x, y float64)

	DrawPoints(verts []float32)
	DrawLines(verts []float32, width float32)
	DrawTriangles(verts []float32)

	UploadTriangles(verts []float32) (Buffer, error)
	DrawBuffer(buf Buffer)
}
