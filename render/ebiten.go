package render

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/pkg/errors"
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage *ebiten.Image
)

func init() {
	whiteImage.Fill(color.White)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

// EbitenRenderer draws onto the ebiten image set for the current frame.
type EbitenRenderer struct {
	target *ebiten.Image
}

// NewEbitenRenderer returns a renderer with no target yet; call SetTarget at
// the start of every frame.
func NewEbitenRenderer() *EbitenRenderer {
	return &EbitenRenderer{}
}

// SetTarget points the renderer at this frame's destination image.
func (r *EbitenRenderer) SetTarget(target *ebiten.Image) {
	r.target = target
}

func (r *EbitenRenderer) CreateTexture(img image.Image) (Texture, error) {
	if img == nil {
		return nil, errors.New("render: nil tile image")
	}
	return ebiten.NewImageFromImage(img), nil
}

func (r *EbitenRenderer) DrawTile(tex Texture, x, y float64) {
	img, ok := tex.(*ebiten.Image)
	if !ok || r.target == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x, y)
	r.target.DrawImage(img, op)
}

func (r *EbitenRenderer) DrawPoints(verts []float32) {
	if r.target == nil {
		return
	}
	for i := 0; i+6 < len(verts); i += 7 {
		x, y, size := verts[i], verts[i+1], verts[i+2]
		vector.DrawFilledCircle(r.target, x, y, size, floatRGBA(verts[i+3:i+7]), true)
	}
}

func (r *EbitenRenderer) DrawLines(verts []float32, width float32) {
	if r.target == nil || width <= 0 {
		return
	}
	for i := 0; i+11 < len(verts); i += 12 {
		x1, y1 := verts[i], verts[i+1]
		x2, y2 := verts[i+6], verts[i+7]
		vector.StrokeLine(r.target, x1, y1, x2, y2, width, floatRGBA(verts[i+2:i+6]), true)
	}
}

func (r *EbitenRenderer) DrawTriangles(verts []float32) {
	if r.target == nil {
		return
	}
	vertices, indices := triangleVertices(verts)
	r.drawVertexChunks(vertices, indices)
}

// uploadedTriangles keeps converted ebiten vertices so cached geometry skips
// the per-frame conversion.
type uploadedTriangles struct {
	vertices []ebiten.Vertex
	indices  []uint16
}

func (r *EbitenRenderer) UploadTriangles(verts []float32) (Buffer, error) {
	if len(verts)%18 != 0 {
		return nil, errors.Errorf("render: triangle upload of %d floats is not whole triangles", len(verts))
	}
	vertices, indices := triangleVertices(verts)
	return &uploadedTriangles{vertices: vertices, indices: indices}, nil
}

func (r *EbitenRenderer) DrawBuffer(buf Buffer) {
	up, ok := buf.(*uploadedTriangles)
	if !ok || r.target == nil {
		return
	}
	r.drawVertexChunks(up.vertices, up.indices)
}

// drawVertexChunks splits large meshes so indices stay inside uint16.
func (r *EbitenRenderer) drawVertexChunks(vertices []ebiten.Vertex, indices []uint16) {
	const chunk = 65532 // divisible by 3

	op := &ebiten.DrawTrianglesOptions{}
	for start := 0; start < len(vertices); start += chunk {
		end := start + chunk
		if end > len(vertices) {
			end = len(vertices)
		}
		r.target.DrawTriangles(vertices[start:end], indices[:end-start], whiteSubImage, op)
	}
}

func triangleVertices(verts []float32) ([]ebiten.Vertex, []uint16) {
	count := len(verts) / 6
	vertices := make([]ebiten.Vertex, 0, count)
	indices := make([]uint16, 0, count)

	for i := 0; i+5 < len(verts); i += 6 {
		vertices = append(vertices, ebiten.Vertex{
			DstX:   verts[i],
			DstY:   verts[i+1],
			SrcX:   1,
			SrcY:   1,
			ColorR: verts[i+2],
			ColorG: verts[i+3],
			ColorB: verts[i+4],
			ColorA: verts[i+5],
		})
		indices = append(indices, uint16(len(indices)%65532))
	}
	return vertices, indices
}

func floatRGBA(c []float32) color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c[0]) * 255),
		G: uint8(clamp01(c[1]) * 255),
		B: uint8(clamp01(c[2]) * 255),
		A: uint8(clamp01(c[3]) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
