package clouds

import (
	"encoding/binary"
	"fmt"
	"math"
)

// VertexStride is the byte stride of one position in a vertex buffer
// (float32x3 at location 0).
const VertexStride = 12

// Mesh is an indexed triangle list of local positions.
type Mesh struct {
	Positions []Vec3
	Indices   []uint32
}

// FullscreenQuad returns the quad with corners (-1,-1,0), (1,-1,0), (1,1,0)
// and (-1,1,0), split along the (-1,-1)-(1,1) diagonal.
func FullscreenQuad() Mesh {
	return FullscreenQuadAt(0)
}

// FullscreenQuadAt returns the full-screen quad with every vertex at local
// depth z. The clip position ignores z; only the ray direction sees it.
func FullscreenQuadAt(z float32) Mesh {
	return Mesh{
		Positions: []Vec3{
			{X: -1, Y: -1, Z: z},
			{X: 1, Y: -1, Z: z},
			{X: 1, Y: 1, Z: z},
			{X: -1, Y: 1, Z: z},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// FullscreenTriangle returns a single triangle whose clip-space extent
// contains the whole [-1,1]² viewport.
func FullscreenTriangle() Mesh {
	return Mesh{
		Positions: []Vec3{
			{X: -1, Y: -1, Z: 0},
			{X: 3, Y: -1, Z: 0},
			{X: -1, Y: 3, Z: 0},
		},
		Indices: []uint32{0, 1, 2},
	}
}

// TriangleCount returns the number of triangles in the index list.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Validate checks that the index list forms whole triangles and references
// existing vertices.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a whole number of triangles", ErrIndexOutOfRange, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			return fmt.Errorf("%w: index %d = %d, have %d vertices", ErrIndexOutOfRange, i, idx, len(m.Positions))
		}
	}
	return nil
}

// VertexBytes encodes Positions for a float32x3 vertex buffer.
func (m *Mesh) VertexBytes() []byte {
	buf := make([]byte, len(m.Positions)*VertexStride)
	for i, p := range m.Positions {
		o := i * VertexStride
		binary.LittleEndian.PutUint32(buf[o:o+4], math.Float32bits(p.X))
		binary.LittleEndian.PutUint32(buf[o+4:o+8], math.Float32bits(p.Y))
		binary.LittleEndian.PutUint32(buf[o+8:o+12], math.Float32bits(p.Z))
	}
	return buf
}

// IndexBytes encodes Indices for a uint32 index buffer.
func (m *Mesh) IndexBytes() []byte {
	buf := make([]byte, len(m.Indices)*4)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}
