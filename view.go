package clouds

import (
	"encoding/binary"
	"math"
)

// ViewUniformSize is the byte size of the view uniform bundle in the WGSL
// uniform address space.
// Layout:
//
//	view_proj      mat4x4<f32>  offset   0
//	view           mat4x4<f32>  offset  64
//	inverse_view   mat4x4<f32>  offset 128
//	projection     mat4x4<f32>  offset 192
//	world_position vec3<f32>    offset 256
//	near           f32          offset 268
//	far            f32          offset 272
//	width          f32          offset 276
//	height         f32          offset 280
//	(padding to 16-byte struct alignment)
//
// Total = 288 bytes.
const ViewUniformSize = 288

// MeshUniformSize is the byte size of the mesh uniform bundle.
// Layout: model (mat4x4<f32>) + inverse_transpose_model (mat4x4<f32>) +
// flags (u32) + padding = 144 bytes.
const MeshUniformSize = 144

// ViewUniform is the per-frame camera bundle bound at group(0) binding(0).
// The host fills it once per frame; the pass only reads View.
//
// View is the camera's transform (camera space to world space). Applied to a
// direction it rotates a camera-local ray into world orientation.
type ViewUniform struct {
	ViewProj      Mat4
	View          Mat4
	InverseView   Mat4
	Projection    Mat4
	WorldPosition Vec3
	Near          float32
	Far           float32
	Width         float32
	Height        float32
}

// NewViewUniform derives a complete view bundle from a camera transform and
// a projection. A singular camera transform leaves InverseView and ViewProj
// zeroed; the pass itself never reads them.
func NewViewUniform(cameraTransform, projection Mat4, width, height int, near, far float32) ViewUniform {
	inv, _ := cameraTransform.Inverse()
	return ViewUniform{
		ViewProj:      projection.Mul(inv),
		View:          cameraTransform,
		InverseView:   inv,
		Projection:    projection,
		WorldPosition: cameraTransform.Translation(),
		Near:          near,
		Far:           far,
		Width:         float32(width),
		Height:        float32(height),
	}
}

// IdentityView returns a view bundle whose camera sits at the origin looking
// down -Z, with identity projection.
func IdentityView() ViewUniform {
	return NewViewUniform(Identity(), Identity(), 1, 1, 0, 1)
}

// Bytes encodes the bundle in its uniform buffer layout.
func (v *ViewUniform) Bytes() []byte {
	buf := make([]byte, 0, ViewUniformSize)
	buf = v.ViewProj.AppendBytes(buf)
	buf = v.View.AppendBytes(buf)
	buf = v.InverseView.AppendBytes(buf)
	buf = v.Projection.AppendBytes(buf)
	buf = appendFloat32(buf, v.WorldPosition.X, v.WorldPosition.Y, v.WorldPosition.Z)
	buf = appendFloat32(buf, v.Near, v.Far, v.Width, v.Height)
	return append(buf, make([]byte, ViewUniformSize-len(buf))...)
}

// MeshUniform is the per-mesh bundle bound at group(1) binding(0). The pass
// declares it so its pipeline layout matches the host's mesh pipelines; no
// stage reads it.
type MeshUniform struct {
	Model                 Mat4
	InverseTransposeModel Mat4
	Flags                 uint32
}

// IdentityMesh returns a mesh bundle with identity transforms.
func IdentityMesh() MeshUniform {
	return MeshUniform{Model: Identity(), InverseTransposeModel: Identity()}
}

// Bytes encodes the bundle in its uniform buffer layout.
func (m *MeshUniform) Bytes() []byte {
	buf := make([]byte, 0, MeshUniformSize)
	buf = m.Model.AppendBytes(buf)
	buf = m.InverseTransposeModel.AppendBytes(buf)
	buf = binary.LittleEndian.AppendUint32(buf, m.Flags)
	return append(buf, make([]byte, MeshUniformSize-len(buf))...)
}

// Bindings groups everything a draw of the pass binds besides geometry.
type Bindings struct {
	View ViewUniform
	Mesh MeshUniform
}

// DefaultBindings returns identity view and mesh bundles.
func DefaultBindings() Bindings {
	return Bindings{View: IdentityView(), Mesh: IdentityMesh()}
}

func appendFloat32(buf []byte, vs ...float32) []byte {
	for _, v := range vs {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}
