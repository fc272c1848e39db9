package clouds

import (
	"encoding/binary"
	"math"
	"testing"
)

func f32At(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestViewUniformBytesLayout(t *testing.T) {
	cam := LookAt(V3(1, 2, 3), Vec3{}, V3(0, 1, 0))
	proj := PerspectiveRH(1, 2, 0.1, 100)
	v := NewViewUniform(cam, proj, 640, 320, 0.1, 100)

	buf := v.Bytes()
	if len(buf) != ViewUniformSize {
		t.Fatalf("len(Bytes()) = %d, want %d", len(buf), ViewUniformSize)
	}

	// view matrix at offset 64, column-major.
	for i, want := range v.View {
		if got := f32At(buf, 64+i*4); got != want {
			t.Errorf("view[%d] = %v, want %v", i, got, want)
		}
	}

	tests := []struct {
		name string
		off  int
		want float32
	}{
		{"world_position.x", 256, 1},
		{"world_position.y", 260, 2},
		{"world_position.z", 264, 3},
		{"near", 268, 0.1},
		{"far", 272, 100},
		{"width", 276, 640},
		{"height", 280, 320},
		{"padding", 284, 0},
	}
	for _, tt := range tests {
		if got := f32At(buf, tt.off); math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("%s at %d = %v, want %v", tt.name, tt.off, got, tt.want)
		}
	}
}

func TestNewViewUniformDerivedMatrices(t *testing.T) {
	cam := LookAt(V3(0, 5, -10), Vec3{}, V3(0, 1, 0))
	proj := PerspectiveRH(1.2, 1, 0.1, 100)
	v := NewViewUniform(cam, proj, 1, 1, 0.1, 100)

	if !v.View.Mul(v.InverseView).Approx(Identity(), 1e-5) {
		t.Error("InverseView is not the inverse of View")
	}
	if !v.ViewProj.Approx(proj.Mul(v.InverseView), 1e-6) {
		t.Error("ViewProj != Projection * InverseView")
	}

	// The origin is in front of the camera, so it projects inside the
	// depth range.
	c := v.ViewProj.MulVec4(V4(0, 0, 0, 1))
	if z := c.Z / c.W; z <= 0 || z >= 1 {
		t.Errorf("origin depth = %v, want in (0, 1)", z)
	}
}

func TestMeshUniformBytesLayout(t *testing.T) {
	m := IdentityMesh()
	m.Flags = 0xdeadbeef
	buf := m.Bytes()
	if len(buf) != MeshUniformSize {
		t.Fatalf("len(Bytes()) = %d, want %d", len(buf), MeshUniformSize)
	}
	if got := binary.LittleEndian.Uint32(buf[128:]); got != 0xdeadbeef {
		t.Errorf("flags = %#x, want 0xdeadbeef", got)
	}
	if f32At(buf, 0) != 1 || f32At(buf, 64) != 1 {
		t.Error("identity matrices not encoded")
	}
	for i := 132; i < MeshUniformSize; i++ {
		if buf[i] != 0 {
			t.Fatalf("padding byte %d = %d, want 0", i, buf[i])
		}
	}
}

func TestDefaultBindings(t *testing.T) {
	b := DefaultBindings()
	if b.View.View != Identity() {
		t.Errorf("default view = %v, want identity", b.View.View)
	}
	if b.Mesh.Model != Identity() {
		t.Errorf("default model = %v, want identity", b.Mesh.Model)
	}
}
