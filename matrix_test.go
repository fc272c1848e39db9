package clouds

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestMat4Identity(t *testing.T) {
	v := V4(1, -2, 3, 0.5)
	if got := Identity().MulVec4(v); got != v {
		t.Errorf("Identity().MulVec4(%v) = %v", v, got)
	}
}

func TestMat4ColumnMajorLayout(t *testing.T) {
	m := Translation(V3(7, 8, 9))
	if m.At(0, 3) != 7 || m.At(1, 3) != 8 || m.At(2, 3) != 9 {
		t.Errorf("translation not in column 3: %v", m)
	}
	if m[12] != 7 || m[13] != 8 || m[14] != 9 {
		t.Errorf("translation not at indices 12..14: %v", m)
	}
	if m.Col(3) != V4(7, 8, 9, 1) {
		t.Errorf("Col(3) = %v, want (7, 8, 9, 1)", m.Col(3))
	}
}

func TestMat4TranslationAffectsPointsOnly(t *testing.T) {
	m := Translation(V3(1, 2, 3))
	if got := m.MulVec4(V4(1, 1, 1, 1)); got != V4(2, 3, 4, 1) {
		t.Errorf("point = %v, want (2, 3, 4, 1)", got)
	}
	if got := m.MulVec4(V4(1, 1, 1, 0)); got != V4(1, 1, 1, 0) {
		t.Errorf("direction = %v, want (1, 1, 1, 0)", got)
	}
}

func TestMat4Rotations(t *testing.T) {
	const q = math.Pi / 2
	tests := []struct {
		name string
		m    Mat4
		in   Vec3
		want Vec3
	}{
		{"X: y to z", RotationX(q), V3(0, 1, 0), V3(0, 0, 1)},
		{"Y: z to x", RotationY(q), V3(0, 0, 1), V3(1, 0, 0)},
		{"Z: x to y", RotationZ(q), V3(1, 0, 0), V3(0, 1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.MulVec4(tt.in.Extend(0)).XYZ()
			if !got.Approx(tt.want, 1e-6) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMat4MulComposes(t *testing.T) {
	a := RotationY(0.4).Mul(Translation(V3(1, 0, 0)))
	b := RotationX(-1.2)
	v := V4(0.3, -0.7, 2, 1)

	got := a.Mul(b).MulVec4(v)
	want := a.MulVec4(b.MulVec4(v))
	if !got.Approx(want, 1e-5) {
		t.Errorf("(a*b)v = %v, a(bv) = %v", got, want)
	}
}

func TestMat4Transpose(t *testing.T) {
	m := RotationZ(0.3).Mul(Translation(V3(1, 2, 3)))
	if m.Transpose().Transpose() != m {
		t.Error("transpose is not an involution")
	}
	if m.Transpose().At(3, 0) != m.At(0, 3) {
		t.Error("transpose did not swap (0,3) and (3,0)")
	}
}

func TestMat4Inverse(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"identity", Identity()},
		{"translation", Translation(V3(-4, 5, 6))},
		{"rigid", RotationY(1).Mul(RotationX(0.5)).WithTranslation(V3(3, -1, 2))},
		{"perspective", PerspectiveRH(1, 1.5, 0.1, 100)},
		{"look at", LookAt(V3(3, 4, 5), Vec3{}, V3(0, 1, 0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.m.Inverse()
			if !ok {
				t.Fatal("Inverse reported singular")
			}
			if got := tt.m.Mul(inv); !got.Approx(Identity(), 1e-4) {
				t.Errorf("m * inv = %v, want identity", got)
			}
		})
	}
}

func TestMat4InverseSingular(t *testing.T) {
	for _, m := range []Mat4{{}, FromCols(V4(1, 0, 0, 0), V4(2, 0, 0, 0), V4(0, 0, 1, 0), V4(0, 0, 0, 1))} {
		if inv, ok := m.Inverse(); ok || inv != (Mat4{}) {
			t.Errorf("Inverse(%v) = %v, %v; want zero, false", m, inv, ok)
		}
	}
}

func TestPerspectiveRHDepthRange(t *testing.T) {
	const near, far = 0.5, 50
	p := PerspectiveRH(math.Pi/3, 16.0/9, near, far)

	tests := []struct {
		viewZ float32
		want  float32
	}{
		{-near, 0},
		{-far, 1},
	}
	for _, tt := range tests {
		c := p.MulVec4(V4(0, 0, tt.viewZ, 1))
		if got := c.Z / c.W; math.Abs(float64(got-tt.want)) > 1e-5 {
			t.Errorf("depth at z=%v = %v, want %v", tt.viewZ, got, tt.want)
		}
	}
}

func TestMat4AppendBytes(t *testing.T) {
	m := Translation(V3(1, 2, 3))
	buf := m.AppendBytes(nil)
	if len(buf) != 64 {
		t.Fatalf("len = %d, want 64", len(buf))
	}
	for i, want := range m {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		if got != want {
			t.Errorf("element %d = %v, want %v", i, got, want)
		}
	}
}
