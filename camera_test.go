package clouds

import (
	"math"
	"testing"
)

func TestDefaultOrbitCamera(t *testing.T) {
	c := DefaultOrbitCamera()
	if c.Distance != 15 || c.Angles != V2(0, 0.4) {
		t.Errorf("DefaultOrbitCamera() = %+v", c)
	}
	if l := c.Position().Length(); math.Abs(float64(l-15)) > 1e-4 {
		t.Errorf("|Position()| = %v, want 15", l)
	}
}

func TestOrbitCameraPosition(t *testing.T) {
	tests := []struct {
		name   string
		angles Vec2
		want   Vec3
	}{
		{"behind origin", V2(0, 0), V3(0, 0, -1)},
		{"yaw quarter turn", V2(math.Pi/2, 0), V3(1, 0, 0)},
		{"straight up", V2(0, math.Pi/2), V3(0, 1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := OrbitCamera{Distance: 1, Angles: tt.angles}
			if got := c.Position(); !got.Approx(tt.want, 1e-6) {
				t.Errorf("Position() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrbitCameraRotateClampsPitch(t *testing.T) {
	c := DefaultOrbitCamera()
	c.Rotate(500, 0)
	if math.Abs(float64(c.Angles.X-0.5)) > 1e-6 {
		t.Errorf("yaw after 500 units = %v, want 0.5", c.Angles.X)
	}

	c.Rotate(0, 1e6)
	if c.Angles.Y != math.Pi/2 {
		t.Errorf("pitch = %v, want clamped to π/2", c.Angles.Y)
	}
	c.Rotate(0, -1e7)
	if c.Angles.Y != -math.Pi/2 {
		t.Errorf("pitch = %v, want clamped to -π/2", c.Angles.Y)
	}
}

func TestOrbitCameraTransformLooksAtOrigin(t *testing.T) {
	c := OrbitCamera{Distance: 10, Angles: V2(0.7, 0.3)}
	m := c.Transform()

	if got := m.Translation(); !got.Approx(c.Position(), 1e-5) {
		t.Errorf("translation = %v, want %v", got, c.Position())
	}

	// The camera looks down its local -Z.
	forward := m.MulVec4(V4(0, 0, -1, 0)).XYZ()
	toOrigin := c.Position().Mul(-1).Normalize()
	if !forward.Approx(toOrigin, 1e-5) {
		t.Errorf("forward = %v, want %v", forward, toOrigin)
	}

	// Orthonormal basis.
	for i := range 3 {
		col := m.Col(i).XYZ()
		if l := col.Length(); math.Abs(float64(l-1)) > 1e-5 {
			t.Errorf("|col %d| = %v, want 1", i, l)
		}
	}
	if d := m.Col(0).XYZ().Dot(m.Col(1).XYZ()); math.Abs(float64(d)) > 1e-5 {
		t.Errorf("right·up = %v, want 0", d)
	}

	// Right stays horizontal for a Y-up camera.
	if r := m.Col(0).XYZ(); math.Abs(float64(r.Y)) > 1e-6 {
		t.Errorf("right = %v, want no Y component", r)
	}
}
