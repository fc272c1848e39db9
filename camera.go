package clouds

import "math"

// Default orbit camera parameters.
const (
	DefaultOrbitDistance = 15
	DefaultOrbitPitch    = 0.4

	// orbitSensitivity converts raw mouse motion into radians.
	orbitSensitivity = 1.0 / 1000
)

// OrbitCamera circles the world origin at a fixed distance.
// Angles.X is the yaw and Angles.Y the pitch, both in radians.
type OrbitCamera struct {
	Distance float32
	Angles   Vec2
}

// DefaultOrbitCamera returns a camera 15 units out, pitched 0.4 rad up.
func DefaultOrbitCamera() OrbitCamera {
	return OrbitCamera{
		Distance: DefaultOrbitDistance,
		Angles:   Vec2{X: 0, Y: DefaultOrbitPitch},
	}
}

// Rotate applies a mouse motion delta. Pitch is clamped to [-π/2, π/2].
func (c *OrbitCamera) Rotate(dx, dy float32) {
	c.Angles = c.Angles.Add(Vec2{X: dx, Y: dy}.Mul(orbitSensitivity))
	c.Angles.Y = clamp32(c.Angles.Y, -math.Pi/2, math.Pi/2)
}

// Position returns the camera position in world space.
func (c OrbitCamera) Position() Vec3 {
	sy, cy := sincos(c.Angles.X)
	sp, cp := sincos(c.Angles.Y)
	return Vec3{X: sy * cp, Y: sp, Z: -cy * cp}.Mul(c.Distance)
}

// Transform returns the camera-to-world matrix of a camera at Position
// looking at the origin with +Y up.
func (c OrbitCamera) Transform() Mat4 {
	return LookAt(c.Position(), Vec3{}, Vec3{Y: 1})
}

// LookAt returns the camera-to-world transform of a camera at eye looking at
// target. The columns are right, up, back and eye; the camera looks down its
// local -Z. When eye == target or up is parallel to the view axis the basis
// is degenerate and contains NaN.
func LookAt(eye, target, up Vec3) Mat4 {
	back := eye.Sub(target).Normalize()
	right := up.Cross(back).Normalize()
	trueUp := back.Cross(right)
	return FromCols(right.Extend(0), trueUp.Extend(0), back.Extend(0), eye.Extend(1))
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
