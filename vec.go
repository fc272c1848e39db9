package clouds

import "math"

// Vec2 is a 2-component float32 vector.
type Vec2 struct {
	X, Y float32
}

// V2 is a convenience function to create a Vec2.
func V2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

// Mul returns the vector scaled by a scalar.
func (v Vec2) Mul(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Vec3 is a 3-component float32 vector, the Go counterpart of WGSL vec3<f32>.
type Vec3 struct {
	X, Y, Z float32
}

// V3 is a convenience function to create a Vec3.
func V3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

// Mul returns the vector scaled by a scalar.
func (v Vec3) Mul(s float32) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(w Vec3) float32 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Cross returns the cross product v × w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

// Length returns the Euclidean length of the vector.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// Normalize returns the vector divided by its length, matching WGSL
// normalize(). The zero vector is not special-cased: every component
// becomes 0/0, which is NaN.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	return Vec3{X: v.X / l, Y: v.Y / l, Z: v.Z / l}
}

// Extend returns the 4-component vector (x, y, z, w).
func (v Vec3) Extend(w float32) Vec4 {
	return Vec4{X: v.X, Y: v.Y, Z: v.Z, W: w}
}

// IsNaN reports whether any component is NaN.
func (v Vec3) IsNaN() bool {
	return isNaN32(v.X) || isNaN32(v.Y) || isNaN32(v.Z)
}

// Approx reports whether v and w are equal within epsilon per component.
func (v Vec3) Approx(w Vec3, epsilon float32) bool {
	return abs32(v.X-w.X) <= epsilon &&
		abs32(v.Y-w.Y) <= epsilon &&
		abs32(v.Z-w.Z) <= epsilon
}

// Vec4 is a 4-component float32 vector, the Go counterpart of WGSL vec4<f32>.
type Vec4 struct {
	X, Y, Z, W float32
}

// V4 is a convenience function to create a Vec4.
func V4(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

// XYZ drops the w component.
func (v Vec4) XYZ() Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// Approx reports whether v and w are equal within epsilon per component.
func (v Vec4) Approx(w Vec4, epsilon float32) bool {
	return v.XYZ().Approx(w.XYZ(), epsilon) && abs32(v.W-w.W) <= epsilon
}

func isNaN32(f float32) bool {
	return f != f
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
