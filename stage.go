package clouds

// VertexInput is one vertex fetched from attribute location 0.
type VertexInput struct {
	Position Vec3
}

// VertexOutput is what the vertex stage hands to the rasterizer.
// ClipPosition is consumed by the rasterizer only; RayDirection is the
// single varying interpolated across the primitive.
type VertexOutput struct {
	ClipPosition Vec4
	RayDirection Vec3
}

// FragmentInput carries the interpolated varying for one pixel.
type FragmentInput struct {
	RayDirection Vec3
}

// VertexStage is the Go rendition of vs_main.
//
// The clip position reuses the input x/y with z = w = 1, so every vertex
// lands on the far plane after the perspective divide. The ray direction is
// the input position taken as a direction (w = 0), rotated by view.View and
// normalized; translation in view.View has no effect. A zero position yields
// NaN components.
func VertexStage(view ViewUniform, in VertexInput) VertexOutput {
	p := in.Position
	return VertexOutput{
		ClipPosition: Vec4{X: p.X, Y: p.Y, Z: 1, W: 1},
		RayDirection: view.View.MulVec4(p.Extend(0)).XYZ().Normalize(),
	}
}

// FragmentStage is the Go rendition of fs_main. The direction is written as
// RGB without re-normalization or remapping; alpha is always 1.
func FragmentStage(in FragmentInput) Vec4 {
	return in.RayDirection.Extend(1)
}
