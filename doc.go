// Package clouds implements the full-screen view-ray pass that opens a
// clouds rendering pass: for every pixel it reconstructs the camera ray
// through that pixel and writes the ray direction as the pixel color.
//
// # Overview
//
// The pass is a WGSL shader (ShaderSource) with two stages:
//
//   - vs_main pins each vertex of a full-screen primitive to the far plane,
//     clip position (x, y, 1, 1), and rotates the vertex position, taken as a
//     direction, by the view matrix into a normalized ray direction.
//   - fs_main writes the interpolated ray direction as RGB with alpha 1.
//
// VertexStage and FragmentStage are the same two stages as Go functions.
// Renderer runs them on the CPU with a software rasterizer that interpolates
// the ray direction linearly across each triangle, which makes the pass
// testable without a GPU. The gpu sub-package builds the equivalent
// gogpu/wgpu render pipeline.
//
// # Quick Start
//
//	r := clouds.NewRenderer()
//	defer r.Close()
//
//	frame, _ := clouds.NewFrame(512, 512)
//	cam := clouds.DefaultOrbitCamera()
//	b := clouds.DefaultBindings()
//	b.View = clouds.NewViewUniform(cam.Transform(), clouds.Identity(), 512, 512, 0.1, 1000)
//
//	if err := r.Draw(ctx, frame, b, clouds.FullscreenQuad()); err != nil {
//	    return err
//	}
//	_ = frame.SavePNG("rays.png")
//
// # Numerics
//
// The interpolated direction is not re-normalized per pixel, so its length
// drops below 1 between vertices. A zero vertex position normalizes to NaN.
// Both are properties of the pass, not errors; Frame.ToImage stores NaN and
// negative channels as 0, like a unorm color attachment.
//
// # Coordinate System
//
//   - Clip/NDC: x right, y up, depth 0 (near) to 1 (far)
//   - Window: origin top-left, y down, pixel centers at +0.5
//   - Matrices: column-major, column vectors (WGSL convention)
package clouds
