package clouds

import (
	"context"
	"fmt"

	"github.com/gogpu/clouds/internal/parallel"
	"github.com/gogpu/clouds/internal/raster"
)

// Renderer executes the pass on the CPU: the vertex stage per vertex, then
// rasterization with linear interpolation of the ray direction, then the
// fragment stage per covered pixel.
//
// Row bands of the frame are shaded concurrently. Bands never share pixels
// and each processes triangles in submission order, so the output equals a
// serial draw.
//
// A Renderer is safe for concurrent use on different frames.
type Renderer struct {
	pool *parallel.WorkerPool
	opts options
}

// NewRenderer creates a software renderer. Call Close to stop its workers.
func NewRenderer(opts ...Option) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Renderer{
		pool: parallel.NewWorkerPool(o.workers),
		opts: o,
	}
}

// Close stops the renderer's workers. Close is safe to call multiple times.
func (r *Renderer) Close() {
	r.pool.Close()
}

// Workers returns the number of rasterization goroutines.
func (r *Renderer) Workers() int {
	return r.pool.Workers()
}

// Draw renders mesh into frame with the given bindings.
//
// If ctx is cancelled Draw stops scheduling bands and returns ctx.Err();
// the frame contents are then undefined.
func (r *Renderer) Draw(ctx context.Context, frame *Frame, b Bindings, mesh Mesh) error {
	if frame == nil {
		return fmt.Errorf("%w: nil frame", ErrInvalidSize)
	}
	if err := mesh.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tris := assemble(b.View, mesh)

	target := &raster.Target{
		Width:  frame.width,
		Height: frame.height,
		Color:  frame.color,
		Depth:  frame.depth,
	}
	state := raster.State{
		DepthCompare: r.opts.depthCompare,
		DepthWrite:   r.opts.depthWrite,
	}

	bands := raster.Bands(frame.height, r.opts.bandHeight)
	work := make([]func(), len(bands))
	for i, band := range bands {
		work[i] = func() {
			if ctx.Err() != nil {
				return
			}
			raster.DrawBand(target, tris, band[0], band[1], state, shadeFragment)
		}
	}
	r.pool.ExecuteAll(work)

	if err := ctx.Err(); err != nil {
		return err
	}

	Logger().Debug("clouds draw",
		"width", frame.width,
		"height", frame.height,
		"vertices", len(mesh.Positions),
		"triangles", len(tris),
		"bands", len(bands),
		"depth_compare", state.DepthCompare.String(),
	)
	return nil
}

// assemble runs the vertex stage once per vertex and builds the triangle
// list from the index buffer.
func assemble(view ViewUniform, mesh Mesh) []raster.Triangle {
	verts := make([]raster.Vertex, len(mesh.Positions))
	for i, p := range mesh.Positions {
		out := VertexStage(view, VertexInput{Position: p})
		verts[i] = raster.Vertex{
			Position: [4]float32{out.ClipPosition.X, out.ClipPosition.Y, out.ClipPosition.Z, out.ClipPosition.W},
			Varying:  [3]float32{out.RayDirection.X, out.RayDirection.Y, out.RayDirection.Z},
		}
	}

	tris := make([]raster.Triangle, mesh.TriangleCount())
	for i := range tris {
		tris[i] = raster.Triangle{
			verts[mesh.Indices[i*3]],
			verts[mesh.Indices[i*3+1]],
			verts[mesh.Indices[i*3+2]],
		}
	}
	return tris
}

func shadeFragment(_, _ int, varying [3]float32) [4]float32 {
	c := FragmentStage(FragmentInput{RayDirection: Vec3{X: varying[0], Y: varying[1], Z: varying[2]}})
	return [4]float32{c.X, c.Y, c.Z, c.W}
}
