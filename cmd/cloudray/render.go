package main

import (
	"context"
	"image"
	"log/slog"

	"github.com/gogpu/clouds"
	"github.com/gogpu/clouds/gpu"
)

const (
	nearPlane = 0.1
	farPlane  = 1000
)

// frameRenderer produces one 8-bit image of the pass per camera position.
type frameRenderer interface {
	Render(ctx context.Context, cam clouds.OrbitCamera) (*image.RGBA, error)
	Close()
}

// bindings builds the uniform bundles for cam.
func bindings(cfg Config, cam clouds.OrbitCamera) clouds.Bindings {
	aspect := float32(cfg.Width) / float32(cfg.Height)
	proj := clouds.PerspectiveRH(float32(cfg.FOV), aspect, nearPlane, farPlane)
	b := clouds.DefaultBindings()
	b.View = clouds.NewViewUniform(cam.Transform(), proj, cfg.Width, cfg.Height, nearPlane, farPlane)
	return b
}

// camera returns the orbit camera for cfg, advanced by yaw radians.
func camera(cfg Config, yaw float64) clouds.OrbitCamera {
	return clouds.OrbitCamera{
		Distance: float32(cfg.Distance),
		Angles:   clouds.V2(float32(cfg.Yaw+yaw), float32(cfg.Pitch)),
	}
}

type cpuRenderer struct {
	cfg   Config
	r     *clouds.Renderer
	frame *clouds.Frame
	mesh  clouds.Mesh
}

func newCPURenderer(cfg Config) (*cpuRenderer, error) {
	frame, err := clouds.NewFrame(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	return &cpuRenderer{
		cfg:   cfg,
		r:     clouds.NewRenderer(clouds.WithWorkers(cfg.Workers)),
		frame: frame,
		mesh:  clouds.FullscreenQuadAt(float32(cfg.RayZ)),
	}, nil
}

func (c *cpuRenderer) Render(ctx context.Context, cam clouds.OrbitCamera) (*image.RGBA, error) {
	c.frame.Clear(clouds.Vec4{})
	c.frame.ClearDepth(1)
	if err := c.r.Draw(ctx, c.frame, bindings(c.cfg, cam), c.mesh); err != nil {
		return nil, err
	}
	return c.frame.ToImage(), nil
}

func (c *cpuRenderer) Close() {
	c.r.Close()
}

type gpuRenderer struct {
	cfg  Config
	p    *gpu.SkyPipeline
	mesh clouds.Mesh
}

func (g *gpuRenderer) Render(ctx context.Context, cam clouds.OrbitCamera) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.p.Render(bindings(g.cfg, cam), g.mesh, g.cfg.Width, g.cfg.Height)
}

func (g *gpuRenderer) Close() {
	g.p.Destroy()
}

// newFrameRenderer returns the GPU renderer when requested and available,
// and the software renderer otherwise.
func newFrameRenderer(cfg Config, logger *slog.Logger) (frameRenderer, error) {
	if cfg.GPU {
		p, err := gpu.OpenDefault()
		if err == nil {
			return &gpuRenderer{cfg: cfg, p: p, mesh: clouds.FullscreenQuadAt(float32(cfg.RayZ))}, nil
		}
		logger.Warn("GPU not available, using software renderer", "err", err)
	}
	return newCPURenderer(cfg)
}
