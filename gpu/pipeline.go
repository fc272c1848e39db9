//go:build !nogpu

package gpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/clouds"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Formats of the offscreen targets and of the attachments RecordDraw expects.
const (
	ColorFormat = gputypes.TextureFormatRGBA8Unorm
	DepthFormat = gputypes.TextureFormatDepth24PlusStencil8
)

// SkyPipeline owns the render pipeline of the view-ray pass and, once
// Render has been called, an offscreen color and depth target.
type SkyPipeline struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue

	// Set by OpenDefault, which owns the device and instance.
	instance   hal.Instance
	ownsDevice bool

	shader     hal.ShaderModule
	viewLayout hal.BindGroupLayout
	meshLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline

	width     uint32
	height    uint32
	colorTex  hal.Texture
	colorView hal.TextureView
	depthTex  hal.Texture
	depthView hal.TextureView
}

// New creates a SkyPipeline for the given device and queue. GPU objects are
// created lazily by EnsurePipeline or Render.
func New(device hal.Device, queue hal.Queue) *SkyPipeline {
	return &SkyPipeline{
		device: device,
		queue:  queue,
	}
}

// EnsurePipeline creates the shader, layouts and render pipeline if they
// don't already exist.
func (p *SkyPipeline) EnsurePipeline() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ensurePipeline()
}

func (p *SkyPipeline) ensurePipeline() error {
	if p.pipeline != nil {
		return nil
	}
	return p.createPipeline()
}

// Destroy releases all GPU resources, and the device when the pipeline
// owns it. Safe to call more than once.
func (p *SkyPipeline) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.destroyTextures()
	p.destroyPipeline()
	if p.ownsDevice {
		p.device.Destroy()
		p.device = nil
		p.queue = nil
		if p.instance != nil {
			p.instance.Destroy()
			p.instance = nil
		}
		p.ownsDevice = false
	}
}

// VertexLayout returns the vertex buffer layout of the pass: one float32x3
// position at location 0.
func VertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: clouds.VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: clouds.PositionSlot},
			},
		},
	}
}

func uniformLayoutDescriptor(label string, visibility gputypes.ShaderStage) *hal.BindGroupLayoutDescriptor {
	return &hal.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: visibility,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	}
}

// createPipeline compiles the shader and creates the depth-tested render
// pipeline. The depth test is LessEqual against the host's depth buffer with
// writes disabled; the stencil is ignored.
func (p *SkyPipeline) createPipeline() error {
	if clouds.ShaderSource == "" {
		return clouds.ErrEmptyShader
	}

	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "clouds_shader",
		Source: hal.ShaderSource{WGSL: clouds.ShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile clouds shader: %w", err)
	}
	p.shader = shader

	viewLayout, err := p.device.CreateBindGroupLayout(
		uniformLayoutDescriptor("clouds_view_layout", gputypes.ShaderStageVertex|gputypes.ShaderStageFragment))
	if err != nil {
		p.destroyPipeline()
		return fmt.Errorf("create view layout: %w", err)
	}
	p.viewLayout = viewLayout

	meshLayout, err := p.device.CreateBindGroupLayout(
		uniformLayoutDescriptor("clouds_mesh_layout", gputypes.ShaderStageVertex))
	if err != nil {
		p.destroyPipeline()
		return fmt.Errorf("create mesh layout: %w", err)
	}
	p.meshLayout = meshLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "clouds_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.viewLayout, p.meshLayout},
	})
	if err != nil {
		p.destroyPipeline()
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	keep := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "clouds_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: clouds.VertexEntryPoint,
			Buffers:    VertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: clouds.FragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    ColorFormat,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: false,
			DepthCompare:      gputypes.CompareFunctionLessEqual,
			StencilFront:      keep,
			StencilBack:       keep,
			StencilReadMask:   0x00,
			StencilWriteMask:  0x00,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		p.destroyPipeline()
		return fmt.Errorf("create clouds pipeline: %w", err)
	}
	p.pipeline = pipeline

	clouds.Logger().Debug("clouds pipeline created", "color", ColorFormat, "depth", DepthFormat)
	return nil
}

// destroyPipeline releases pipeline resources in reverse creation order.
func (p *SkyPipeline) destroyPipeline() {
	if p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.meshLayout != nil {
		p.device.DestroyBindGroupLayout(p.meshLayout)
		p.meshLayout = nil
	}
	if p.viewLayout != nil {
		p.device.DestroyBindGroupLayout(p.viewLayout)
		p.viewLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
