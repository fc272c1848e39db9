//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/clouds"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// FrameResources holds the per-frame buffers and bind groups of one draw.
// Release it with SkyPipeline.ReleaseFrame after the command buffer that
// uses it has completed.
type FrameResources struct {
	vertBuf   hal.Buffer
	viewBuf   hal.Buffer
	meshBuf   hal.Buffer
	viewGroup hal.BindGroup
	meshGroup hal.BindGroup
	vertCount uint32
}

// VertexCount returns the number of vertices RecordDraw will draw.
func (r *FrameResources) VertexCount() uint32 {
	if r == nil {
		return 0
	}
	return r.vertCount
}

func (r *FrameResources) destroy(device hal.Device) {
	if r.meshGroup != nil {
		device.DestroyBindGroup(r.meshGroup)
	}
	if r.viewGroup != nil {
		device.DestroyBindGroup(r.viewGroup)
	}
	if r.meshBuf != nil {
		device.DestroyBuffer(r.meshBuf)
	}
	if r.viewBuf != nil {
		device.DestroyBuffer(r.viewBuf)
	}
	if r.vertBuf != nil {
		device.DestroyBuffer(r.vertBuf)
	}
}

// expandVertices resolves the index list into a flat triangle list so the
// pass draws without an index buffer.
func expandVertices(mesh clouds.Mesh) []byte {
	flat := clouds.Mesh{Positions: make([]clouds.Vec3, 0, len(mesh.Indices))}
	for _, idx := range mesh.Indices {
		flat.Positions = append(flat.Positions, mesh.Positions[idx])
	}
	return flat.VertexBytes()
}

// PrepareFrame uploads the mesh and both uniform bundles and builds the bind
// groups. It returns nil resources for a mesh with no triangles.
func (p *SkyPipeline) PrepareFrame(b clouds.Bindings, mesh clouds.Mesh) (*FrameResources, error) {
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	if mesh.TriangleCount() == 0 {
		return nil, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensurePipeline(); err != nil {
		return nil, err
	}
	return p.prepareFrame(b, mesh)
}

func (p *SkyPipeline) prepareFrame(b clouds.Bindings, mesh clouds.Mesh) (*FrameResources, error) {
	res := &FrameResources{vertCount: uint32(len(mesh.Indices))} //nolint:gosec // index count fits uint32

	var err error
	res.vertBuf, err = p.createAndUploadBuffer("clouds_verts", expandVertices(mesh),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		res.destroy(p.device)
		return nil, err
	}
	res.viewBuf, err = p.createAndUploadBuffer("clouds_view_uniform", b.View.Bytes(),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		res.destroy(p.device)
		return nil, err
	}
	res.meshBuf, err = p.createAndUploadBuffer("clouds_mesh_uniform", b.Mesh.Bytes(),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		res.destroy(p.device)
		return nil, err
	}

	res.viewGroup, err = p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "clouds_view_bind",
		Layout: p.viewLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: res.viewBuf.NativeHandle(), Offset: 0, Size: clouds.ViewUniformSize,
			}},
		},
	})
	if err != nil {
		res.destroy(p.device)
		return nil, fmt.Errorf("create view bind group: %w", err)
	}
	res.meshGroup, err = p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "clouds_mesh_bind",
		Layout: p.meshLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: res.meshBuf.NativeHandle(), Offset: 0, Size: clouds.MeshUniformSize,
			}},
		},
	})
	if err != nil {
		res.destroy(p.device)
		return nil, fmt.Errorf("create mesh bind group: %w", err)
	}
	return res, nil
}

// ReleaseFrame destroys resources created by PrepareFrame. Nil is a no-op.
func (p *SkyPipeline) ReleaseFrame(res *FrameResources) {
	if res == nil || p.device == nil {
		return
	}
	res.destroy(p.device)
}

// RecordDraw records the pass into a render pass owned by the host. The pass
// must have a ColorFormat color attachment and a DepthFormat depth/stencil
// attachment. It is a no-op if resources is nil.
func (p *SkyPipeline) RecordDraw(rp hal.RenderPassEncoder, res *FrameResources) {
	if res == nil || res.vertCount == 0 {
		return
	}
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(clouds.ViewGroup, res.viewGroup, nil)
	rp.SetBindGroup(clouds.MeshGroup, res.meshGroup, nil)
	rp.SetVertexBuffer(0, res.vertBuf, 0)
	rp.Draw(res.vertCount, 1, 0, 0)
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (p *SkyPipeline) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	p.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}
