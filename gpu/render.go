//go:build !nogpu

package gpu

import (
	"fmt"
	"image"
	"time"

	"github.com/gogpu/clouds"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// readbackTimeout bounds the wait for the GPU to finish a Render.
const readbackTimeout = 5 * time.Second

// Render draws mesh with the given bindings into an offscreen target of
// width x height and reads the color attachment back. The depth attachment
// is cleared to the far plane, so with the LessEqual test every fragment of
// the pass is kept.
func (p *SkyPipeline) Render(b clouds.Bindings, mesh clouds.Mesh, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", clouds.ErrInvalidSize, width, height)
	}
	if err := mesh.Validate(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	w, h := uint32(width), uint32(height) //nolint:gosec // dimensions checked positive
	if err := p.ensureReady(w, h); err != nil {
		return nil, err
	}

	var res *FrameResources
	if mesh.TriangleCount() > 0 {
		var err error
		res, err = p.prepareFrame(b, mesh)
		if err != nil {
			return nil, err
		}
		defer res.destroy(p.device)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if err := p.encodeAndReadback(w, h, res, img.Pix); err != nil {
		return nil, err
	}

	clouds.Logger().Debug("clouds gpu render",
		"width", width,
		"height", height,
		"vertices", res.VertexCount(),
	)
	return img, nil
}

// Size returns the current offscreen target dimensions.
func (p *SkyPipeline) Size() (uint32, uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

// ensureReady creates textures and the pipeline if needed.
func (p *SkyPipeline) ensureReady(w, h uint32) error {
	if err := p.ensureTextures(w, h); err != nil {
		return fmt.Errorf("ensure textures: %w", err)
	}
	if err := p.ensurePipeline(); err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	return nil
}

// ensureTextures creates or recreates the color and depth targets if the
// requested dimensions differ from the current size.
func (p *SkyPipeline) ensureTextures(w, h uint32) error {
	if p.width == w && p.height == h && p.colorTex != nil {
		return nil
	}
	p.destroyTextures()

	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	colorTex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "clouds_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        ColorFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create color texture: %w", err)
	}
	p.colorTex = colorTex

	colorView, err := p.device.CreateTextureView(colorTex, &hal.TextureViewDescriptor{
		Label:         "clouds_color_view",
		Format:        ColorFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		p.destroyTextures()
		return fmt.Errorf("create color view: %w", err)
	}
	p.colorView = colorView

	depthTex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "clouds_depth",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		p.destroyTextures()
		return fmt.Errorf("create depth texture: %w", err)
	}
	p.depthTex = depthTex

	depthView, err := p.device.CreateTextureView(depthTex, &hal.TextureViewDescriptor{
		Label:         "clouds_depth_view",
		Format:        DepthFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		p.destroyTextures()
		return fmt.Errorf("create depth view: %w", err)
	}
	p.depthView = depthView

	p.width = w
	p.height = h
	return nil
}

// destroyTextures releases the offscreen targets and resets dimensions.
func (p *SkyPipeline) destroyTextures() {
	if p.device == nil {
		return
	}
	if p.depthView != nil {
		p.device.DestroyTextureView(p.depthView)
		p.depthView = nil
	}
	if p.depthTex != nil {
		p.device.DestroyTexture(p.depthTex)
		p.depthTex = nil
	}
	if p.colorView != nil {
		p.device.DestroyTextureView(p.colorView)
		p.colorView = nil
	}
	if p.colorTex != nil {
		p.device.DestroyTexture(p.colorTex)
		p.colorTex = nil
	}
	p.width = 0
	p.height = 0
}

// encodeAndReadback encodes the pass, copies the color target to a staging
// buffer, submits, waits, and reads the pixels into dst.
func (p *SkyPipeline) encodeAndReadback(w, h uint32, res *FrameResources, dst []byte) error {
	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "clouds_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("clouds_render"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "clouds_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       p.colorView,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
			},
		},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              p.depthView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		},
	})
	p.RecordDraw(rp, res)
	rp.End()

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: p.colorTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	pixelBufSize := uint64(w) * uint64(h) * 4
	stagingBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "clouds_staging",
		Size:  pixelBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer p.device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(p.colorTex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: p.colorTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer p.device.FreeCommandBuffer(cmdBuf)

	fence, err := p.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer p.device.DestroyFence(fence)

	if err := p.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := p.device.Wait(fence, 1, readbackTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	if err := p.queue.ReadBuffer(stagingBuf, 0, dst); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	return nil
}
