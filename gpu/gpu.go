//go:build !nogpu

// Package gpu runs the clouds view-ray pass on a wgpu HAL device.
//
// The pass is intended for the sky stage of a frame: it draws after opaque
// geometry, tests against the existing depth buffer (LessEqual, no write) and
// writes the interpolated view-ray direction as color.
//
// Hosts that own a render pass call [SkyPipeline.PrepareFrame] and
// [SkyPipeline.RecordDraw]. [SkyPipeline.Render] renders into an offscreen
// target and reads the result back, which is what the cloudray CLI and the
// tests use.
//
// Usage:
//
//	p, err := gpu.NewFromProvider(provider)
//	if err != nil { ... }
//	defer p.Destroy()
//	img, err := p.Render(clouds.DefaultBindings(), clouds.FullscreenQuad(), 640, 480)
package gpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// NewFromProvider creates a SkyPipeline on a shared GPU device. The provider
// must also implement HalDevice() any and HalQueue() any returning hal.Device
// and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider) (*SkyPipeline, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("clouds/gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("clouds/gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("clouds/gpu: provider HalQueue is not hal.Queue")
	}
	return New(device, queue), nil
}
