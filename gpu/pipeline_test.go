//go:build !nogpu

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/clouds"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func newTestPipeline(t *testing.T) *SkyPipeline {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	p := New(device, queue)
	t.Cleanup(func() {
		p.Destroy()
		cleanup()
	})
	return p
}

func TestSkyPipelineNew(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p := New(device, queue)
	defer p.Destroy()

	if p.device != device || p.queue != queue {
		t.Error("device or queue not stored")
	}
	if p.shader != nil || p.pipeline != nil {
		t.Error("expected no GPU objects before EnsurePipeline")
	}
}

func TestSkyPipelineEnsurePipeline(t *testing.T) {
	p := newTestPipeline(t)

	if err := p.EnsurePipeline(); err != nil {
		t.Fatalf("EnsurePipeline: %v", err)
	}
	if p.shader == nil || p.viewLayout == nil || p.meshLayout == nil || p.pipeLayout == nil || p.pipeline == nil {
		t.Fatal("expected all pipeline objects after EnsurePipeline")
	}

	orig := p.pipeline
	if err := p.EnsurePipeline(); err != nil {
		t.Fatalf("second EnsurePipeline: %v", err)
	}
	if p.pipeline != orig {
		t.Error("pipeline was recreated unnecessarily")
	}
}

func TestSkyPipelineDestroy(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p := New(device, queue)
	if _, err := p.Render(clouds.DefaultBindings(), clouds.FullscreenQuad(), 16, 16); err != nil {
		t.Fatalf("Render: %v", err)
	}

	p.Destroy()
	if p.pipeline != nil || p.shader != nil || p.colorTex != nil || p.depthTex != nil {
		t.Error("expected all GPU objects released after Destroy")
	}
	if w, h := p.Size(); w != 0 || h != 0 {
		t.Errorf("Size() after Destroy = %dx%d, want 0x0", w, h)
	}

	// Double destroy is safe.
	p.Destroy()
}

func TestSkyPipelineRender(t *testing.T) {
	p := newTestPipeline(t)

	img, err := p.Render(clouds.DefaultBindings(), clouds.FullscreenQuad(), 64, 48)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("image bounds = %v, want 64x48", b)
	}
	if w, h := p.Size(); w != 64 || h != 48 {
		t.Errorf("Size() = %dx%d, want 64x48", w, h)
	}
	if p.pipeline == nil {
		t.Error("expected pipeline after Render")
	}
}

func TestSkyPipelineRenderResize(t *testing.T) {
	p := newTestPipeline(t)

	if _, err := p.Render(clouds.DefaultBindings(), clouds.FullscreenQuad(), 32, 32); err != nil {
		t.Fatalf("first Render: %v", err)
	}
	origTex := p.colorTex
	if _, err := p.Render(clouds.DefaultBindings(), clouds.FullscreenQuad(), 32, 32); err != nil {
		t.Fatalf("same-size Render: %v", err)
	}
	if p.colorTex != origTex {
		t.Error("color texture recreated for the same size")
	}
	if _, err := p.Render(clouds.DefaultBindings(), clouds.FullscreenTriangle(), 80, 20); err != nil {
		t.Fatalf("resized Render: %v", err)
	}
	if w, h := p.Size(); w != 80 || h != 20 {
		t.Errorf("Size() = %dx%d, want 80x20", w, h)
	}
}

func TestSkyPipelineRenderErrors(t *testing.T) {
	p := newTestPipeline(t)

	if _, err := p.Render(clouds.DefaultBindings(), clouds.FullscreenQuad(), 0, 10); !errors.Is(err, clouds.ErrInvalidSize) {
		t.Errorf("Render(0x10) = %v, want ErrInvalidSize", err)
	}
	bad := clouds.Mesh{Positions: []clouds.Vec3{{}}, Indices: []uint32{0, 1, 2}}
	if _, err := p.Render(clouds.DefaultBindings(), bad, 4, 4); !errors.Is(err, clouds.ErrIndexOutOfRange) {
		t.Errorf("Render(bad mesh) = %v, want ErrIndexOutOfRange", err)
	}
}

func TestSkyPipelineRenderEmptyMesh(t *testing.T) {
	p := newTestPipeline(t)
	if _, err := p.Render(clouds.DefaultBindings(), clouds.Mesh{}, 8, 8); err != nil {
		t.Fatalf("Render(empty mesh): %v", err)
	}
}

func TestPrepareFrame(t *testing.T) {
	p := newTestPipeline(t)

	res, err := p.PrepareFrame(clouds.DefaultBindings(), clouds.FullscreenQuad())
	if err != nil {
		t.Fatalf("PrepareFrame: %v", err)
	}
	defer p.ReleaseFrame(res)

	if res.VertexCount() != 6 {
		t.Errorf("VertexCount() = %d, want 6", res.VertexCount())
	}
	if res.vertBuf == nil || res.viewBuf == nil || res.meshBuf == nil {
		t.Error("expected all buffers")
	}
	if res.viewGroup == nil || res.meshGroup == nil {
		t.Error("expected both bind groups")
	}
}

func TestPrepareFrameEmptyMesh(t *testing.T) {
	p := newTestPipeline(t)

	res, err := p.PrepareFrame(clouds.DefaultBindings(), clouds.Mesh{})
	if err != nil || res != nil {
		t.Errorf("PrepareFrame(empty) = %v, %v; want nil, nil", res, err)
	}
	// Nil resources are a no-op everywhere.
	p.ReleaseFrame(nil)
	if res.VertexCount() != 0 {
		t.Error("nil resources report vertices")
	}
}

func TestExpandVertices(t *testing.T) {
	quad := clouds.FullscreenQuad()
	buf := expandVertices(quad)
	if len(buf) != 6*clouds.VertexStride {
		t.Fatalf("len = %d, want %d", len(buf), 6*clouds.VertexStride)
	}

	// Vertex 4 of the flat list is index 2: (1, 1, 0).
	want := (&clouds.Mesh{Positions: []clouds.Vec3{quad.Positions[2]}}).VertexBytes()
	got := buf[4*clouds.VertexStride : 5*clouds.VertexStride]
	if string(got) != string(want) {
		t.Errorf("vertex 4 = %v, want %v", got, want)
	}
}

func TestVertexLayout(t *testing.T) {
	layout := VertexLayout()
	if len(layout) != 1 {
		t.Fatalf("len(VertexLayout()) = %d, want 1", len(layout))
	}
	if layout[0].ArrayStride != 12 {
		t.Errorf("ArrayStride = %d, want 12", layout[0].ArrayStride)
	}
	attrs := layout[0].Attributes
	if len(attrs) != 1 || attrs[0].Format != gputypes.VertexFormatFloat32x3 || attrs[0].ShaderLocation != 0 {
		t.Errorf("Attributes = %+v, want one float32x3 at location 0", attrs)
	}
}

// halDeviceProvider is a gpucontext.DeviceProvider that also exposes HAL
// objects, the way a windowing host does.
type halDeviceProvider struct {
	device hal.Device
	queue  hal.Queue
}

func (p halDeviceProvider) Device() gpucontext.Device   { return nil }
func (p halDeviceProvider) Queue() gpucontext.Queue     { return nil }
func (p halDeviceProvider) Adapter() gpucontext.Adapter { return nil }
func (p halDeviceProvider) SurfaceFormat() gputypes.TextureFormat {
	return ColorFormat
}
func (p halDeviceProvider) HalDevice() any { return p.device }
func (p halDeviceProvider) HalQueue() any  { return p.queue }

// plainProvider exposes no HAL objects.
type plainProvider struct{}

func (plainProvider) Device() gpucontext.Device             { return nil }
func (plainProvider) Queue() gpucontext.Queue               { return nil }
func (plainProvider) Adapter() gpucontext.Adapter           { return nil }
func (plainProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }

func TestNewFromProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewFromProvider(halDeviceProvider{device: device, queue: queue})
	if err != nil {
		t.Fatalf("NewFromProvider: %v", err)
	}
	defer p.Destroy()
	if p.device != device || p.queue != queue {
		t.Error("provider device or queue not used")
	}
}

func TestNewFromProviderRejects(t *testing.T) {
	tests := []struct {
		name     string
		provider gpucontext.DeviceProvider
	}{
		{"no HAL", plainProvider{}},
		{"nil HAL device", halDeviceProvider{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFromProvider(tt.provider); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestOpenDefault(t *testing.T) {
	p, err := OpenDefault()
	if err != nil {
		t.Skipf("GPU not available: %v", err)
	}
	p.Destroy()
	if p.device != nil || p.instance != nil {
		t.Error("owned device not released by Destroy")
	}
	p.Destroy()
}
