//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/clouds"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// OpenDefault creates a SkyPipeline on a device of its own, preferring a
// discrete or integrated GPU. Destroy releases the device.
func OpenDefault() (*SkyPipeline, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("clouds/gpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("clouds/gpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("clouds/gpu: no GPU adapters found")
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("clouds/gpu: open device: %w", err)
	}

	p := New(openDev.Device, openDev.Queue)
	p.instance = instance
	p.ownsDevice = true
	clouds.Logger().Info("clouds gpu device opened", "adapter", selected.Info.Name)
	return p, nil
}
