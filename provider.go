// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mipmap

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// halProvider is implemented by device providers that expose their HAL
// objects, such as gogpu.App.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// HALDevice extracts the hal.Device and hal.Queue shared by a host
// application. The provider must implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func HALDevice(provider gpucontext.DeviceProvider) (hal.Device, hal.Queue, error) {
	if provider == nil {
		return nil, nil, ErrNoHALDevice
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, ErrNoHALDevice
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALDevice)
	}
	return device, queue, nil
}

// NewRenderGeneratorFromProvider creates a RenderGenerator on the device
// shared by provider. The provider's surface format, when defined, is
// added to formats so textures matching the swapchain are covered.
func NewRenderGeneratorFromProvider(provider gpucontext.DeviceProvider, formats []gputypes.TextureFormat, opts ...Option) (*RenderGenerator, error) {
	device, _, err := HALDevice(provider)
	if err != nil {
		return nil, err
	}
	hints := formats
	if sf := provider.SurfaceFormat(); sf != gputypes.TextureFormatUndefined {
		hints = append(append(make([]gputypes.TextureFormat, 0, len(formats)+1), formats...), sf)
	}
	return NewRenderGenerator(device, hints, opts...)
}
