// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mipmap

import (
	"errors"
	"sync"
	"testing"

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
	if len(adapters) == 0 {
		instance.Destroy()
		t.Fatal("noop backend reported no adapters")
	}
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

var errInjected = errors.New("injected failure")

// viewInfo records what a texture view created through recordingDevice
// points at.
type viewInfo struct {
	texture hal.Texture
	level   uint32
	layer   uint32
}

// recordedView wraps every view recordingDevice hands out, so each view
// has a distinct identity even when the backend returns shared objects.
type recordedView struct {
	hal.TextureView
	info viewInfo
}

// recordingDevice wraps a real (noop) device and records the objects the
// generators create and destroy.
type recordingDevice struct {
	hal.Device

	mu sync.Mutex

	textures  []*hal.TextureDescriptor
	viewCount int
	groups    int
	pipelines []*hal.RenderPipelineDescriptor

	texturesDestroyed int
	viewsDestroyed    int
	groupsDestroyed   int

	failTexture  bool
	failViewAt   int // fail the n-th CreateTextureView call (1-based); 0 never fails
	failPipeline bool

	encoders []*recordingEncoder
}

func newRecordingDevice(t *testing.T) *recordingDevice {
	t.Helper()
	device, _, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)
	return &recordingDevice{Device: device}
}

func (d *recordingDevice) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failTexture {
		return nil, errInjected
	}
	cp := *desc
	d.textures = append(d.textures, &cp)
	return d.Device.CreateTexture(desc)
}

func (d *recordingDevice) DestroyTexture(texture hal.Texture) {
	d.mu.Lock()
	d.texturesDestroyed++
	d.mu.Unlock()
	d.Device.DestroyTexture(texture)
}

func (d *recordingDevice) CreateTextureView(texture hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.viewCount++
	if d.failViewAt > 0 && d.viewCount == d.failViewAt {
		return nil, errInjected
	}
	view, err := d.Device.CreateTextureView(texture, desc)
	if err != nil {
		return nil, err
	}
	return &recordedView{
		TextureView: view,
		info:        viewInfo{texture: texture, level: desc.BaseMipLevel, layer: desc.BaseArrayLayer},
	}, nil
}

func (d *recordingDevice) DestroyTextureView(view hal.TextureView) {
	d.mu.Lock()
	d.viewsDestroyed++
	d.mu.Unlock()
	if rv, ok := view.(*recordedView); ok {
		view = rv.TextureView
	}
	d.Device.DestroyTextureView(view)
}

func (d *recordingDevice) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	d.mu.Lock()
	d.groups++
	d.mu.Unlock()
	return d.Device.CreateBindGroup(desc)
}

func (d *recordingDevice) DestroyBindGroup(group hal.BindGroup) {
	d.mu.Lock()
	d.groupsDestroyed++
	d.mu.Unlock()
	d.Device.DestroyBindGroup(group)
}

func (d *recordingDevice) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failPipeline {
		return nil, errInjected
	}
	d.pipelines = append(d.pipelines, desc)
	return d.Device.CreateRenderPipeline(desc)
}

func (d *recordingDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	raw, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	enc := &recordingEncoder{CommandEncoder: raw, device: d}
	d.mu.Lock()
	d.encoders = append(d.encoders, enc)
	d.mu.Unlock()
	return enc, nil
}

func viewOf(v hal.TextureView) viewInfo {
	if rv, ok := v.(*recordedView); ok {
		return rv.info
	}
	return viewInfo{}
}

// recordedPass is one render pass: the level/layer it wrote and the draws
// it issued.
type recordedPass struct {
	target viewInfo
	draws  int
	ended  bool
}

// recordingEncoder records passes, barriers and copies.
type recordingEncoder struct {
	hal.CommandEncoder
	device *recordingDevice

	passes    []*recordedPass
	barriers  []hal.TextureBarrier
	copies    []hal.TextureCopy
	copySrc   hal.Texture
	copyDst   hal.Texture
	discarded bool
	ops       []string
}

func (e *recordingEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	p := &recordedPass{}
	if len(desc.ColorAttachments) > 0 {
		p.target = viewOf(desc.ColorAttachments[0].View)
	}
	e.passes = append(e.passes, p)
	e.ops = append(e.ops, "pass")
	return &recordingPass{RenderPassEncoder: e.CommandEncoder.BeginRenderPass(desc), rec: p}
}

func (e *recordingEncoder) TransitionTextures(barriers []hal.TextureBarrier) {
	e.barriers = append(e.barriers, barriers...)
	e.ops = append(e.ops, "barrier")
	e.CommandEncoder.TransitionTextures(barriers)
}

func (e *recordingEncoder) CopyTextureToTexture(src, dst hal.Texture, regions []hal.TextureCopy) {
	e.copySrc, e.copyDst = src, dst
	e.copies = append(e.copies, regions...)
	e.ops = append(e.ops, "copy")
	e.CommandEncoder.CopyTextureToTexture(src, dst, regions)
}

func (e *recordingEncoder) DiscardEncoding() {
	e.discarded = true
	e.CommandEncoder.DiscardEncoding()
}

// recordingPass counts draws.
type recordingPass struct {
	hal.RenderPassEncoder
	rec *recordedPass
}

func (p *recordingPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.rec.draws++
	p.RenderPassEncoder.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *recordingPass) End() {
	p.rec.ended = true
	p.RenderPassEncoder.End()
}

// testDescriptor returns a square 2D descriptor with a full mip chain.
func testDescriptor(size uint32, format gputypes.TextureFormat, usage gputypes.TextureUsage) *hal.TextureDescriptor {
	desc := &hal.TextureDescriptor{
		Label:       "test",
		Size:        hal.Extent3D{Width: size, Height: size, DepthOrArrayLayers: 1},
		SampleCount: 1,
		Dimension:   gputypes.TextureDimension2D,
		Format:      format,
		Usage:       usage,
	}
	desc.MipLevelCount = MaxMipLevelCount(desc.Size, desc.Dimension)
	return desc
}

// newTestSetup builds a recording device, a render generator for format and
// a texture for desc.
func newTestSetup(t *testing.T, desc *hal.TextureDescriptor, formats ...gputypes.TextureFormat) (*recordingDevice, *RenderGenerator, hal.Texture) {
	t.Helper()
	dev := newRecordingDevice(t)
	if len(formats) == 0 {
		formats = []gputypes.TextureFormat{desc.Format}
	}
	gen, err := NewRenderGenerator(dev, formats)
	if err != nil {
		t.Fatalf("NewRenderGenerator failed: %v", err)
	}
	t.Cleanup(gen.Destroy)
	tex, err := dev.Device.CreateTexture(desc)
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	t.Cleanup(func() { dev.Device.DestroyTexture(tex) })
	return dev, gen, tex
}

// newTestEncoder creates an Encoder on dev and returns it with the
// recording encoder underneath.
func newTestEncoder(t *testing.T, dev *recordingDevice) (*Encoder, *recordingEncoder) {
	t.Helper()
	enc, err := NewEncoder(dev, "test")
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	t.Cleanup(enc.Release)
	rec, ok := enc.Raw().(*recordingEncoder)
	if !ok {
		t.Fatalf("Raw() = %T, want *recordingEncoder", enc.Raw())
	}
	return enc, rec
}
