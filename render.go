// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mipmap

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// RenderGenerator fills a mip chain by rendering each level from the
// previous one with a full-screen triangle that samples the source level.
//
// The texture must be declared with RenderRequiredUsage: every level is
// sampled, and every level except the first is a color attachment.
//
// A RenderGenerator owns one render pipeline per format hint it was built
// with. It is immutable after NewRenderGenerator and safe for concurrent
// Generate calls on independent encoders. Destroy must not run concurrently
// with Generate.
type RenderGenerator struct {
	device hal.Device
	opts   options

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	sampler    hal.Sampler
	registry   *pipelineRegistry

	destroyed atomic.Bool
}

// NewRenderGenerator creates a render-based generator on device with a
// pipeline for every renderable format in formats. Formats that cannot be
// rendered and filtered are skipped with a warning; textures of those
// formats later fail with ErrUnsupportedFormat.
func NewRenderGenerator(device hal.Device, formats []gputypes.TextureFormat, opts ...Option) (*RenderGenerator, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	g := &RenderGenerator{device: device, opts: o}
	if err := g.createPipelines(formats); err != nil {
		g.Destroy()
		return nil, fmt.Errorf("mipmap: %w", err)
	}
	slogger().Debug("mipmap: render generator ready",
		"label", o.label, "formats", len(g.registry.pipelines), "shader", o.shader.String())
	return g, nil
}

// createPipelines builds the shader, layouts, sampler and per-format
// pipelines shared by every Generate call.
func (g *RenderGenerator) createPipelines(formats []gputypes.TextureFormat) error {
	shader, err := createShaderModule(g.device, g.opts.label+"_shader", g.opts.shader)
	if err != nil {
		return err
	}
	g.shader = shader

	// Bind group layout:
	//   Binding 0: source level (texture_2d<f32>, fragment)
	//   Binding 1: sampler (fragment)
	bindLayout, err := g.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: g.opts.label + "_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	g.bindLayout = bindLayout

	pipeLayout, err := g.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            g.opts.label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{g.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	g.pipeLayout = pipeLayout

	// Every view covers a single level, so the mipmap filter never applies.
	sampler, err := g.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        g.opts.label + "_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    g.opts.filter,
		MinFilter:    g.opts.filter,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}
	g.sampler = sampler

	registry, err := buildRegistry(g.device, g.pipeLayout, g.shader, formats, g.opts.label)
	if err != nil {
		return err
	}
	g.registry = registry
	return nil
}

// RequiredUsage returns RenderRequiredUsage.
func (g *RenderGenerator) RequiredUsage() gputypes.TextureUsage {
	return RenderRequiredUsage()
}

// SupportsFormat reports whether a pipeline was registered for format.
func (g *RenderGenerator) SupportsFormat(format gputypes.TextureFormat) bool {
	if g.registry == nil {
		return false
	}
	_, ok := g.registry.lookup(format)
	return ok
}

// Formats returns the registered formats in ascending order.
func (g *RenderGenerator) Formats() []gputypes.TextureFormat {
	if g.registry == nil {
		return nil
	}
	return g.registry.formats()
}

// Generate records the commands that fill levels 1..MipLevelCount-1 of
// texture from level 0, which the caller must already have populated.
// Each array layer of a 2D array texture gets its own chain. The written
// levels end in the TextureBinding state.
//
// Nothing is submitted. On error the encoder may hold a partial recording
// and should be discarded with Release.
func (g *RenderGenerator) Generate(device hal.Device, enc *Encoder, texture hal.Texture, desc *hal.TextureDescriptor) error {
	if err := g.checkUsable(device, enc, texture); err != nil {
		return err
	}
	if err := validateDescriptor(desc); err != nil {
		return err
	}
	if !Supports(desc.Usage, RenderRequiredUsage()) {
		return &UnsupportedUsageError{Usage: desc.Usage, Required: RenderRequiredUsage()}
	}
	pipeline, err := g.pipelineFor(desc.Format)
	if err != nil {
		return err
	}
	if err := validateShape(desc); err != nil {
		return err
	}
	if desc.MipLevelCount <= 1 {
		return nil
	}

	layers := arrayLayers(desc)
	for layer := uint32(0); layer < layers; layer++ {
		for level := uint32(1); level < desc.MipLevelCount; level++ {
			err := g.encodePass(device, enc, pipeline, downsamplePass{
				src: texture, srcLevel: level - 1, srcLayer: layer,
				dst: texture, dstLevel: level, dstLayer: layer,
			})
			if err != nil {
				return err
			}
		}
	}
	restRenderedLevels(enc, texture, 1)
	slogger().Debug("mipmap: render chain recorded",
		"format", desc.Format, "levels", desc.MipLevelCount, "layers", layers)
	return nil
}

// GenerateSrcDst records the commands that fill the mip chain of dst as if
// dst level 0 were level srcBaseLevel of src. dst's width and height must
// equal the extent of src level srcBaseLevel. Level 0 of dst is rendered by
// downsampling src level srcBaseLevel-1, the last level src is expected to
// hold, and every further dst level from the dst level before it. A
// srcBaseLevel of 0 copies src level 0 through the filter at the same size.
// src needs TextureBinding usage; dst needs RenderRequiredUsage and a
// registered format. Every level of dst ends in the TextureBinding state.
//
// CopyGenerator uses this with srcBaseLevel 1 to build the chain below the
// base level in a render-capable temporary texture.
func (g *RenderGenerator) GenerateSrcDst(
	device hal.Device,
	enc *Encoder,
	src, dst hal.Texture,
	srcDesc, dstDesc *hal.TextureDescriptor,
	srcBaseLevel uint32,
) error {
	if err := g.checkUsable(device, enc, src); err != nil {
		return err
	}
	if dst == nil {
		return ErrNilTexture
	}
	if err := validateDescriptor(srcDesc); err != nil {
		return err
	}
	if err := validateDescriptor(dstDesc); err != nil {
		return err
	}
	if !Supports(srcDesc.Usage, gputypes.TextureUsageTextureBinding) {
		return &UnsupportedUsageError{Usage: srcDesc.Usage, Required: gputypes.TextureUsageTextureBinding}
	}
	if !Supports(dstDesc.Usage, RenderRequiredUsage()) {
		return &UnsupportedUsageError{Usage: dstDesc.Usage, Required: RenderRequiredUsage()}
	}
	pipeline, err := g.pipelineFor(dstDesc.Format)
	if err != nil {
		return err
	}
	if !IsRenderableFormat(srcDesc.Format) {
		return &UnsupportedFormatError{Format: srcDesc.Format}
	}
	if err := validateShape(srcDesc); err != nil {
		return err
	}
	if err := validateShape(dstDesc); err != nil {
		return err
	}
	if srcBaseLevel >= srcDesc.MipLevelCount {
		return fmt.Errorf("%w: source base level %d, source has %d levels",
			ErrLevelOutOfRange, srcBaseLevel, srcDesc.MipLevelCount)
	}
	base := MipExtent(srcDesc.Size, srcDesc.Dimension, srcBaseLevel)
	if dstDesc.Size.Width != base.Width || dstDesc.Size.Height != base.Height {
		return fmt.Errorf("%w: destination is %dx%d, source level %d is %dx%d",
			ErrInvalidDescriptor, dstDesc.Size.Width, dstDesc.Size.Height,
			srcBaseLevel, base.Width, base.Height)
	}
	layers := arrayLayers(dstDesc)
	if srcLayers := arrayLayers(srcDesc); layers > srcLayers {
		return fmt.Errorf("%w: destination has %d array layers, source has %d",
			ErrInvalidDescriptor, layers, srcLayers)
	}

	srcLevel := uint32(0)
	if srcBaseLevel > 0 {
		srcLevel = srcBaseLevel - 1
	}
	for layer := uint32(0); layer < layers; layer++ {
		err := g.encodePass(device, enc, pipeline, downsamplePass{
			src: src, srcLevel: srcLevel, srcLayer: layer,
			dst: dst, dstLevel: 0, dstLayer: layer,
		})
		if err != nil {
			return err
		}
		for level := uint32(1); level < dstDesc.MipLevelCount; level++ {
			err := g.encodePass(device, enc, pipeline, downsamplePass{
				src: dst, srcLevel: level - 1, srcLayer: layer,
				dst: dst, dstLevel: level, dstLayer: layer,
			})
			if err != nil {
				return err
			}
		}
	}
	restRenderedLevels(enc, dst, 0)
	slogger().Debug("mipmap: cross-texture chain recorded",
		"format", dstDesc.Format, "src_base_level", srcBaseLevel,
		"levels", dstDesc.MipLevelCount, "layers", layers)
	return nil
}

// restRenderedLevels transitions every layer of texture from baseLevel on
// out of the state the downsample passes leave it in, so that all levels
// share TextureBinding once recording ends.
func restRenderedLevels(enc *Encoder, texture hal.Texture, baseLevel uint32) {
	enc.Raw().TransitionTextures([]hal.TextureBarrier{{
		Texture: texture,
		Range:   hal.TextureRange{Aspect: gputypes.TextureAspectAll, BaseMipLevel: baseLevel},
		Usage: hal.TextureUsageTransition{
			OldUsage: renderedUsage,
			NewUsage: gputypes.TextureUsageTextureBinding,
		},
	}})
}

// Destroy releases the pipelines, layouts, sampler and shader. Safe to call
// multiple times. Transients of encoders that recorded with g are not
// affected; release those through the encoders.
func (g *RenderGenerator) Destroy() {
	if g.destroyed.Swap(true) {
		return
	}
	if g.registry != nil {
		g.registry.destroy(g.device)
	}
	if g.sampler != nil {
		g.device.DestroySampler(g.sampler)
		g.sampler = nil
	}
	if g.pipeLayout != nil {
		g.device.DestroyPipelineLayout(g.pipeLayout)
		g.pipeLayout = nil
	}
	if g.bindLayout != nil {
		g.device.DestroyBindGroupLayout(g.bindLayout)
		g.bindLayout = nil
	}
	if g.shader != nil {
		g.device.DestroyShaderModule(g.shader)
		g.shader = nil
	}
}

// downsamplePass names one source level/layer sampled into one destination
// level/layer.
type downsamplePass struct {
	src      hal.Texture
	srcLevel uint32
	srcLayer uint32

	dst      hal.Texture
	dstLevel uint32
	dstLayer uint32
}

// encodePass records a single render pass writing p.dst from p.src. The
// views and bind group it creates are handed to enc for release.
func (g *RenderGenerator) encodePass(device hal.Device, enc *Encoder, pipeline hal.RenderPipeline, p downsamplePass) error {
	srcView, err := device.CreateTextureView(p.src, levelViewDescriptor(g.opts.label+"_src_view", p.srcLevel, p.srcLayer))
	if err != nil {
		return fmt.Errorf("mipmap: create source view (level %d, layer %d): %w", p.srcLevel, p.srcLayer, err)
	}
	enc.trackView(srcView)

	dstView, err := device.CreateTextureView(p.dst, levelViewDescriptor(g.opts.label+"_dst_view", p.dstLevel, p.dstLayer))
	if err != nil {
		return fmt.Errorf("mipmap: create target view (level %d, layer %d): %w", p.dstLevel, p.dstLayer, err)
	}
	enc.trackView(dstView)

	bindGroup, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  g.opts.label + "_bind",
		Layout: g.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{
				TextureView: gputypes.TextureViewHandle(srcView.NativeHandle()),
			}},
			{Binding: 1, Resource: gputypes.SamplerBinding{
				Sampler: gputypes.SamplerHandle(g.sampler.NativeHandle()),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("mipmap: create bind group (level %d): %w", p.dstLevel, err)
	}
	enc.trackBindGroup(bindGroup)

	rp := enc.raw.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: g.opts.label + "_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       dstView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.Draw(3, 1, 0, 0)
	rp.End()
	return nil
}

// levelViewDescriptor describes a 2D view of exactly one level of one layer.
func levelViewDescriptor(label string, level, layer uint32) *hal.TextureViewDescriptor {
	return &hal.TextureViewDescriptor{
		Label:           label,
		Format:          gputypes.TextureFormatUndefined,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		BaseMipLevel:    level,
		MipLevelCount:   1,
		BaseArrayLayer:  layer,
		ArrayLayerCount: 1,
	}
}

func (g *RenderGenerator) checkUsable(device hal.Device, enc *Encoder, texture hal.Texture) error {
	if g.destroyed.Load() {
		return ErrGeneratorDestroyed
	}
	if device == nil {
		return ErrNilDevice
	}
	if err := enc.checkRecording(); err != nil {
		return err
	}
	if texture == nil {
		return ErrNilTexture
	}
	return nil
}

func (g *RenderGenerator) pipelineFor(format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	p, ok := g.registry.lookup(format)
	if !ok {
		return nil, &UnsupportedFormatError{Format: format}
	}
	return p, nil
}

// validateDescriptor rejects descriptors that cannot describe a texture.
func validateDescriptor(desc *hal.TextureDescriptor) error {
	if desc == nil {
		return fmt.Errorf("%w: descriptor is nil", ErrInvalidDescriptor)
	}
	if desc.MipLevelCount == 0 {
		return fmt.Errorf("%w: mip level count is 0", ErrInvalidDescriptor)
	}
	if desc.Size.Width == 0 || desc.Size.Height == 0 || desc.Size.DepthOrArrayLayers == 0 {
		return fmt.Errorf("%w: size %dx%dx%d", ErrInvalidDescriptor,
			desc.Size.Width, desc.Size.Height, desc.Size.DepthOrArrayLayers)
	}
	if maxLevels := MaxMipLevelCount(desc.Size, desc.Dimension); desc.MipLevelCount > maxLevels {
		return fmt.Errorf("%w: %d mip levels exceed the %d a %dx%d texture can hold",
			ErrInvalidDescriptor, desc.MipLevelCount, maxLevels, desc.Size.Width, desc.Size.Height)
	}
	return nil
}

// validateShape rejects dimensions and sample counts the render path
// cannot handle.
func validateShape(desc *hal.TextureDescriptor) error {
	switch desc.Dimension {
	case gputypes.TextureDimension1D, gputypes.TextureDimension3D:
		return &UnsupportedDimensionError{Dimension: desc.Dimension}
	}
	if desc.SampleCount > 1 {
		return fmt.Errorf("%w: sample count %d", ErrUnsupportedSampleCount, desc.SampleCount)
	}
	return nil
}
