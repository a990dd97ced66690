// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mipmap

import (
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// renderableFormats lists the color formats that every WebGPU device can
// sample through a filtering sampler and render into without optional
// features.
var renderableFormats = map[gputypes.TextureFormat]bool{
	gputypes.TextureFormatR8Unorm:        true,
	gputypes.TextureFormatRG8Unorm:       true,
	gputypes.TextureFormatRGBA8Unorm:     true,
	gputypes.TextureFormatRGBA8UnormSrgb: true,
	gputypes.TextureFormatBGRA8Unorm:     true,
	gputypes.TextureFormatBGRA8UnormSrgb: true,
	gputypes.TextureFormatR16Float:       true,
	gputypes.TextureFormatRG16Float:      true,
	gputypes.TextureFormatRGBA16Float:    true,
}

// IsRenderableFormat reports whether format can be used by RenderGenerator
// at all, independent of the hints a generator was built with.
func IsRenderableFormat(format gputypes.TextureFormat) bool {
	return renderableFormats[format]
}

// pipelineRegistry maps a target format to the render pipeline that writes
// it. It is built once by NewRenderGenerator and never mutated afterwards,
// so concurrent lookups need no locking.
type pipelineRegistry struct {
	pipelines map[gputypes.TextureFormat]hal.RenderPipeline
}

// buildRegistry creates one pipeline per distinct renderable format hint.
// Hints that are not renderable are skipped. A pipeline creation failure
// destroys the pipelines built so far and is returned.
func buildRegistry(
	device hal.Device,
	layout hal.PipelineLayout,
	shader hal.ShaderModule,
	formats []gputypes.TextureFormat,
	label string,
) (*pipelineRegistry, error) {
	r := &pipelineRegistry{pipelines: make(map[gputypes.TextureFormat]hal.RenderPipeline, len(formats))}
	for _, format := range formats {
		if _, ok := r.pipelines[format]; ok {
			continue
		}
		if !IsRenderableFormat(format) {
			slogger().Warn("mipmap: skipping format hint that is not renderable and filterable",
				"format", format)
			continue
		}
		pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
			Label:  fmt.Sprintf("%s_pipeline_%v", label, format),
			Layout: layout,
			Vertex: hal.VertexState{
				Module:     shader,
				EntryPoint: vertexEntryPoint,
			},
			Fragment: &hal.FragmentState{
				Module:     shader,
				EntryPoint: fragmentEntryPoint,
				Targets: []gputypes.ColorTargetState{
					{
						Format:    format,
						WriteMask: gputypes.ColorWriteMaskAll,
					},
				},
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
			r.destroy(device)
			return nil, fmt.Errorf("create render pipeline for %v: %w", format, err)
		}
		r.pipelines[format] = pipeline
		slogger().Debug("mipmap: render pipeline created", "format", format)
	}
	return r, nil
}

func (r *pipelineRegistry) lookup(format gputypes.TextureFormat) (hal.RenderPipeline, bool) {
	p, ok := r.pipelines[format]
	return p, ok
}

// formats returns the registered formats in ascending order.
func (r *pipelineRegistry) formats() []gputypes.TextureFormat {
	out := make([]gputypes.TextureFormat, 0, len(r.pipelines))
	for f := range r.pipelines {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

func (r *pipelineRegistry) destroy(device hal.Device) {
	for f, p := range r.pipelines {
		if p != nil {
			device.DestroyRenderPipeline(p)
		}
		delete(r.pipelines, f)
	}
}
