// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mipmap

import "github.com/gogpu/gputypes"

// ShaderSource selects how the downsample shader is handed to the device.
type ShaderSource int

const (
	// ShaderWGSL passes the embedded WGSL source to the HAL.
	ShaderWGSL ShaderSource = iota

	// ShaderSPIRV compiles the WGSL to SPIR-V with naga first. Useful for
	// backends that only consume SPIR-V.
	ShaderSPIRV
)

// String returns the shader source name.
func (s ShaderSource) String() string {
	switch s {
	case ShaderWGSL:
		return "wgsl"
	case ShaderSPIRV:
		return "spirv"
	default:
		return "unknown"
	}
}

// Option configures a RenderGenerator during creation.
//
// Example:
//
//	gen, err := mipmap.NewRenderGenerator(device, formats,
//	    mipmap.WithFilter(gputypes.FilterModeNearest),
//	    mipmap.WithLabel("terrain_mips"))
type Option func(*options)

// options holds optional RenderGenerator configuration.
type options struct {
	filter gputypes.FilterMode
	label  string
	shader ShaderSource
}

func defaultOptions() options {
	return options{
		filter: gputypes.FilterModeLinear,
		label:  "mipmap",
		shader: ShaderWGSL,
	}
}

// WithFilter sets the minification filter used when sampling the previous
// level. The default, FilterModeLinear, averages the 2x2 source texels
// under each destination texel.
func WithFilter(f gputypes.FilterMode) Option {
	return func(o *options) {
		o.filter = f
	}
}

// WithLabel sets the prefix of every GPU object label.
func WithLabel(label string) Option {
	return func(o *options) {
		if label != "" {
			o.label = label
		}
	}
}

// WithShaderSource selects WGSL or naga-compiled SPIR-V shader input.
func WithShaderSource(s ShaderSource) Option {
	return func(o *options) {
		o.shader = s
	}
}
