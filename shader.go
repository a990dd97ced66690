// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mipmap

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Embedded downsample shader source.
//
//go:embed shaders/downsample.wgsl
var downsampleShaderSource string

// Entry points of downsample.wgsl.
const (
	vertexEntryPoint   = "vs_main"
	fragmentEntryPoint = "fs_main"
)

// compileSPIRV compiles WGSL source to SPIR-V words.
func compileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V size %d is not a multiple of 4", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words.
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// createShaderModule builds the downsample shader module from the selected
// source representation.
func createShaderModule(device hal.Device, label string, src ShaderSource) (hal.ShaderModule, error) {
	desc := &hal.ShaderModuleDescriptor{Label: label}
	switch src {
	case ShaderSPIRV:
		code, err := compileSPIRV(downsampleShaderSource)
		if err != nil {
			return nil, err
		}
		desc.Source = hal.ShaderSource{SPIRV: code}
	default:
		desc.Source = hal.ShaderSource{WGSL: downsampleShaderSource}
	}
	module, err := device.CreateShaderModule(desc)
	if err != nil {
		return nil, fmt.Errorf("create shader module (%s): %w", src, err)
	}
	return module, nil
}
