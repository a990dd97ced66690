// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mipmap

import (
	"strings"
	"testing"

	"github.com/gogpu/naga"
)

func TestDownsampleShaderEmbedded(t *testing.T) {
	if downsampleShaderSource == "" {
		t.Fatal("downsample shader source is empty")
	}
	for _, want := range []string{"fn " + vertexEntryPoint, "fn " + fragmentEntryPoint, "@binding(0)", "@binding(1)"} {
		if !strings.Contains(downsampleShaderSource, want) {
			t.Errorf("shader source missing %q", want)
		}
	}
}

func TestDownsampleShaderCompiles(t *testing.T) {
	spirv, err := naga.Compile(downsampleShaderSource)
	if err != nil {
		t.Fatalf("naga.Compile failed: %v", err)
	}
	if len(spirv) == 0 {
		t.Fatal("naga.Compile returned empty SPIR-V")
	}
}

func TestCompileSPIRV(t *testing.T) {
	code, err := compileSPIRV(downsampleShaderSource)
	if err != nil {
		t.Fatalf("compileSPIRV failed: %v", err)
	}
	const spirvMagic = 0x07230203
	if len(code) == 0 {
		t.Fatal("compileSPIRV returned no words")
	}
	if code[0] != spirvMagic {
		t.Errorf("first SPIR-V word = %#x, want %#x", code[0], spirvMagic)
	}
}
