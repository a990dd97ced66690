// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mipmap

import (
	"strings"

	"github.com/gogpu/gputypes"
)

// usageNames lists the texture usage flags in bit order for UsageString.
var usageNames = []struct {
	flag gputypes.TextureUsage
	name string
}{
	{gputypes.TextureUsageCopySrc, "CopySrc"},
	{gputypes.TextureUsageCopyDst, "CopyDst"},
	{gputypes.TextureUsageTextureBinding, "TextureBinding"},
	{gputypes.TextureUsageStorageBinding, "StorageBinding"},
	{gputypes.TextureUsageRenderAttachment, "RenderAttachment"},
}

// renderedUsage names the state a downsample pass leaves its target level
// in. Vulkan ends render passes on sampleable targets in the GENERAL
// layout, which the HAL barrier maps from StorageBinding.
// TODO: DX12 keeps offscreen targets in RENDER_TARGET; choose per backend
// once hal.Device reports which one it is.
const renderedUsage = gputypes.TextureUsageStorageBinding

// RenderRequiredUsage returns the usage a texture needs for RenderGenerator:
// every level is sampled and every level but the first is a render target.
func RenderRequiredUsage() gputypes.TextureUsage {
	return gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment
}

// CopyRequiredUsage returns the usage a texture needs for CopyGenerator.
// The texture is only sampled and copied into; it is never rendered to.
func CopyRequiredUsage() gputypes.TextureUsage {
	return gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst
}

// Supports reports whether usage includes every flag in required.
func Supports(usage, required gputypes.TextureUsage) bool {
	return usage&required == required
}

// UsageString formats a usage set as flag names joined by "|".
// The empty set formats as "None".
func UsageString(u gputypes.TextureUsage) string {
	if u == 0 {
		return "None"
	}
	var b strings.Builder
	rest := u
	for _, n := range usageNames {
		if u&n.flag == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString(n.name)
		rest &^= n.flag
	}
	if rest != 0 {
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString("Unknown")
	}
	return b.String()
}
