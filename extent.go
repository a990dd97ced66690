// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mipmap

import (
	"math/bits"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// MipExtent returns the size of mip level level of a texture whose level 0
// has the given size. Each axis that shrinks for the dimension is
// max(1, base >> level): width always, height for 2D and 3D, depth for 3D
// only. Array layers of a 2D texture never shrink.
func MipExtent(size hal.Extent3D, dim gputypes.TextureDimension, level uint32) hal.Extent3D {
	out := size
	out.Width = halve(size.Width, level)
	switch dim {
	case gputypes.TextureDimension1D:
	case gputypes.TextureDimension3D:
		out.Height = halve(size.Height, level)
		out.DepthOrArrayLayers = halve(size.DepthOrArrayLayers, level)
	default:
		out.Height = halve(size.Height, level)
	}
	return out
}

// MaxMipLevelCount returns the length of a full mip chain for a texture of
// the given size: 1 + floor(log2(largest shrinking axis)).
func MaxMipLevelCount(size hal.Extent3D, dim gputypes.TextureDimension) uint32 {
	largest := size.Width
	switch dim {
	case gputypes.TextureDimension1D:
	case gputypes.TextureDimension3D:
		largest = max(largest, size.Height, size.DepthOrArrayLayers)
	default:
		largest = max(largest, size.Height)
	}
	if largest == 0 {
		return 0
	}
	return uint32(bits.Len32(largest))
}

// arrayLayers returns the number of independently mipped layers of a
// texture: the array layer count for 2D, one otherwise.
func arrayLayers(desc *hal.TextureDescriptor) uint32 {
	if desc.Dimension == gputypes.TextureDimension3D || desc.Dimension == gputypes.TextureDimension1D {
		return 1
	}
	return max(desc.Size.DepthOrArrayLayers, 1)
}

func halve(v, level uint32) uint32 {
	if level >= 32 {
		return 1
	}
	return max(v>>level, 1)
}
