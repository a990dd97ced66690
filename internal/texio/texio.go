// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package texio moves texel data between the CPU and HAL textures: level
// uploads through the queue and whole-chain readback through a staging
// buffer.
package texio

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/mipmap"
	"github.com/gogpu/wgpu/hal"
)

// CopyPitchAlignment is the row alignment WebGPU (and DX12) require for
// texture-to-buffer copies.
const CopyPitchAlignment = 256

// DefaultTimeout bounds the fence wait in Submit.
const DefaultTimeout = 5 * time.Second

var (
	// ErrUnsupportedFormat is returned for formats texio cannot size.
	ErrUnsupportedFormat = errors.New("texio: unsupported texture format")

	// ErrSizeMismatch is returned when upload data does not match the level.
	ErrSizeMismatch = errors.New("texio: data size does not match texture level")

	// ErrTimeout is returned when the GPU does not signal the readback fence.
	ErrTimeout = errors.New("texio: timed out waiting for GPU")
)

// BytesPerPixel returns the texel size of the uncompressed color formats
// the mip generators accept.
func BytesPerPixel(format gputypes.TextureFormat) (uint32, error) {
	switch format {
	case gputypes.TextureFormatR8Unorm:
		return 1, nil
	case gputypes.TextureFormatRG8Unorm, gputypes.TextureFormatR16Float:
		return 2, nil
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb,
		gputypes.TextureFormatRG16Float:
		return 4, nil
	case gputypes.TextureFormatRGBA16Float:
		return 8, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
}

// AlignedBytesPerRow rounds width*bpp up to CopyPitchAlignment.
func AlignedBytesPerRow(width, bpp uint32) uint32 {
	return (width*bpp + CopyPitchAlignment - 1) &^ (CopyPitchAlignment - 1)
}

func levelExtent(desc *hal.TextureDescriptor, level uint32) (w, h uint32) {
	e := mipmap.MipExtent(desc.Size, desc.Dimension, level)
	return e.Width, e.Height
}

// Upload writes tightly packed texels into one level of one array layer.
// The texture needs CopyDst usage.
func Upload(queue hal.Queue, texture hal.Texture, desc *hal.TextureDescriptor, level, layer uint32, data []byte) error {
	bpp, err := BytesPerPixel(desc.Format)
	if err != nil {
		return err
	}
	w, h := levelExtent(desc, level)
	if want := int(w * h * bpp); len(data) != want {
		return fmt.Errorf("%w: level %d is %dx%d (%d bytes), got %d bytes",
			ErrSizeMismatch, level, w, h, want, len(data))
	}

	err = queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  texture,
			MipLevel: level,
			Origin:   hal.Origin3D{X: 0, Y: 0, Z: layer},
			Aspect:   gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * bpp, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("texio: write level %d layer %d: %w", level, layer, err)
	}
	return nil
}

// ReadLevels copies every mip level of array layer 0 back to the CPU and
// returns one tightly packed slice per level.
//
// All levels are copied into one staging buffer by a single command buffer,
// which ReadLevels submits and waits for. The texture needs CopySrc usage
// and must be in the TextureBinding state, where upload and every
// mipmap.Generator leave it. It is returned to that state afterwards.
func ReadLevels(device hal.Device, queue hal.Queue, texture hal.Texture, desc *hal.TextureDescriptor) ([][]byte, error) {
	bpp, err := BytesPerPixel(desc.Format)
	if err != nil {
		return nil, err
	}

	type region struct {
		offset      uint64
		w, h        uint32
		alignedRow  uint32
		bytesPerRow uint32
	}
	regions := make([]region, desc.MipLevelCount)
	var size uint64
	for level := range regions {
		w, h := levelExtent(desc, uint32(level))
		aligned := AlignedBytesPerRow(w, bpp)
		regions[level] = region{offset: size, w: w, h: h, alignedRow: aligned, bytesPerRow: w * bpp}
		// Level offsets stay 256-aligned because every row is.
		size += uint64(aligned) * uint64(h)
	}

	staging, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "texio_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("texio: create staging buffer: %w", err)
	}
	defer device.DestroyBuffer(staging)

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "texio_readback"})
	if err != nil {
		return nil, fmt.Errorf("texio: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("texio_readback"); err != nil {
		return nil, fmt.Errorf("texio: begin encoding: %w", err)
	}

	// Vulkan needs TRANSFER_SRC_OPTIMAL for the copy.
	fullRange := hal.TextureRange{Aspect: gputypes.TextureAspectAll}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: texture,
		Range:   fullRange,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageTextureBinding,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	copies := make([]hal.BufferTextureCopy, len(regions))
	for level, r := range regions {
		copies[level] = hal.BufferTextureCopy{
			BufferLayout: hal.ImageDataLayout{Offset: r.offset, BytesPerRow: r.alignedRow, RowsPerImage: r.h},
			TextureBase:  hal.ImageCopyTexture{Texture: texture, MipLevel: uint32(level)},
			Size:         hal.Extent3D{Width: r.w, Height: r.h, DepthOrArrayLayers: 1},
		}
	}
	encoder.CopyTextureToBuffer(texture, staging, copies)
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: texture,
		Range:   fullRange,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageTextureBinding,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("texio: end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	if err := Submit(device, queue, cmdBuf); err != nil {
		return nil, err
	}

	readback := make([]byte, size)
	if err := queue.ReadBuffer(staging, 0, readback); err != nil {
		return nil, fmt.Errorf("texio: readback: %w", err)
	}

	levels := make([][]byte, len(regions))
	for level, r := range regions {
		levels[level] = stripPadding(readback[r.offset:], r.bytesPerRow, r.alignedRow, r.h)
	}
	return levels, nil
}

// Submit submits cmdBuf and blocks until the GPU finishes it or
// DefaultTimeout passes. The caller still owns cmdBuf.
func Submit(device hal.Device, queue hal.Queue, cmdBuf hal.CommandBuffer) error {
	fence, err := device.CreateFence()
	if err != nil {
		return fmt.Errorf("texio: create fence: %w", err)
	}
	defer device.DestroyFence(fence)

	if err := queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("texio: submit: %w", err)
	}
	ok, err := device.Wait(fence, 1, DefaultTimeout)
	if err != nil {
		return fmt.Errorf("texio: wait for GPU: %w", err)
	}
	if !ok {
		return ErrTimeout
	}
	return nil
}

// stripPadding copies h rows of rowBytes out of src, whose rows are pitch
// bytes apart.
func stripPadding(src []byte, rowBytes, pitch, h uint32) []byte {
	tight := make([]byte, uint64(rowBytes)*uint64(h))
	for row := uint32(0); row < h; row++ {
		srcOff := uint64(row) * uint64(pitch)
		dstOff := uint64(row) * uint64(rowBytes)
		copy(tight[dstOff:dstOff+uint64(rowBytes)], src[srcOff:srcOff+uint64(rowBytes)])
	}
	return tight
}
