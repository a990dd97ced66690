// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mipmap

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// CopyGenerator fills a mip chain for textures that can be sampled and
// copied into but not rendered into.
//
// For each Generate call it allocates a temporary render-capable texture at
// the level-1 extent with one level fewer than the target, lets the wrapped
// RenderGenerator build the chain there, and copies temporary level j into
// target level j+1. The temporary texture is handed to the Encoder and
// destroyed on Release. Only single-layer 2D textures are accepted.
//
// CopyGenerator holds no state besides the wrapped generator. Its
// thread-safety is that of the RenderGenerator.
type CopyGenerator struct {
	render *RenderGenerator
}

// NewCopyGenerator wraps render. The RenderGenerator must outlive the
// CopyGenerator and must have been built with the formats the copy path
// will be asked for.
func NewCopyGenerator(render *RenderGenerator) *CopyGenerator {
	return &CopyGenerator{render: render}
}

// RequiredUsage returns CopyRequiredUsage, independent of the wrapped
// generator and of any texture.
func (g *CopyGenerator) RequiredUsage() gputypes.TextureUsage {
	return CopyRequiredUsage()
}

// TemporaryDescriptor returns the descriptor of the temporary texture
// CopyGenerator allocates for desc: the level-1 extent, one level fewer,
// the same format, sample count and dimension, and RenderRequiredUsage plus
// CopySrc. For a single-level desc the result has zero levels and no
// texture is ever created from it.
func TemporaryDescriptor(desc *hal.TextureDescriptor) *hal.TextureDescriptor {
	levels := uint32(0)
	if desc.MipLevelCount > 0 {
		levels = desc.MipLevelCount - 1
	}
	return &hal.TextureDescriptor{
		Label:         "mipmap_copy_temp",
		Size:          MipExtent(desc.Size, desc.Dimension, 1),
		MipLevelCount: levels,
		SampleCount:   desc.SampleCount,
		Dimension:     desc.Dimension,
		Format:        desc.Format,
		Usage:         RenderRequiredUsage() | gputypes.TextureUsageCopySrc,
	}
}

// Generate records the commands that fill levels 1..MipLevelCount-1 of
// texture from level 0. Errors raised by the wrapped RenderGenerator are
// returned unchanged.
func (g *CopyGenerator) Generate(device hal.Device, enc *Encoder, texture hal.Texture, desc *hal.TextureDescriptor) error {
	if g.render == nil {
		return ErrGeneratorDestroyed
	}
	if err := g.render.checkUsable(device, enc, texture); err != nil {
		return err
	}
	if err := validateDescriptor(desc); err != nil {
		return err
	}
	if !Supports(desc.Usage, CopyRequiredUsage()) {
		return &UnsupportedUsageError{Usage: desc.Usage, Required: CopyRequiredUsage()}
	}
	if desc.MipLevelCount == 1 {
		return nil
	}
	// Check what the render pass will reject before paying for the
	// temporary allocation.
	if !g.render.SupportsFormat(desc.Format) {
		return &UnsupportedFormatError{Format: desc.Format}
	}
	if err := validateShape(desc); err != nil {
		return err
	}
	// One copy call per chain and the HAL copy addresses layer 0 only.
	if layers := arrayLayers(desc); layers > 1 {
		return fmt.Errorf("%w: copy path handles single-layer textures, got %d layers",
			ErrUnsupportedDimension, layers)
	}

	tmpDesc := TemporaryDescriptor(desc)
	tmp, err := device.CreateTexture(tmpDesc)
	if err != nil {
		return fmt.Errorf("mipmap: create temporary texture %dx%d (%d levels): %w",
			tmpDesc.Size.Width, tmpDesc.Size.Height, tmpDesc.MipLevelCount, err)
	}
	enc.trackTexture(tmp)

	if err := g.render.GenerateSrcDst(device, enc, texture, tmp, desc, tmpDesc, 1); err != nil {
		return err
	}

	// GenerateSrcDst leaves tmp sampleable. Levels 1.. of texture are
	// overwritten whole and start from Undefined.
	raw := enc.Raw()
	dstLevels := hal.TextureRange{Aspect: gputypes.TextureAspectAll, BaseMipLevel: 1}
	raw.TransitionTextures([]hal.TextureBarrier{
		{
			Texture: tmp,
			Range:   hal.TextureRange{Aspect: gputypes.TextureAspectAll},
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageTextureBinding,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		},
		{
			Texture: texture,
			Range:   dstLevels,
			Usage:   hal.TextureUsageTransition{NewUsage: gputypes.TextureUsageCopyDst},
		},
	})

	regions := make([]hal.TextureCopy, 0, tmpDesc.MipLevelCount)
	for level := uint32(0); level < tmpDesc.MipLevelCount; level++ {
		regions = append(regions, hal.TextureCopy{
			SrcBase: hal.ImageCopyTexture{Texture: tmp, MipLevel: level, Aspect: gputypes.TextureAspectAll},
			DstBase: hal.ImageCopyTexture{Texture: texture, MipLevel: level + 1, Aspect: gputypes.TextureAspectAll},
			Size:    MipExtent(tmpDesc.Size, tmpDesc.Dimension, level),
		})
	}
	raw.CopyTextureToTexture(tmp, texture, regions)
	raw.TransitionTextures([]hal.TextureBarrier{{
		Texture: texture,
		Range:   dstLevels,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopyDst,
			NewUsage: gputypes.TextureUsageTextureBinding,
		},
	}})

	slogger().Debug("mipmap: copy chain recorded",
		"format", desc.Format, "levels", desc.MipLevelCount,
		"temp_width", tmpDesc.Size.Width, "temp_height", tmpDesc.Size.Height)
	return nil
}
