// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mipmap

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Generator records the commands that fill the mip chain of a texture.
//
// Generate fills levels 1..desc.MipLevelCount-1 of texture from level 0,
// which the caller must already have written and left in the TextureBinding
// state, as Queue.WriteTexture does. When the recorded commands complete,
// every level of texture is in TextureBinding again. Commands are only
// recorded into enc; submitting them is up to the caller, and enc.Release
// must not run before the GPU has finished with them.
//
// RequiredUsage is a property of the strategy, not of any texture. Callers
// compare it with a texture's declared usage (see Supports and Select)
// before choosing a generator. Generate still checks, and fails with an
// error matching ErrUnsupportedUsage when the usage falls short.
type Generator interface {
	Generate(device hal.Device, enc *Encoder, texture hal.Texture, desc *hal.TextureDescriptor) error
	RequiredUsage() gputypes.TextureUsage
}

var (
	_ Generator = (*RenderGenerator)(nil)
	_ Generator = (*CopyGenerator)(nil)
	_ Generator = (*Auto)(nil)
)

// Select returns the first generator whose RequiredUsage is included in
// desc.Usage. Pass the strongest strategy first:
//
//	gen, err := mipmap.Select(desc, render, mipmap.NewCopyGenerator(render))
//
// When none fits, the error is an *UnsupportedUsageError carrying the
// declared usage.
func Select(desc *hal.TextureDescriptor, generators ...Generator) (Generator, error) {
	if desc == nil {
		return nil, ErrInvalidDescriptor
	}
	for _, g := range generators {
		if g != nil && Supports(desc.Usage, g.RequiredUsage()) {
			return g, nil
		}
	}
	return nil, &UnsupportedUsageError{Usage: desc.Usage}
}

// Auto renders directly into the texture when its usage allows and falls
// back to the copy path otherwise.
type Auto struct {
	render *RenderGenerator
	copy   *CopyGenerator
}

// NewAuto returns a Generator backed by render and a CopyGenerator that
// wraps it.
func NewAuto(render *RenderGenerator) *Auto {
	return &Auto{render: render, copy: NewCopyGenerator(render)}
}

// RequiredUsage returns the weaker of the two requirements,
// CopyRequiredUsage.
func (a *Auto) RequiredUsage() gputypes.TextureUsage {
	return CopyRequiredUsage()
}

// Generate dispatches to the render or copy strategy based on desc.Usage.
func (a *Auto) Generate(device hal.Device, enc *Encoder, texture hal.Texture, desc *hal.TextureDescriptor) error {
	if a.render == nil {
		return ErrGeneratorDestroyed
	}
	if desc == nil {
		return ErrInvalidDescriptor
	}
	g, err := Select(desc, a.render, a.copy)
	if err != nil {
		return &UnsupportedUsageError{Usage: desc.Usage, Required: a.RequiredUsage()}
	}
	return g.Generate(device, enc, texture, desc)
}
