// Package mipmap generates mip chains for GPU textures on top of the
// gogpu/wgpu HAL, which has no built-in mipmap generation.
//
// # Overview
//
// A mip chain is the sequence of half-resolution levels below a texture's
// base level. mipmap records the GPU commands that derive levels 1..N-1 from
// level 0; it never submits them.
//
// # Quick Start
//
//	import "github.com/gogpu/mipmap"
//
//	gen, err := mipmap.NewRenderGenerator(device,
//	    []gputypes.TextureFormat{gputypes.TextureFormatRGBA8Unorm})
//	defer gen.Destroy()
//
//	enc, err := mipmap.NewEncoder(device, "mips")
//	err = gen.Generate(device, enc, texture, desc)
//	cmd, err := enc.Finish()
//	queue.Submit([]hal.CommandBuffer{cmd}, fence, 1)
//	device.Wait(fence, 1, time.Second)
//	enc.Release()
//
// # Strategies
//
// RenderGenerator draws every level from the one above it with a
// full-screen triangle. The texture needs RenderRequiredUsage
// (TextureBinding | RenderAttachment).
//
// CopyGenerator serves textures that cannot be render targets. It renders
// the chain into a temporary texture and copies it back, so the texture
// only needs CopyRequiredUsage (TextureBinding | CopyDst).
//
// Both implement Generator. Select picks the first generator a texture's
// declared usage satisfies, and Auto does the same per call.
//
// # Resource lifetime
//
// HAL backends do not track which objects a command buffer references.
// Per-level views, bind groups and temporary textures are therefore kept
// by the Encoder until Release, which must run after the GPU has finished
// the submitted work.
//
// # Supported textures
//
// 2D textures and 2D array textures (one chain per layer) with a single
// sample and a format that is both color-renderable and filterable; see
// IsRenderableFormat. CopyGenerator accepts single-layer 2D textures only.
// Levels are produced with a linear filter by default (see WithFilter).
package mipmap

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
