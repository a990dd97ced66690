// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mipmap

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

// Mip generation errors.
var (
	// ErrUnsupportedFormat is returned when no render pipeline exists for
	// the texture format. Use errors.As with *UnsupportedFormatError to
	// retrieve the format.
	ErrUnsupportedFormat = errors.New("mipmap: unsupported texture format")

	// ErrUnsupportedUsage is returned when the texture's declared usage does
	// not include the generator's required usage. Use errors.As with
	// *UnsupportedUsageError to retrieve the usage.
	ErrUnsupportedUsage = errors.New("mipmap: unsupported texture usage")

	// ErrUnsupportedDimension is returned for 1D and 3D textures, and for
	// array textures on the copy path.
	ErrUnsupportedDimension = errors.New("mipmap: unsupported texture dimension")

	// ErrUnsupportedSampleCount is returned for multisampled textures.
	ErrUnsupportedSampleCount = errors.New("mipmap: multisampled textures cannot have mip chains")

	// ErrInvalidDescriptor is returned when a texture descriptor is nil or
	// declares zero mip levels, zero size or zero array layers.
	ErrInvalidDescriptor = errors.New("mipmap: invalid texture descriptor")

	// ErrLevelOutOfRange is returned when a source base level is not a
	// level of the source texture.
	ErrLevelOutOfRange = errors.New("mipmap: mip level out of range")

	// ErrNilDevice is returned when a nil hal.Device is passed.
	ErrNilDevice = errors.New("mipmap: device is nil")

	// ErrNilEncoder is returned when a nil *Encoder is passed.
	ErrNilEncoder = errors.New("mipmap: encoder is nil")

	// ErrNilTexture is returned when a nil hal.Texture is passed.
	ErrNilTexture = errors.New("mipmap: texture is nil")

	// ErrEncoderFinished is returned when recording into an encoder whose
	// encoding has already ended.
	ErrEncoderFinished = errors.New("mipmap: encoder already finished")

	// ErrGeneratorDestroyed is returned when using a generator after Destroy.
	ErrGeneratorDestroyed = errors.New("mipmap: generator destroyed")

	// ErrNoHALDevice is returned when a device provider does not expose a
	// hal.Device.
	ErrNoHALDevice = errors.New("mipmap: provider does not expose a HAL device")
)

// UnsupportedFormatError reports a format for which no render pipeline
// was registered.
type UnsupportedFormatError struct {
	Format gputypes.TextureFormat
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("mipmap: unsupported texture format %v", e.Format)
}

// Is reports whether target is ErrUnsupportedFormat.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// UnsupportedUsageError reports the declared usage of a texture that does
// not satisfy a generator's requirement.
type UnsupportedUsageError struct {
	// Usage is the usage declared by the texture descriptor.
	Usage gputypes.TextureUsage

	// Required is the usage the generator needs. Zero when the error comes
	// from Select, which has several candidates.
	Required gputypes.TextureUsage
}

func (e *UnsupportedUsageError) Error() string {
	if e.Required == 0 {
		return fmt.Sprintf("mipmap: unsupported texture usage %s", UsageString(e.Usage))
	}
	return fmt.Sprintf("mipmap: unsupported texture usage %s (requires %s)",
		UsageString(e.Usage), UsageString(e.Required))
}

// Is reports whether target is ErrUnsupportedUsage.
func (e *UnsupportedUsageError) Is(target error) bool {
	return target == ErrUnsupportedUsage
}

// UnsupportedDimensionError reports a texture dimension other than 2D.
type UnsupportedDimensionError struct {
	Dimension gputypes.TextureDimension
}

func (e *UnsupportedDimensionError) Error() string {
	return fmt.Sprintf("mipmap: unsupported texture dimension %v", e.Dimension)
}

// Is reports whether target is ErrUnsupportedDimension.
func (e *UnsupportedDimensionError) Is(target error) bool {
	return target == ErrUnsupportedDimension
}
