// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cpumip builds reference mip chains on the CPU, used to check what
// the GPU generators produce.
package cpumip

import (
	"image"
	"math/bits"

	"golang.org/x/image/draw"
)

// Filter selects how each level is derived from the one above it.
type Filter uint8

const (
	// FilterBox averages each 2x2 block, clamping at odd edges. Matches the
	// GPU linear filter exactly for even extents.
	FilterBox Filter = iota

	// FilterBiLinear scales with x/image/draw.BiLinear.
	FilterBiLinear

	// FilterApproxBiLinear scales with x/image/draw.ApproxBiLinear.
	FilterApproxBiLinear

	// FilterNearest scales with x/image/draw.NearestNeighbor.
	FilterNearest
)

// String returns the filter name.
func (f Filter) String() string {
	switch f {
	case FilterBox:
		return "box"
	case FilterBiLinear:
		return "bilinear"
	case FilterApproxBiLinear:
		return "approx-bilinear"
	case FilterNearest:
		return "nearest"
	default:
		return "unknown"
	}
}

// ParseFilter returns the Filter named s, or false.
func ParseFilter(s string) (Filter, bool) {
	for f := FilterBox; f <= FilterNearest; f++ {
		if f.String() == s {
			return f, true
		}
	}
	return FilterBox, false
}

// LevelCount returns 1 + floor(log2(max(w, h))), or 0 for an empty size.
func LevelCount(w, h int) int {
	m := max(w, h)
	if m <= 0 {
		return 0
	}
	return bits.Len(uint(m))
}

// Chain returns levels images: level 0 is an RGBA copy of src and each
// further level is max(1, previous/2) on both axes. levels <= 0 builds the
// full chain.
func Chain(src image.Image, levels int, filter Filter) []*image.RGBA {
	base := ToRGBA(src)
	w, h := base.Rect.Dx(), base.Rect.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	if full := LevelCount(w, h); levels <= 0 || levels > full {
		levels = full
	}

	chain := make([]*image.RGBA, levels)
	chain[0] = base
	for i := 1; i < levels; i++ {
		chain[i] = downsample(chain[i-1], filter)
	}
	return chain
}

// ToRGBA returns a copy of img as *image.RGBA with a zero origin.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}

func downsample(src *image.RGBA, filter Filter) *image.RGBA {
	srcW, srcH := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, max(1, srcW/2), max(1, srcH/2)))

	var scaler draw.Scaler
	switch filter {
	case FilterBiLinear:
		scaler = draw.BiLinear
	case FilterApproxBiLinear:
		scaler = draw.ApproxBiLinear
	case FilterNearest:
		scaler = draw.NearestNeighbor
	default:
		boxDownsample(dst, src)
		return dst
	}
	scaler.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
	return dst
}

// boxDownsample averages 2x2 blocks of src into dst.
func boxDownsample(dst, src *image.RGBA) {
	srcW, srcH := src.Rect.Dx(), src.Rect.Dy()
	dstW, dstH := dst.Rect.Dx(), dst.Rect.Dy()

	for dy := 0; dy < dstH; dy++ {
		sy0 := dy * 2
		sy1 := min(sy0+1, srcH-1)
		for dx := 0; dx < dstW; dx++ {
			sx0 := dx * 2
			sx1 := min(sx0+1, srcW-1)

			p0 := src.PixOffset(sx0, sy0)
			p1 := src.PixOffset(sx1, sy0)
			p2 := src.PixOffset(sx0, sy1)
			p3 := src.PixOffset(sx1, sy1)
			d := dst.PixOffset(dx, dy)
			for c := 0; c < 4; c++ {
				sum := uint16(src.Pix[p0+c]) + uint16(src.Pix[p1+c]) + uint16(src.Pix[p2+c]) + uint16(src.Pix[p3+c])
				// Round half up, like the GPU's unorm conversion.
				dst.Pix[d+c] = uint8((sum + 2) / 4)
			}
		}
	}
}

// MaxAbsDiff returns the largest per-channel difference between a and b,
// or 255 when their sizes differ.
func MaxAbsDiff(a, b *image.RGBA) uint8 {
	if a.Rect.Dx() != b.Rect.Dx() || a.Rect.Dy() != b.Rect.Dy() {
		return 255
	}
	var worst uint8
	w, h := a.Rect.Dx(), a.Rect.Dy()
	for y := 0; y < h; y++ {
		ra := a.Pix[y*a.Stride : y*a.Stride+w*4]
		rb := b.Pix[y*b.Stride : y*b.Stride+w*4]
		for i := range ra {
			d := ra[i] - rb[i]
			if rb[i] > ra[i] {
				d = rb[i] - ra[i]
			}
			worst = max(worst, d)
		}
	}
	return worst
}
