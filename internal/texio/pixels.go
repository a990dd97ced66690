// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texio

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
)

// Pack converts img to tightly packed texels of an 8-bit color format.
func Pack(img image.Image, format gputypes.TextureFormat) ([]byte, error) {
	rgba := toRGBA(img)
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	n := w * h

	switch format {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb:
		out := make([]byte, n*4)
		for y := 0; y < h; y++ {
			copy(out[y*w*4:(y+1)*w*4], rgba.Pix[y*rgba.Stride:])
		}
		return out, nil
	case gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb:
		out, _ := Pack(rgba, gputypes.TextureFormatRGBA8Unorm)
		swapRB(out)
		return out, nil
	case gputypes.TextureFormatRG8Unorm:
		out := make([]byte, 0, n*2)
		forEachPixel(rgba, func(p []byte) { out = append(out, p[0], p[1]) })
		return out, nil
	case gputypes.TextureFormatR8Unorm:
		out := make([]byte, 0, n)
		forEachPixel(rgba, func(p []byte) {
			// Rec. 601 luma, as image/color does for Gray.
			y := (19595*uint32(p[0]) + 38470*uint32(p[1]) + 7471*uint32(p[2]) + 1<<15) >> 16
			out = append(out, byte(y))
		})
		return out, nil
	default:
		return nil, fmt.Errorf("%w: cannot pack %v", ErrUnsupportedFormat, format)
	}
}

// Unpack turns tightly packed texels of an 8-bit color format back into an
// image. R8 becomes *image.Gray; everything else *image.RGBA, with missing
// channels zero and alpha opaque.
func Unpack(data []byte, width, height int, format gputypes.TextureFormat) (image.Image, error) {
	bpp, err := BytesPerPixel(format)
	if err != nil {
		return nil, err
	}
	if len(data) != width*height*int(bpp) {
		return nil, fmt.Errorf("%w: %dx%d %v needs %d bytes, got %d",
			ErrSizeMismatch, width, height, format, width*height*int(bpp), len(data))
	}
	rect := image.Rect(0, 0, width, height)

	switch format {
	case gputypes.TextureFormatR8Unorm:
		g := image.NewGray(rect)
		copy(g.Pix, data)
		return g, nil
	case gputypes.TextureFormatRG8Unorm:
		img := image.NewRGBA(rect)
		for i := 0; i < width*height; i++ {
			img.Pix[i*4], img.Pix[i*4+1], img.Pix[i*4+3] = data[i*2], data[i*2+1], 0xff
		}
		return img, nil
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb:
		img := image.NewRGBA(rect)
		copy(img.Pix, data)
		return img, nil
	case gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb:
		img := image.NewRGBA(rect)
		copy(img.Pix, data)
		swapRB(img.Pix)
		return img, nil
	default:
		return nil, fmt.Errorf("%w: cannot unpack %v", ErrUnsupportedFormat, format)
	}
}

// toRGBA returns img as an *image.RGBA with a zero origin, converting
// through x/image/draw when needed.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}

func forEachPixel(img *image.RGBA, fn func(p []byte)) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			fn(row[x*4 : x*4+4])
		}
	}
}

func swapRB(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}
