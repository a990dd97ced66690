// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command mipgen generates a mip chain for an image on the GPU and writes
// every level as a PNG.
//
// Usage:
//
//	mipgen [flags] image.png
//
// The texture is created with the configured usage plus CopyDst and CopySrc,
// which the upload and the readback need. With -reference the levels are
// also compared against a chain built on the CPU.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	// Decoders for the accepted input formats.
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/mipmap"
	"github.com/gogpu/mipmap/internal/cpumip"
	"github.com/gogpu/mipmap/internal/texio"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	// Register the Vulkan backend for hal.GetBackend.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

func main() {
	os.Exit(realMain(os.Args[1:]))
}

func realMain(args []string) int {
	cfg, err := Load(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "mipgen:", err)
		return 2
	}

	logger, closer := newLogger(cfg.Logging)
	defer closer.Close()
	mipmap.SetLogger(logger)

	levels, err := run(cfg, logger)
	if err != nil {
		logger.Error("mipgen failed", "error", err)
		return 1
	}
	logger.Info("mip chain written", "levels", len(levels), "dir", cfg.OutputDir)
	return 0
}

// levelResult describes one written mip level.
type levelResult struct {
	Level  uint32
	Width  int
	Height int
	Path   string
	Diff   int // max channel difference to the CPU chain, -1 when not compared
}

// gpu bundles an opened HAL device.
type gpu struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
}

func (g *gpu) close() {
	g.device.Destroy()
	g.instance.Destroy()
}

// run generates, reads back and writes the chain described by cfg.
func run(cfg *Config, logger *slog.Logger) ([]levelResult, error) {
	img, err := decodeImage(cfg.Input)
	if err != nil {
		return nil, err
	}
	format, err := cfg.Format()
	if err != nil {
		return nil, err
	}
	usage, err := cfg.Usage()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	g, err := openDevice(cfg.Backend, logger)
	if err != nil {
		return nil, err
	}
	defer g.close()

	desc := textureDescriptor(cfg, img.Bounds(), format, usage)
	logger.Debug("texture",
		"size", fmt.Sprintf("%dx%d", desc.Size.Width, desc.Size.Height),
		"levels", desc.MipLevelCount,
		"format", format,
		"usage", mipmap.UsageString(desc.Usage))

	render, err := mipmap.NewRenderGenerator(g.device, []gputypes.TextureFormat{format}, opts...)
	if err != nil {
		return nil, err
	}
	defer render.Destroy()

	gen, rendered := pickGenerator(cfg.Strategy, render, desc)
	logger.Info("generating mips", "strategy", cfg.Strategy, "rendered", rendered)

	tex, err := g.device.CreateTexture(desc)
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	defer g.device.DestroyTexture(tex)

	base, err := texio.Pack(img, format)
	if err != nil {
		return nil, err
	}
	if err := texio.Upload(g.queue, tex, desc, 0, 0, base); err != nil {
		return nil, err
	}

	if err := generate(g, gen, tex, desc, cfg.Generator.Label); err != nil {
		return nil, err
	}

	data, err := texio.ReadLevels(g.device, g.queue, tex, desc)
	if err != nil {
		return nil, err
	}

	results, err := writeLevels(cfg.OutputDir, data, desc)
	if err != nil {
		return nil, err
	}

	filter, compare, err := cfg.ReferenceFilter()
	if err != nil {
		return nil, err
	}
	if compare {
		if err := compareReference(results, data, img, desc, filter, cfg.Reference.Tolerance, logger); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// openDevice opens the first adapter of the named backend, preferring a
// discrete or integrated GPU.
func openDevice(backend string, logger *slog.Logger) (*gpu, error) {
	var (
		instance hal.Instance
		err      error
	)
	switch backend {
	case "noop":
		instance, err = noop.API{}.CreateInstance(nil)
	default:
		b, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return nil, fmt.Errorf("vulkan backend not available")
		}
		instance, err = b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	}
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("no GPU adapters found")
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}
	logger.Info("device opened", "backend", backend, "adapter", selected.Info.Name)
	return &gpu{instance: instance, device: openDev.Device, queue: openDev.Queue}, nil
}

func textureDescriptor(cfg *Config, bounds image.Rectangle, format gputypes.TextureFormat, usage gputypes.TextureUsage) *hal.TextureDescriptor {
	size := hal.Extent3D{Width: uint32(bounds.Dx()), Height: uint32(bounds.Dy()), DepthOrArrayLayers: 1}
	levels := mipmap.MaxMipLevelCount(size, gputypes.TextureDimension2D)
	if n := uint32(cfg.Texture.Levels); n > 0 && n < levels {
		levels = n
	}
	return &hal.TextureDescriptor{
		Label:         cfg.Generator.Label,
		Size:          size,
		MipLevelCount: levels,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage | gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc,
	}
}

// pickGenerator returns the generator for strategy and whether it renders
// straight into the texture.
func pickGenerator(strategy string, render *mipmap.RenderGenerator, desc *hal.TextureDescriptor) (mipmap.Generator, bool) {
	switch strategy {
	case "render":
		return render, true
	case "copy":
		return mipmap.NewCopyGenerator(render), false
	default:
		return mipmap.NewAuto(render), mipmap.Supports(desc.Usage, render.RequiredUsage())
	}
}

// generate records the chain, submits it and waits for the GPU.
func generate(g *gpu, gen mipmap.Generator, tex hal.Texture, desc *hal.TextureDescriptor, label string) error {
	enc, err := mipmap.NewEncoder(g.device, label)
	if err != nil {
		return err
	}
	defer enc.Release()

	if err := gen.Generate(g.device, enc, tex, desc); err != nil {
		return err
	}
	cmdBuf, err := enc.Finish()
	if err != nil {
		return err
	}
	return texio.Submit(g.device, g.queue, cmdBuf)
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("decode %s: empty image", path)
	}
	return img, nil
}

// writeLevels writes one PNG per level into dir.
func writeLevels(dir string, data [][]byte, desc *hal.TextureDescriptor) ([]levelResult, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	results := make([]levelResult, len(data))
	for level, texels := range data {
		ext := mipmap.MipExtent(desc.Size, desc.Dimension, uint32(level))
		img, err := texio.Unpack(texels, int(ext.Width), int(ext.Height), desc.Format)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", level, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("level_%02d.png", level))
		if err := writePNG(path, img); err != nil {
			return nil, err
		}
		results[level] = levelResult{
			Level:  uint32(level),
			Width:  int(ext.Width),
			Height: int(ext.Height),
			Path:   path,
			Diff:   -1,
		}
	}
	return results, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// compareReference fills in Diff for every level. The CPU levels go through
// the same texel format as the GPU ones so that channel loss matches.
func compareReference(results []levelResult, data [][]byte, src image.Image, desc *hal.TextureDescriptor,
	filter cpumip.Filter, tolerance int, logger *slog.Logger) error {
	ref := cpumip.Chain(src, len(data), filter)
	for level := range results {
		gpuImg, err := texio.Unpack(data[level], results[level].Width, results[level].Height, desc.Format)
		if err != nil {
			return err
		}
		packed, err := texio.Pack(ref[level], desc.Format)
		if err != nil {
			return err
		}
		cpuImg, err := texio.Unpack(packed, results[level].Width, results[level].Height, desc.Format)
		if err != nil {
			return err
		}

		diff := int(cpumip.MaxAbsDiff(cpumip.ToRGBA(gpuImg), cpumip.ToRGBA(cpuImg)))
		results[level].Diff = diff
		if diff > tolerance {
			logger.Warn("level differs from CPU reference",
				"level", level, "max_diff", diff, "tolerance", tolerance, "filter", filter)
		} else {
			logger.Debug("level matches CPU reference", "level", level, "max_diff", diff)
		}
	}
	return nil
}
