// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/mipmap"
	"github.com/gogpu/mipmap/internal/cpumip"
	"gopkg.in/yaml.v3"
)

// defaultConfigFile is picked up from the working directory when no
// -config flag is given.
const defaultConfigFile = "mipgen.yaml"

// Config holds all mipgen settings.
type Config struct {
	Input     string          `yaml:"input"`
	OutputDir string          `yaml:"output_dir"`
	Backend   string          `yaml:"backend"`
	Strategy  string          `yaml:"strategy"`
	Texture   TextureConfig   `yaml:"texture"`
	Generator GeneratorConfig `yaml:"generator"`
	Reference ReferenceConfig `yaml:"reference"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// TextureConfig describes the texture the chain is generated into.
type TextureConfig struct {
	Format string   `yaml:"format"`
	Usage  []string `yaml:"usage"`
	Levels int      `yaml:"levels"` // 0 = full chain
}

// GeneratorConfig holds RenderGenerator options.
type GeneratorConfig struct {
	Filter string `yaml:"filter"`
	Shader string `yaml:"shader"`
	Label  string `yaml:"label"`
}

// ReferenceConfig controls the CPU comparison. An empty Filter disables it.
type ReferenceConfig struct {
	Filter    string `yaml:"filter"`
	Tolerance int    `yaml:"tolerance"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		OutputDir: "mips",
		Backend:   "vulkan",
		Strategy:  "auto",
		Texture: TextureConfig{
			Format: "rgba8unorm",
			Usage:  []string{"texture-binding", "render-attachment"},
		},
		Generator: GeneratorConfig{
			Filter: "linear",
			Shader: "wgsl",
			Label:  "mipgen",
		},
		Reference: ReferenceConfig{
			Tolerance: 2,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load builds the configuration with priority: defaults < file < flags.
// A single positional argument is taken as the input image.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("mipgen", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "path to YAML config file")
		input      = fs.String("input", "", "source image (png, jpeg, bmp, tiff, webp)")
		outputDir  = fs.String("out", "", "directory for the level PNGs")
		backend    = fs.String("backend", "", "HAL backend: vulkan or noop")
		strategy   = fs.String("strategy", "", "generator: auto, render or copy")
		format     = fs.String("format", "", "texture format, e.g. rgba8unorm")
		usage      = fs.String("usage", "", "comma-separated texture usage flags")
		levels     = fs.Int("levels", 0, "mip level count (0 = full chain)")
		filter     = fs.String("filter", "", "sampler filter: linear or nearest")
		shader     = fs.String("shader", "", "shader input: wgsl or spirv")
		reference  = fs.String("reference", "", "compare against a CPU chain: box, bilinear, approx-bilinear, nearest")
		debug      = fs.Bool("debug", false, "enable debug logging")
		logFile    = fs.String("log-file", "", "also log to this file (rotated)")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()

	path := *configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	// Only flags given on the command line override the file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Input = *input
		case "out":
			cfg.OutputDir = *outputDir
		case "backend":
			cfg.Backend = *backend
		case "strategy":
			cfg.Strategy = *strategy
		case "format":
			cfg.Texture.Format = *format
		case "usage":
			cfg.Texture.Usage = splitList(*usage)
		case "levels":
			cfg.Texture.Levels = *levels
		case "filter":
			cfg.Generator.Filter = *filter
		case "shader":
			cfg.Generator.Shader = *shader
		case "reference":
			cfg.Reference.Filter = *reference
		case "debug":
			if *debug {
				cfg.Logging.Level = "debug"
			}
		case "log-file":
			cfg.Logging.File = *logFile
		}
	})
	if cfg.Input == "" && fs.NArg() == 1 {
		cfg.Input = fs.Arg(0)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile merges a YAML file over cfg.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks that every named setting resolves.
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.New("no input image")
	}
	switch c.Backend {
	case "vulkan", "noop":
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	switch c.Strategy {
	case "auto", "render", "copy":
	default:
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}
	if c.Texture.Levels < 0 {
		return fmt.Errorf("negative level count %d", c.Texture.Levels)
	}
	if _, err := c.Format(); err != nil {
		return err
	}
	if _, err := c.Usage(); err != nil {
		return err
	}
	if _, err := c.Options(); err != nil {
		return err
	}
	if _, _, err := c.ReferenceFilter(); err != nil {
		return err
	}
	return nil
}

var formatNames = map[string]gputypes.TextureFormat{
	"r8unorm":         gputypes.TextureFormatR8Unorm,
	"rg8unorm":        gputypes.TextureFormatRG8Unorm,
	"rgba8unorm":      gputypes.TextureFormatRGBA8Unorm,
	"rgba8unorm-srgb": gputypes.TextureFormatRGBA8UnormSrgb,
	"bgra8unorm":      gputypes.TextureFormatBGRA8Unorm,
	"bgra8unorm-srgb": gputypes.TextureFormatBGRA8UnormSrgb,
}

// Format returns the texture format. Only 8-bit formats are accepted since
// the level PNGs are written from raw texels.
func (c *Config) Format() (gputypes.TextureFormat, error) {
	f, ok := formatNames[strings.ToLower(c.Texture.Format)]
	if !ok {
		return 0, fmt.Errorf("unknown texture format %q", c.Texture.Format)
	}
	return f, nil
}

var usageFlags = map[string]gputypes.TextureUsage{
	"copy-src":          gputypes.TextureUsageCopySrc,
	"copy-dst":          gputypes.TextureUsageCopyDst,
	"texture-binding":   gputypes.TextureUsageTextureBinding,
	"storage-binding":   gputypes.TextureUsageStorageBinding,
	"render-attachment": gputypes.TextureUsageRenderAttachment,
}

// Usage returns the configured usage set.
func (c *Config) Usage() (gputypes.TextureUsage, error) {
	var u gputypes.TextureUsage
	for _, name := range c.Texture.Usage {
		bit, ok := usageFlags[strings.ToLower(name)]
		if !ok {
			return 0, fmt.Errorf("unknown texture usage %q", name)
		}
		u |= bit
	}
	return u, nil
}

// Options returns the RenderGenerator options.
func (c *Config) Options() ([]mipmap.Option, error) {
	opts := []mipmap.Option{mipmap.WithLabel(c.Generator.Label)}
	switch c.Generator.Filter {
	case "linear":
		opts = append(opts, mipmap.WithFilter(gputypes.FilterModeLinear))
	case "nearest":
		opts = append(opts, mipmap.WithFilter(gputypes.FilterModeNearest))
	default:
		return nil, fmt.Errorf("unknown filter %q", c.Generator.Filter)
	}
	switch c.Generator.Shader {
	case "wgsl":
		opts = append(opts, mipmap.WithShaderSource(mipmap.ShaderWGSL))
	case "spirv":
		opts = append(opts, mipmap.WithShaderSource(mipmap.ShaderSPIRV))
	default:
		return nil, fmt.Errorf("unknown shader source %q", c.Generator.Shader)
	}
	return opts, nil
}

// ReferenceFilter returns the CPU filter and whether the comparison is on.
func (c *Config) ReferenceFilter() (cpumip.Filter, bool, error) {
	if c.Reference.Filter == "" {
		return cpumip.FilterBox, false, nil
	}
	f, ok := cpumip.ParseFilter(c.Reference.Filter)
	if !ok {
		return 0, false, fmt.Errorf("unknown reference filter %q", c.Reference.Filter)
	}
	return f, true, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
