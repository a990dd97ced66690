// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/mipmap/internal/cpumip"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Backend != "vulkan" {
		t.Errorf("expected backend vulkan, got %s", cfg.Backend)
	}
	if cfg.Strategy != "auto" {
		t.Errorf("expected strategy auto, got %s", cfg.Strategy)
	}
	if cfg.Texture.Format != "rgba8unorm" {
		t.Errorf("expected format rgba8unorm, got %s", cfg.Texture.Format)
	}
	if cfg.Texture.Levels != 0 {
		t.Errorf("expected full chain by default, got %d levels", cfg.Texture.Levels)
	}
	if cfg.Generator.Filter != "linear" {
		t.Errorf("expected linear filter, got %s", cfg.Generator.Filter)
	}
	if cfg.Reference.Filter != "" {
		t.Errorf("expected reference off by default, got %s", cfg.Reference.Filter)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	usage, err := cfg.Usage()
	if err != nil {
		t.Fatalf("default usage: %v", err)
	}
	if want := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment; usage != want {
		t.Errorf("default usage = %v, want %v", usage, want)
	}
}

func TestLoadFlags(t *testing.T) {
	cfg, err := Load([]string{
		"-backend", "noop",
		"-strategy", "copy",
		"-format", "BGRA8Unorm-Srgb",
		"-usage", "texture-binding, copy-dst",
		"-levels", "3",
		"-filter", "nearest",
		"-shader", "spirv",
		"-reference", "bilinear",
		"-debug",
		"in.png",
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Input != "in.png" {
		t.Errorf("Input = %q, want in.png", cfg.Input)
	}
	if cfg.Backend != "noop" || cfg.Strategy != "copy" {
		t.Errorf("backend/strategy = %s/%s", cfg.Backend, cfg.Strategy)
	}
	if f, _ := cfg.Format(); f != gputypes.TextureFormatBGRA8UnormSrgb {
		t.Errorf("Format = %v, want BGRA8UnormSrgb", f)
	}
	if u, _ := cfg.Usage(); u != gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst {
		t.Errorf("Usage = %v", u)
	}
	if cfg.Texture.Levels != 3 {
		t.Errorf("Levels = %d, want 3", cfg.Texture.Levels)
	}
	if f, on, _ := cfg.ReferenceFilter(); !on || f != cpumip.FilterBiLinear {
		t.Errorf("ReferenceFilter = %v, %v", f, on)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mipgen.yaml")
	content := `
input: photo.jpg
output_dir: out
backend: noop
texture:
  format: r8unorm
  usage: [texture-binding, copy-dst]
generator:
  label: terrain
logging:
  level: warn
  file: mipgen.log
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load([]string{"-config", path, "-out", "override"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Input != "photo.jpg" {
		t.Errorf("Input = %q, want photo.jpg", cfg.Input)
	}
	if cfg.OutputDir != "override" {
		t.Errorf("flag should override file: OutputDir = %q", cfg.OutputDir)
	}
	if f, _ := cfg.Format(); f != gputypes.TextureFormatR8Unorm {
		t.Errorf("Format = %v, want R8Unorm", f)
	}
	if len(cfg.Texture.Usage) != 2 {
		t.Errorf("Usage = %v, want 2 entries", cfg.Texture.Usage)
	}
	if cfg.Generator.Label != "terrain" {
		t.Errorf("Label = %q, want terrain", cfg.Generator.Label)
	}
	// Values absent from the file keep their defaults.
	if cfg.Strategy != "auto" || cfg.Generator.Shader != "wgsl" {
		t.Errorf("defaults lost: strategy=%s shader=%s", cfg.Strategy, cfg.Generator.Shader)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.File != "mipgen.log" || cfg.Logging.MaxBackups != 3 {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml"), "in.png"})
	if err == nil || !strings.Contains(err.Error(), "loading config") {
		t.Errorf("err = %v, want loading config error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"no input", func(c *Config) { c.Input = "" }, "no input"},
		{"backend", func(c *Config) { c.Backend = "metal" }, "backend"},
		{"strategy", func(c *Config) { c.Strategy = "compute" }, "strategy"},
		{"levels", func(c *Config) { c.Texture.Levels = -1 }, "level count"},
		{"format", func(c *Config) { c.Texture.Format = "rgba16float" }, "texture format"},
		{"usage", func(c *Config) { c.Texture.Usage = []string{"vertex"} }, "texture usage"},
		{"filter", func(c *Config) { c.Generator.Filter = "cubic" }, "filter"},
		{"shader", func(c *Config) { c.Generator.Shader = "glsl" }, "shader"},
		{"reference", func(c *Config) { c.Reference.Filter = "lanczos" }, "reference filter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Input = "in.png"
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}

	cfg := Default()
	cfg.Input = "in.png"
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config with input: %v", err)
	}
}

func TestOptions(t *testing.T) {
	cfg := Default()
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	// label, filter, shader
	if len(opts) != 3 {
		t.Errorf("len(opts) = %d, want 3", len(opts))
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b,c ")
	if strings.Join(got, "|") != "a|b|c" {
		t.Errorf("splitList = %q", got)
	}
	if splitList("") != nil {
		t.Error("splitList(\"\") should be nil")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mipgen.log")
	cfg := Default().Logging
	cfg.File = path
	cfg.Level = "debug"

	logger, closer := newLogger(cfg)
	logger.Debug("hello from test", "key", "value")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file = %q, missing message", data)
	}
}
