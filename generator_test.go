// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mipmap

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// fixedGenerator is a Generator stub with a fixed requirement.
type fixedGenerator struct {
	name  string
	usage gputypes.TextureUsage
}

func (g *fixedGenerator) Generate(hal.Device, *Encoder, hal.Texture, *hal.TextureDescriptor) error {
	return nil
}

func (g *fixedGenerator) RequiredUsage() gputypes.TextureUsage { return g.usage }

func TestSelect(t *testing.T) {
	render := &fixedGenerator{name: "render", usage: RenderRequiredUsage()}
	cp := &fixedGenerator{name: "copy", usage: CopyRequiredUsage()}

	tests := []struct {
		name  string
		usage gputypes.TextureUsage
		want  string
	}{
		{"render capable", RenderRequiredUsage(), "render"},
		{"both", RenderRequiredUsage() | CopyRequiredUsage(), "render"},
		{"copy only", CopyRequiredUsage(), "copy"},
		{"copy with extra flags", CopyRequiredUsage() | gputypes.TextureUsageCopySrc, "copy"},
		{"neither", gputypes.TextureUsageTextureBinding, ""},
		{"empty", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := &hal.TextureDescriptor{Usage: tt.usage}
			g, err := Select(desc, render, nil, cp)
			if tt.want == "" {
				var ue *UnsupportedUsageError
				if !errors.As(err, &ue) {
					t.Fatalf("err = %v, want *UnsupportedUsageError", err)
				}
				if ue.Usage != tt.usage {
					t.Errorf("Usage = %s, want %s", UsageString(ue.Usage), UsageString(tt.usage))
				}
				return
			}
			if err != nil {
				t.Fatalf("Select failed: %v", err)
			}
			if got := g.(*fixedGenerator).name; got != tt.want {
				t.Errorf("Select chose %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelectNilDescriptor(t *testing.T) {
	if _, err := Select(nil); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("err = %v, want ErrInvalidDescriptor", err)
	}
}

func TestAuto(t *testing.T) {
	tests := []struct {
		name         string
		usage        gputypes.TextureUsage
		wantTextures int
		wantErr      error
	}{
		{"render path", RenderRequiredUsage(), 0, nil},
		{"copy path", CopyRequiredUsage(), 1, nil},
		{"unsupported", gputypes.TextureUsageCopyDst, 0, ErrUnsupportedUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := testDescriptor(64, gputypes.TextureFormatRGBA8Unorm, tt.usage)
			dev, render, tex := newTestSetup(t, desc)
			enc, _ := newTestEncoder(t, dev)

			auto := NewAuto(render)
			if got := auto.RequiredUsage(); got != CopyRequiredUsage() {
				t.Errorf("RequiredUsage() = %s, want %s", UsageString(got), UsageString(CopyRequiredUsage()))
			}
			err := auto.Generate(dev, enc, tex, desc)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				var ue *UnsupportedUsageError
				if errors.As(err, &ue) && ue.Usage != tt.usage {
					t.Errorf("Usage = %s, want %s", UsageString(ue.Usage), UsageString(tt.usage))
				}
				return
			}
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if len(dev.textures) != tt.wantTextures {
				t.Errorf("created %d temporary textures, want %d", len(dev.textures), tt.wantTextures)
			}
		})
	}
}

func TestAutoNilDescriptor(t *testing.T) {
	if err := NewAuto(&RenderGenerator{}).Generate(nil, nil, nil, nil); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("err = %v, want ErrInvalidDescriptor", err)
	}
}

func TestAutoNilRender(t *testing.T) {
	for _, usage := range []gputypes.TextureUsage{RenderRequiredUsage(), CopyRequiredUsage()} {
		desc := testDescriptor(16, gputypes.TextureFormatRGBA8Unorm, usage)
		dev := newRecordingDevice(t)
		enc, _ := newTestEncoder(t, dev)

		err := NewAuto(nil).Generate(dev, enc, nil, desc)
		if !errors.Is(err, ErrGeneratorDestroyed) {
			t.Errorf("%s: err = %v, want ErrGeneratorDestroyed", UsageString(usage), err)
		}
	}
}
