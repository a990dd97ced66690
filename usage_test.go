// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mipmap

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestRequiredUsages(t *testing.T) {
	if got, want := RenderRequiredUsage(), gputypes.TextureUsageTextureBinding|gputypes.TextureUsageRenderAttachment; got != want {
		t.Errorf("RenderRequiredUsage() = %s, want %s", UsageString(got), UsageString(want))
	}
	if got, want := CopyRequiredUsage(), gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst; got != want {
		t.Errorf("CopyRequiredUsage() = %s, want %s", UsageString(got), UsageString(want))
	}
	// The copy path never renders into the texture.
	if CopyRequiredUsage()&gputypes.TextureUsageRenderAttachment != 0 {
		t.Error("CopyRequiredUsage includes RenderAttachment")
	}
}

func TestSupports(t *testing.T) {
	tests := []struct {
		usage    gputypes.TextureUsage
		required gputypes.TextureUsage
		want     bool
	}{
		{0, 0, true},
		{0, CopyRequiredUsage(), false},
		{CopyRequiredUsage(), CopyRequiredUsage(), true},
		{CopyRequiredUsage() | gputypes.TextureUsageCopySrc, CopyRequiredUsage(), true},
		{gputypes.TextureUsageTextureBinding, CopyRequiredUsage(), false},
		{RenderRequiredUsage(), CopyRequiredUsage(), false},
	}
	for _, tt := range tests {
		if got := Supports(tt.usage, tt.required); got != tt.want {
			t.Errorf("Supports(%s, %s) = %v, want %v",
				UsageString(tt.usage), UsageString(tt.required), got, tt.want)
		}
	}
}

func TestUsageString(t *testing.T) {
	tests := []struct {
		usage gputypes.TextureUsage
		want  string
	}{
		{0, "None"},
		{gputypes.TextureUsageCopyDst, "CopyDst"},
		{CopyRequiredUsage(), "CopyDst|TextureBinding"},
		{RenderRequiredUsage(), "TextureBinding|RenderAttachment"},
		{RenderRequiredUsage() | gputypes.TextureUsageCopySrc, "CopySrc|TextureBinding|RenderAttachment"},
		{gputypes.TextureUsageStorageBinding, "StorageBinding"},
	}
	for _, tt := range tests {
		if got := UsageString(tt.usage); got != tt.want {
			t.Errorf("UsageString(%d) = %q, want %q", uint32(tt.usage), got, tt.want)
		}
	}
}
