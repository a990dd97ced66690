// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mipmap

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// Encoder is the command buffer builder generators record into.
//
// It wraps a caller-owned hal.CommandEncoder and keeps every transient GPU
// object a generator creates (per-level texture views, bind groups and
// temporary textures) alive until the caller reports, by calling Release,
// that the GPU has finished executing the recorded work. HAL backends do not
// track resource lifetimes, so destroying those objects earlier would leave
// the command buffer referencing freed memory.
//
// Typical use:
//
//	enc, err := mipmap.NewEncoder(device, "mips")
//	...
//	err = gen.Generate(device, enc, tex, desc)
//	cmd, err := enc.Finish()
//	err = queue.Submit([]hal.CommandBuffer{cmd}, fence, 1)
//	device.Wait(fence, 1, timeout)
//	enc.Release()
//
// Encoder never submits work. It is NOT safe for concurrent use.
type Encoder struct {
	device hal.Device
	raw    hal.CommandEncoder
	label  string

	// owned is set when the encoder created raw itself (NewEncoder), which
	// makes it responsible for ending the encoding and freeing the buffer.
	owned    bool
	finished bool
	cmdBuf   hal.CommandBuffer

	textures   []hal.Texture
	views      []hal.TextureView
	bindGroups []hal.BindGroup
}

// NewEncoder creates a HAL command encoder on device and begins encoding.
func NewEncoder(device hal.Device, label string) (*Encoder, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	raw, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("mipmap: create command encoder: %w", err)
	}
	if err := raw.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("mipmap: begin encoding: %w", err)
	}
	return &Encoder{device: device, raw: raw, label: label, owned: true}, nil
}

// WrapEncoder adopts a HAL encoder on which the caller has already called
// BeginEncoding. The caller remains responsible for EndEncoding and for
// the resulting command buffer; Release still destroys the transients.
func WrapEncoder(device hal.Device, raw hal.CommandEncoder) *Encoder {
	return &Encoder{device: device, raw: raw}
}

// Raw returns the underlying HAL encoder.
func (e *Encoder) Raw() hal.CommandEncoder { return e.raw }

// Label returns the debug label given to NewEncoder.
func (e *Encoder) Label() string { return e.label }

// Transients returns the number of GPU objects held until Release.
func (e *Encoder) Transients() int {
	return len(e.textures) + len(e.views) + len(e.bindGroups)
}

// Finish ends encoding and returns the command buffer to submit.
// Only valid for encoders created by NewEncoder.
func (e *Encoder) Finish() (hal.CommandBuffer, error) {
	if err := e.checkRecording(); err != nil {
		return nil, err
	}
	if !e.owned {
		return nil, fmt.Errorf("mipmap: finish: encoder is caller-owned")
	}
	cmdBuf, err := e.raw.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("mipmap: end encoding: %w", err)
	}
	e.finished = true
	e.cmdBuf = cmdBuf
	return cmdBuf, nil
}

// Release destroys every tracked transient and, for encoders created by
// NewEncoder, frees the command buffer or discards an unfinished encoding.
// Call it only after the GPU has completed the submitted work, or when the
// recording is abandoned. Release is idempotent.
func (e *Encoder) Release() {
	if e == nil || e.device == nil {
		return
	}
	for _, bg := range e.bindGroups {
		e.device.DestroyBindGroup(bg)
	}
	for _, v := range e.views {
		e.device.DestroyTextureView(v)
	}
	for _, t := range e.textures {
		e.device.DestroyTexture(t)
	}
	e.bindGroups, e.views, e.textures = nil, nil, nil

	if !e.owned {
		return
	}
	switch {
	case e.cmdBuf != nil:
		e.device.FreeCommandBuffer(e.cmdBuf)
		e.cmdBuf = nil
	case !e.finished:
		e.raw.DiscardEncoding()
	}
	e.finished = true
	e.owned = false
}

func (e *Encoder) checkRecording() error {
	if e == nil || e.raw == nil {
		return ErrNilEncoder
	}
	if e.finished {
		return ErrEncoderFinished
	}
	return nil
}

func (e *Encoder) trackTexture(t hal.Texture)     { e.textures = append(e.textures, t) }
func (e *Encoder) trackView(v hal.TextureView)    { e.views = append(e.views, v) }
func (e *Encoder) trackBindGroup(b hal.BindGroup) { e.bindGroups = append(e.bindGroups, b) }
