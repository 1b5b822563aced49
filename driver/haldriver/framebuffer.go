// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package haldriver

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ggctx/driver"
	"github.com/gogpu/ggctx/host"
)

// framebuffer holds the attachments of a context's default framebuffer.
//
//   - color: single-sample, the presentable and read-back image
//   - msaa: multisample color resolved into color, when antialiased
//   - depth: Depth24PlusStencil8, when the context has a stencil buffer
type framebuffer struct {
	info driver.Framebuffer

	color     hal.Texture
	colorView hal.TextureView
	msaa      hal.Texture
	msaaView  hal.TextureView
	depth     hal.Texture
	depthView hal.TextureView
}

func (fb *framebuffer) create(device hal.Device, attrs host.ContextAttributes, format gputypes.TextureFormat) error {
	w, h := attrs.Size()
	samples := attrs.SampleCount()
	fb.info = driver.Framebuffer{
		Width:       w,
		Height:      h,
		SampleCount: samples,
		StencilBits: attrs.StencilBits(),
		Format:      format,
	}
	size := hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1}

	var err error
	fb.color, fb.colorView, err = createAttachment(device, "framebuffer_color", size, 1, format,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc|gputypes.TextureUsageCopyDst)
	if err != nil {
		return err
	}
	if samples > 1 {
		fb.msaa, fb.msaaView, err = createAttachment(device, "framebuffer_msaa_color", size, uint32(samples), format,
			gputypes.TextureUsageRenderAttachment)
		if err != nil {
			fb.destroy(device)
			return err
		}
	}
	if attrs.Stencil || attrs.Depth {
		fb.depth, fb.depthView, err = createAttachment(device, "framebuffer_depth_stencil", size, uint32(samples),
			gputypes.TextureFormatDepth24PlusStencil8, gputypes.TextureUsageRenderAttachment)
		if err != nil {
			fb.destroy(device)
			return err
		}
	}
	return nil
}

func createAttachment(device hal.Device, label string, size hal.Extent3D, samples uint32,
	format gputypes.TextureFormat, usage gputypes.TextureUsage) (hal.Texture, hal.TextureView, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("haldriver: create %s texture: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: label + "_view"})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, nil, fmt.Errorf("haldriver: create %s view: %w", label, err)
	}
	return tex, view, nil
}

func (fb *framebuffer) destroy(device hal.Device) {
	for _, v := range []hal.TextureView{fb.depthView, fb.msaaView, fb.colorView} {
		if v != nil {
			device.DestroyTextureView(v)
		}
	}
	for _, t := range []hal.Texture{fb.depth, fb.msaa, fb.color} {
		if t != nil {
			device.DestroyTexture(t)
		}
	}
	*fb = framebuffer{info: fb.info}
}

// clearPass describes a pass that clears every attachment.
func (fb *framebuffer) clearPass() *hal.RenderPassDescriptor {
	color := hal.RenderPassColorAttachment{
		View:       fb.colorView,
		LoadOp:     gputypes.LoadOpClear,
		StoreOp:    gputypes.StoreOpStore,
		ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
	}
	if fb.msaaView != nil {
		color.View, color.ResolveTarget = fb.msaaView, fb.colorView
	}
	desc := &hal.RenderPassDescriptor{
		Label:            "framebuffer_clear",
		ColorAttachments: []hal.RenderPassColorAttachment{color},
	}
	if fb.depthView != nil {
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:              fb.depthView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: 0,
		}
	}
	return desc
}
