// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package haldriver

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// blitter draws an RGBA8 texture over a target with the blit shader. The
// color target converts to the target's format, so uploads to BGRA and
// half-float targets need no CPU conversion.
type blitter struct {
	device     hal.Device
	module     hal.ShaderModule
	layout     hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	sampler    hal.Sampler

	// pipelines are created on first use, one per color target format.
	pipelines map[gputypes.TextureFormat]hal.RenderPipeline
}

func newBlitter(device hal.Device) (*blitter, error) {
	b := &blitter{device: device, pipelines: make(map[gputypes.TextureFormat]hal.RenderPipeline)}
	var err error
	if b.module, err = createShaderModule(device, "blit", blitShaderSource); err != nil {
		return nil, err
	}

	// Bind group layout:
	//   Binding 0: source texture (texture_2d, fragment)
	//   Binding 1: sampler (fragment)
	b.layout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "blit_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		b.destroy()
		return nil, fmt.Errorf("haldriver: create blit layout: %w", err)
	}
	b.pipeLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "blit_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{b.layout},
	})
	if err != nil {
		b.destroy()
		return nil, fmt.Errorf("haldriver: create blit pipeline layout: %w", err)
	}

	// Viewport and source are the same size, so every fragment lands on a
	// texel center.
	b.sampler, err = device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "blit_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		b.destroy()
		return nil, fmt.Errorf("haldriver: create blit sampler: %w", err)
	}
	return b, nil
}

// pipeline returns the pipeline that renders into format.
func (b *blitter) pipeline(format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	if p, ok := b.pipelines[format]; ok {
		return p, nil
	}
	p, err := b.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("blit_pipeline_%v", format),
		Layout: b.pipeLayout,
		Vertex: hal.VertexState{
			Module:     b.module,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     b.module,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    format,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return nil, fmt.Errorf("haldriver: create blit pipeline for %v: %w", format, err)
	}
	b.pipelines[format] = p
	return p, nil
}

// blitUpload holds the transient resources of one upload. They live until
// the submission that reads them has finished.
type blitUpload struct {
	src     hal.Texture
	srcView hal.TextureView
	dstView hal.TextureView
	group   hal.BindGroup
}

func (u *blitUpload) release(device hal.Device) {
	if u.group != nil {
		device.DestroyBindGroup(u.group)
	}
	for _, v := range []hal.TextureView{u.dstView, u.srcView} {
		if v != nil {
			device.DestroyTextureView(v)
		}
	}
	if u.src != nil {
		device.DestroyTexture(u.src)
	}
}

// prepare stages w×h RGBA8 rows in a sampled texture and binds it for a
// draw into dst.
func (b *blitter) prepare(queue hal.Queue, dst hal.Texture, pix []byte, stride, w, h int) (*blitUpload, error) {
	u := &blitUpload{}
	size := hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1}
	var err error
	u.src, u.srcView, err = createAttachment(b.device, "blit_source", size, 1, gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return nil, err
	}
	u.dstView, err = b.device.CreateTextureView(dst, &hal.TextureViewDescriptor{Label: "blit_target_view"})
	if err != nil {
		u.release(b.device)
		return nil, fmt.Errorf("haldriver: create blit target view: %w", err)
	}
	u.group, err = b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "blit_bind_group",
		Layout: b.layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: u.srcView.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: b.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		u.release(b.device)
		return nil, fmt.Errorf("haldriver: create blit bind group: %w", err)
	}
	if err := writeTexture(queue, u.src, gputypes.TextureFormatRGBA8Unorm, pix, stride, w, h); err != nil {
		u.release(b.device)
		return nil, err
	}
	return u, nil
}

// record draws the staged source over the top-left w×h of the target.
// Texels outside that area are kept.
func (b *blitter) record(enc hal.CommandEncoder, pipeline hal.RenderPipeline, u *blitUpload, w, h int) {
	rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "blit_upload",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    u.dstView,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
	rp.SetViewport(0, 0, float32(w), float32(h), 0, 1)
	rp.SetScissorRect(0, 0, uint32(w), uint32(h))
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, u.group, nil)
	rp.Draw(3, 1, 0, 0)
	rp.End()
}

func (b *blitter) destroy() {
	for f, p := range b.pipelines {
		b.device.DestroyRenderPipeline(p)
		delete(b.pipelines, f)
	}
	if b.sampler != nil {
		b.device.DestroySampler(b.sampler)
	}
	if b.pipeLayout != nil {
		b.device.DestroyPipelineLayout(b.pipeLayout)
	}
	if b.layout != nil {
		b.device.DestroyBindGroupLayout(b.layout)
	}
	if b.module != nil {
		b.device.DestroyShaderModule(b.module)
	}
	b.sampler, b.pipeLayout, b.layout, b.module = nil, nil, nil, nil
}
