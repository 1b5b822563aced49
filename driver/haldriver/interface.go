// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package haldriver

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ggctx"
	"github.com/gogpu/ggctx/driver"
)

const (
	// copyPitchAlignment is the row alignment texture-to-buffer copies need.
	copyPitchAlignment = 256

	// maxTextureSize is the texture dimension limit reported in Caps.
	maxTextureSize = 8192

	waitTimeout = 5 * time.Second

	// pollInterval is how often wait checks for completed submissions.
	pollInterval = 100 * time.Microsecond
)

// ErrGPUTimeout is returned when the GPU does not finish in time.
var ErrGPUTimeout = errors.New("haldriver: timed out waiting for GPU")

// Interface is a driver.Interface over one context's HAL device.
type Interface struct {
	ctx  *hostContext
	caps driver.Caps
	blit *blitter

	// owned holds targets from CreateTarget still alive.
	owned map[*target]struct{}

	// inflight holds submissions nobody waited on.
	inflight []inflight
	released bool
}

type inflight struct {
	index  uint64
	cmdBuf hal.CommandBuffer

	// upload is freed once the submission has finished.
	upload *blitUpload
}

func newInterface(c *hostContext) (*Interface, error) {
	blit, err := newBlitter(c.device)
	if err != nil {
		return nil, err
	}
	return &Interface{
		ctx: c,
		caps: driver.Caps{
			Name:           c.adapter,
			MaxTextureSize: maxTextureSize,
			MaxSamples:     4,
			Formats: []gputypes.TextureFormat{
				gputypes.TextureFormatRGBA8Unorm,
				gputypes.TextureFormatBGRA8Unorm,
				gputypes.TextureFormatRGBA16Float,
			},
		},
		blit:  blit,
		owned: make(map[*target]struct{}),
	}, nil
}

// Caps implements driver.Interface.
func (i *Interface) Caps() driver.Caps { return i.caps }

// BindDefaultFramebuffer implements driver.Interface. Render passes name
// their attachments explicitly, so binding only checks the interface is
// live.
func (i *Interface) BindDefaultFramebuffer() error {
	if i.released {
		return driver.ErrReleased
	}
	return nil
}

// ClearDefaultFramebuffer implements driver.Interface. It clears color to
// transparent black and stencil to zero, and waits for the GPU.
func (i *Interface) ClearDefaultFramebuffer() error {
	if i.released {
		return driver.ErrReleased
	}
	fb := &i.ctx.fb
	return i.submitAndWait("framebuffer_clear", func(enc hal.CommandEncoder) error {
		rp := enc.BeginRenderPass(fb.clearPass())
		rp.End()
		return nil
	})
}

// DefaultFramebuffer implements driver.Interface.
func (i *Interface) DefaultFramebuffer() driver.Framebuffer { return i.ctx.fb.info }

// WrapDefaultFramebuffer implements driver.Interface. The target borrows
// the framebuffer color texture; desc must use its format and fit inside
// it.
func (i *Interface) WrapDefaultFramebuffer(desc driver.TargetDesc) (driver.Target, error) {
	if i.released {
		return nil, driver.ErrReleased
	}
	if err := i.caps.ValidateTarget(desc); err != nil {
		return nil, err
	}
	fb := i.ctx.fb.info
	if desc.Format != fb.Format {
		return nil, fmt.Errorf("%w: format %v, framebuffer %v", driver.ErrFramebufferMismatch, desc.Format, fb.Format)
	}
	if desc.Width > fb.Width || desc.Height > fb.Height {
		return nil, fmt.Errorf("%w: %dx%d exceeds framebuffer %dx%d",
			driver.ErrFramebufferMismatch, desc.Width, desc.Height, fb.Width, fb.Height)
	}
	return &target{
		owner:    i,
		tex:      i.ctx.fb.color,
		width:    desc.Width,
		height:   desc.Height,
		format:   desc.Format,
		borrowed: true,
	}, nil
}

// CreateTarget implements driver.Interface. Multisampled targets get a
// multisample attachment resolved into the single-sample texture that
// uploads and readback use.
func (i *Interface) CreateTarget(desc driver.TargetDesc) (driver.Target, error) {
	if i.released {
		return nil, driver.ErrReleased
	}
	if err := i.caps.ValidateTarget(desc); err != nil {
		return nil, err
	}
	device := i.ctx.device
	size := hal.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1}
	label := desc.Label
	if label == "" {
		label = "render_target"
	}

	t := &target{
		owner:  i,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		size:   driver.TargetBytes(desc.Width, desc.Height, desc.Format, desc.SampleCount),
	}
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage: gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("haldriver: create %s texture: %w", label, err)
	}
	t.tex = tex
	if desc.SampleCount > 1 {
		t.msaa, t.msaaView, err = createAttachment(device, label+"_msaa", size, uint32(desc.SampleCount),
			desc.Format, gputypes.TextureUsageRenderAttachment)
		if err != nil {
			device.DestroyTexture(tex)
			return nil, err
		}
	}
	i.owned[t] = struct{}{}
	return t, nil
}

// WrapTexture implements driver.Interface for textures registered with
// Host.CreateTexture.
func (i *Interface) WrapTexture(id uint32, desc driver.TextureDesc) (driver.Target, error) {
	if i.released {
		return nil, driver.ErrReleased
	}
	tex, ok := i.ctx.texture(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", driver.ErrUnknownTexture, id)
	}
	if desc.Width > tex.width || desc.Height > tex.height {
		return nil, fmt.Errorf("%w: %dx%d exceeds texture %dx%d",
			driver.ErrInvalidSize, desc.Width, desc.Height, tex.width, tex.height)
	}
	if desc.Format != tex.format {
		return nil, fmt.Errorf("%w: %v, texture is %v", driver.ErrUnsupportedFormat, desc.Format, tex.format)
	}
	return &target{
		owner:    i,
		tex:      tex.tex,
		width:    desc.Width,
		height:   desc.Height,
		format:   desc.Format,
		borrowed: true,
	}, nil
}

func (i *Interface) own(t driver.Target) (*target, error) {
	ht, ok := t.(*target)
	if !ok || ht.owner != i {
		return nil, driver.ErrForeignTarget
	}
	if ht.destroyed {
		return nil, driver.ErrReleased
	}
	return ht, nil
}

// WritePixels implements driver.Interface. The upload is queued; it
// completes before any later submission. RGBA8 targets are written
// directly; other formats are drawn from an RGBA8 copy by the blit
// pipeline, or converted on the CPU when no pipeline can be built.
func (i *Interface) WritePixels(t driver.Target, pix []byte, stride int) error {
	if i.released {
		return driver.ErrReleased
	}
	ht, err := i.own(t)
	if err != nil {
		return err
	}
	if ht.format != gputypes.TextureFormatRGBA8Unorm {
		err := i.blitPixels(ht, pix, stride)
		if err == nil {
			return nil
		}
		ggctx.Logger().Debug("haldriver: blit upload failed, converting on the CPU",
			"format", ht.format, "error", err)
	}
	return writeTexture(i.ctx.queue, ht.tex, ht.format, pix, stride, ht.width, ht.height)
}

// blitPixels uploads pix through the blit pipeline. The submission is left
// in flight.
func (i *Interface) blitPixels(t *target, pix []byte, stride int) error {
	pipeline, err := i.blit.pipeline(t.format)
	if err != nil {
		return err
	}
	u, err := i.blit.prepare(i.ctx.queue, t.tex, pix, stride, t.width, t.height)
	if err != nil {
		return err
	}
	f, err := i.encodeAndSubmit("blit_upload", func(enc hal.CommandEncoder) error {
		i.blit.record(enc, pipeline, u, t.width, t.height)
		return nil
	})
	if err != nil {
		u.release(i.ctx.device)
		return err
	}
	f.upload = u
	i.inflight = append(i.inflight, f)
	return nil
}

// writeTexture uploads RGBA8 rows to tex, converting to format.
func writeTexture(queue hal.Queue, tex hal.Texture, format gputypes.TextureFormat, pix []byte, stride, w, h int) error {
	data := encodeRows(format, pix, stride, w, h)
	bpp := driver.BytesPerPixel(format)
	err := queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(w * bpp),
			RowsPerImage: uint32(h),
		},
		&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("haldriver: write texture: %w", err)
	}
	return nil
}

// ReadPixels implements driver.Interface. It copies the texture into a
// staging buffer, waits for the GPU and converts to RGBA8.
func (i *Interface) ReadPixels(t driver.Target, dst []byte, stride int) error {
	if i.released {
		return driver.ErrReleased
	}
	ht, err := i.own(t)
	if err != nil {
		return err
	}
	device := i.ctx.device
	w, h := uint32(ht.width), uint32(ht.height)
	bytesPerRow := w * uint32(driver.BytesPerPixel(ht.format))
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	bufSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "readback_staging",
		Size:  bufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("haldriver: create staging buffer: %w", err)
	}
	defer device.DestroyBuffer(staging)

	err = i.submitAndWait("readback", func(enc hal.CommandEncoder) error {
		enc.TransitionTextures([]hal.TextureBarrier{{
			Texture: ht.tex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		}})
		enc.CopyTextureToBuffer(ht.tex, staging, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
			TextureBase:  hal.ImageCopyTexture{Texture: ht.tex, MipLevel: 0},
			Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		}})
		enc.TransitionTextures([]hal.TextureBarrier{{
			Texture: ht.tex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageCopySrc,
				NewUsage: gputypes.TextureUsageRenderAttachment,
			},
		}})
		return nil
	})
	if err != nil {
		return err
	}

	mapping, err := device.MapBuffer(staging, 0, bufSize)
	if err != nil {
		return fmt.Errorf("haldriver: map staging buffer: %w", err)
	}
	readback := unsafe.Slice((*byte)(mapping.Ptr), bufSize)
	decodeRows(ht.format, readback, int(alignedBytesPerRow), dst, stride, ht.width, ht.height)
	if err := device.UnmapBuffer(staging); err != nil {
		return fmt.Errorf("haldriver: unmap staging buffer: %w", err)
	}
	return nil
}

// Submit implements driver.Interface. Queued uploads are flushed by an
// empty submission; with wait it also blocks until every earlier
// submission has finished.
func (i *Interface) Submit(wait bool) error {
	if i.released {
		return driver.ErrReleased
	}
	if wait {
		if err := i.submitAndWait("submit", nil); err != nil {
			return err
		}
		return i.drain()
	}
	f, err := i.encodeAndSubmit("submit", nil)
	if err != nil {
		return err
	}
	i.inflight = append(i.inflight, f)
	return nil
}

// encodeAndSubmit records fn into a new command buffer and submits it.
func (i *Interface) encodeAndSubmit(label string, fn func(hal.CommandEncoder) error) (inflight, error) {
	device := i.ctx.device
	enc, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label + "_encoder"})
	if err != nil {
		return inflight{}, fmt.Errorf("haldriver: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		return inflight{}, fmt.Errorf("haldriver: begin encoding: %w", err)
	}
	if fn != nil {
		if err := fn(enc); err != nil {
			enc.DiscardEncoding()
			return inflight{}, err
		}
	}
	cmdBuf, err := enc.EndEncoding()
	if err != nil {
		return inflight{}, fmt.Errorf("haldriver: end encoding: %w", err)
	}
	index, err := i.ctx.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		device.FreeCommandBuffer(cmdBuf)
		return inflight{}, fmt.Errorf("haldriver: submit: %w", err)
	}
	return inflight{index: index, cmdBuf: cmdBuf}, nil
}

func (i *Interface) submitAndWait(label string, fn func(hal.CommandEncoder) error) error {
	f, err := i.encodeAndSubmit(label, fn)
	if err != nil {
		return err
	}
	return i.wait(f)
}

// wait blocks until f has completed and frees its resources. On timeout
// the resources are left alone since the GPU may still use them.
func (i *Interface) wait(f inflight) error {
	deadline := time.Now().Add(waitTimeout)
	for i.ctx.queue.PollCompleted() < f.index {
		if time.Now().After(deadline) {
			return ErrGPUTimeout
		}
		time.Sleep(pollInterval)
	}
	device := i.ctx.device
	device.FreeCommandBuffer(f.cmdBuf)
	if f.upload != nil {
		f.upload.release(device)
	}
	return nil
}

// drain waits for all unsynchronized submissions.
func (i *Interface) drain() error {
	pending := i.inflight
	i.inflight = nil
	var errs []error
	for _, f := range pending {
		if err := i.wait(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Pending returns the number of submissions not yet waited on.
func (i *Interface) Pending() int { return len(i.inflight) }

// Release implements driver.Interface. It waits for outstanding work and
// destroys every target from CreateTarget. Borrowed textures and the
// device are left alone.
func (i *Interface) Release() {
	if i.released {
		return
	}
	if err := i.drain(); err != nil {
		ggctx.Logger().Warn("haldriver: release: GPU still busy", "error", err)
	}
	for t := range i.owned {
		t.Destroy()
	}
	if i.blit != nil {
		i.blit.destroy()
		i.blit = nil
	}
	i.released = true
}

// target is a texture a driver.Target refers to.
type target struct {
	owner    *Interface
	tex      hal.Texture
	msaa     hal.Texture
	msaaView hal.TextureView
	width    int
	height   int
	format   gputypes.TextureFormat
	size     uint64
	borrowed bool

	destroyed bool
}

func (t *target) Width() int                     { return t.width }
func (t *target) Height() int                    { return t.height }
func (t *target) Format() gputypes.TextureFormat { return t.format }
func (t *target) SizeBytes() uint64              { return t.size }
func (t *target) Borrowed() bool                 { return t.borrowed }

// Destroy releases an owned texture. It does nothing for borrowed ones.
func (t *target) Destroy() {
	if t.destroyed || t.borrowed {
		return
	}
	t.destroyed = true
	device := t.owner.ctx.device
	if t.msaaView != nil {
		device.DestroyTextureView(t.msaaView)
	}
	if t.msaa != nil {
		device.DestroyTexture(t.msaa)
	}
	device.DestroyTexture(t.tex)
	delete(t.owner.owned, t)
}

var (
	_ driver.Interface = (*Interface)(nil)
	_ driver.Target    = (*target)(nil)
)
