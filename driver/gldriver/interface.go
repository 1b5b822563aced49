// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build sdl

package gldriver

import (
	"fmt"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/ggctx"
	"github.com/gogpu/ggctx/driver"
)

// GL enums outside the 2.1 core profile.
const (
	glRGBA16F    = 0x881A
	glMaxSamples = 0x8D57
)

// Interface is a driver.Interface over one GL context. Every call makes
// the context current for its duration.
type Interface struct {
	host *Host
	ctx  *glContext
	caps driver.Caps

	owned    map[*target]struct{}
	released bool
}

func newInterface(h *Host, c *glContext) *Interface {
	i := &Interface{host: h, ctx: c, owned: make(map[*target]struct{})}
	h.within(c, func() {
		var maxSize, maxSamples int32
		gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &maxSize)
		gl.GetIntegerv(glMaxSamples, &maxSamples)
		i.caps = driver.Caps{
			Name:           "opengl " + gl.GoStr(gl.GetString(gl.RENDERER)),
			MaxTextureSize: int(maxSize),
			MaxSamples:     max(int(maxSamples), 1),
			Formats: []gputypes.TextureFormat{
				gputypes.TextureFormatRGBA8Unorm,
				gputypes.TextureFormatRGBA16Float,
			},
		}
	})
	return i
}

// do runs fn with the context current.
func (i *Interface) do(fn func() error) error {
	if i.released {
		return driver.ErrReleased
	}
	var err error
	i.host.within(i.ctx, func() { err = fn() })
	return err
}

// Caps implements driver.Interface.
func (i *Interface) Caps() driver.Caps { return i.caps }

// BindDefaultFramebuffer implements driver.Interface.
func (i *Interface) BindDefaultFramebuffer() error {
	return i.do(func() error {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return glError("bind default framebuffer")
	})
}

// ClearDefaultFramebuffer implements driver.Interface.
func (i *Interface) ClearDefaultFramebuffer() error {
	return i.do(func() error {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Disable(gl.SCISSOR_TEST)
		gl.ClearColor(0, 0, 0, 0)
		gl.ClearStencil(0)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.STENCIL_BUFFER_BIT)
		return glError("clear default framebuffer")
	})
}

// DefaultFramebuffer implements driver.Interface.
func (i *Interface) DefaultFramebuffer() driver.Framebuffer {
	var fb driver.Framebuffer
	_ = i.do(func() error {
		var samples, stencil int32
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.GetIntegerv(gl.SAMPLES, &samples)
		gl.GetIntegerv(gl.STENCIL_BITS, &stencil)
		w, h := i.ctx.window.GLGetDrawableSize()
		fb = driver.Framebuffer{
			Width:       int(w),
			Height:      int(h),
			SampleCount: max(int(samples), 1),
			StencilBits: int(stencil),
			Format:      gputypes.TextureFormatRGBA8Unorm,
		}
		return nil
	})
	return fb
}

// WrapDefaultFramebuffer implements driver.Interface.
func (i *Interface) WrapDefaultFramebuffer(desc driver.TargetDesc) (driver.Target, error) {
	if i.released {
		return nil, driver.ErrReleased
	}
	if err := i.caps.ValidateTarget(desc); err != nil {
		return nil, err
	}
	fb := i.DefaultFramebuffer()
	if desc.Format != fb.Format {
		return nil, fmt.Errorf("%w: format %v, framebuffer %v", driver.ErrFramebufferMismatch, desc.Format, fb.Format)
	}
	if desc.Width > fb.Width || desc.Height > fb.Height {
		return nil, fmt.Errorf("%w: %dx%d exceeds framebuffer %dx%d",
			driver.ErrFramebufferMismatch, desc.Width, desc.Height, fb.Width, fb.Height)
	}
	return &target{
		owner:    i,
		width:    desc.Width,
		height:   desc.Height,
		format:   desc.Format,
		borrowed: true,
		window:   true,
	}, nil
}

func internalFormat(f gputypes.TextureFormat) int32 {
	if f == gputypes.TextureFormatRGBA16Float {
		return glRGBA16F
	}
	return gl.RGBA8
}

// CreateTarget implements driver.Interface. Targets are single-sample
// textures behind a framebuffer object, with a packed depth/stencil
// renderbuffer when stencil is requested.
func (i *Interface) CreateTarget(desc driver.TargetDesc) (driver.Target, error) {
	if i.released {
		return nil, driver.ErrReleased
	}
	if err := i.caps.ValidateTarget(desc); err != nil {
		return nil, err
	}
	if desc.SampleCount > 1 {
		return nil, fmt.Errorf("%w: %d, GL targets are single-sample", driver.ErrInvalidSampleCount, desc.SampleCount)
	}
	t := &target{
		owner:  i,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		size:   driver.TargetBytes(desc.Width, desc.Height, desc.Format, 1),
	}
	err := i.do(func() error {
		w, h := int32(desc.Width), int32(desc.Height)
		gl.GenTextures(1, &t.tex)
		gl.BindTexture(gl.TEXTURE_2D, t.tex)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.TexImage2D(gl.TEXTURE_2D, 0, internalFormat(desc.Format), w, h, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
		gl.BindTexture(gl.TEXTURE_2D, 0)

		gl.GenFramebuffers(1, &t.fbo)
		gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.tex, 0)
		if desc.StencilBits > 0 {
			gl.GenRenderbuffers(1, &t.rbo)
			gl.BindRenderbuffer(gl.RENDERBUFFER, t.rbo)
			gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, w, h)
			gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, t.rbo)
			gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
		}
		status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		if status != gl.FRAMEBUFFER_COMPLETE {
			t.release()
			return fmt.Errorf("gldriver: framebuffer incomplete: 0x%x", status)
		}
		return glError("create target")
	})
	if err != nil {
		return nil, err
	}
	i.owned[t] = struct{}{}
	return t, nil
}

// WrapTexture implements driver.Interface. The texture is attached to a
// framebuffer object of its own for readback; the texture stays with its
// owner.
func (i *Interface) WrapTexture(id uint32, desc driver.TextureDesc) (driver.Target, error) {
	if i.released {
		return nil, driver.ErrReleased
	}
	if desc.Format != gputypes.TextureFormatRGBA8Unorm && desc.Format != gputypes.TextureFormatRGBA16Float {
		return nil, fmt.Errorf("%w: %v", driver.ErrUnsupportedFormat, desc.Format)
	}
	t := &target{
		owner:    i,
		tex:      id,
		width:    desc.Width,
		height:   desc.Height,
		format:   desc.Format,
		borrowed: true,
	}
	err := i.do(func() error {
		if !gl.IsTexture(id) {
			return fmt.Errorf("%w: %d", driver.ErrUnknownTexture, id)
		}
		var w, h int32
		gl.BindTexture(gl.TEXTURE_2D, id)
		gl.GetTexLevelParameteriv(gl.TEXTURE_2D, 0, gl.TEXTURE_WIDTH, &w)
		gl.GetTexLevelParameteriv(gl.TEXTURE_2D, 0, gl.TEXTURE_HEIGHT, &h)
		gl.BindTexture(gl.TEXTURE_2D, 0)
		if desc.Width > int(w) || desc.Height > int(h) {
			return fmt.Errorf("%w: %dx%d exceeds texture %dx%d", driver.ErrInvalidSize, desc.Width, desc.Height, w, h)
		}
		gl.GenFramebuffers(1, &t.fbo)
		gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, id, 0)
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return glError("wrap texture")
	})
	if err != nil {
		return nil, err
	}
	i.owned[t] = struct{}{}
	return t, nil
}

func (i *Interface) own(t driver.Target) (*target, error) {
	gt, ok := t.(*target)
	if !ok || gt.owner != i {
		return nil, driver.ErrForeignTarget
	}
	if gt.destroyed {
		return nil, driver.ErrReleased
	}
	return gt, nil
}

// WritePixels implements driver.Interface. Rows arrive top-down and are
// stored bottom-up, GL's orientation.
func (i *Interface) WritePixels(t driver.Target, pix []byte, stride int) error {
	gt, err := i.own(t)
	if err != nil {
		return err
	}
	if stride < gt.width*4 || len(pix) < stride*(gt.height-1)+gt.width*4 {
		return fmt.Errorf("%w: %d bytes with stride %d for %dx%d", driver.ErrInvalidSize, len(pix), stride, gt.width, gt.height)
	}
	flipped := flipRows(pix, stride, gt.width, gt.height)
	return i.do(func() error {
		gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
		if gt.window {
			gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
			gl.Disable(gl.BLEND)
			gl.Disable(gl.SCISSOR_TEST)
			gl.WindowPos2i(0, i.originY(gt))
			gl.DrawPixels(int32(gt.width), int32(gt.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&flipped[0]))
			return glError("draw pixels")
		}
		gl.BindTexture(gl.TEXTURE_2D, gt.tex)
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(gt.width), int32(gt.height),
			gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&flipped[0]))
		gl.BindTexture(gl.TEXTURE_2D, 0)
		return glError("upload pixels")
	})
}

// originY is the GL row of the target's bottom edge. Window targets
// smaller than the drawable are anchored at its top-left corner.
func (i *Interface) originY(t *target) int32 {
	if !t.window {
		return 0
	}
	_, h := i.ctx.window.GLGetDrawableSize()
	return max(h-int32(t.height), 0)
}

// ReadPixels implements driver.Interface.
func (i *Interface) ReadPixels(t driver.Target, dst []byte, stride int) error {
	gt, err := i.own(t)
	if err != nil {
		return err
	}
	if stride < gt.width*4 || len(dst) < stride*(gt.height-1)+gt.width*4 {
		return fmt.Errorf("%w: %d bytes with stride %d for %dx%d", driver.ErrInvalidSize, len(dst), stride, gt.width, gt.height)
	}
	data := make([]byte, gt.width*gt.height*4)
	err = i.do(func() error {
		gl.BindFramebuffer(gl.FRAMEBUFFER, gt.fbo)
		gl.PixelStorei(gl.PACK_ALIGNMENT, 4)
		gl.ReadPixels(0, i.originY(gt), int32(gt.width), int32(gt.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&data[0]))
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return glError("read pixels")
	})
	if err != nil {
		return err
	}
	row := gt.width * 4
	for y := range gt.height {
		src := data[(gt.height-1-y)*row:]
		copy(dst[y*stride:y*stride+row], src[:row])
	}
	return nil
}

// Submit implements driver.Interface.
func (i *Interface) Submit(wait bool) error {
	return i.do(func() error {
		if wait {
			gl.Finish()
		} else {
			gl.Flush()
		}
		return glError("submit")
	})
}

// Release implements driver.Interface. It deletes every target the
// interface allocated, including framebuffer objects of wrapped textures.
func (i *Interface) Release() {
	if i.released {
		return
	}
	i.host.within(i.ctx, func() {
		for t := range i.owned {
			t.release()
			t.destroyed = true
		}
		gl.Finish()
	})
	clear(i.owned)
	i.released = true
	ggctx.Logger().Debug("gldriver: interface released", "handle", i.ctx.handle)
}

// target is a texture or the window framebuffer a driver.Target refers
// to.
type target struct {
	owner  *Interface
	tex    uint32
	fbo    uint32
	rbo    uint32
	width  int
	height int
	format gputypes.TextureFormat
	size   uint64

	// borrowed targets do not own tex; window targets draw straight to
	// the default framebuffer.
	borrowed bool
	window   bool

	destroyed bool
}

func (t *target) Width() int                     { return t.width }
func (t *target) Height() int                    { return t.height }
func (t *target) Format() gputypes.TextureFormat { return t.format }
func (t *target) SizeBytes() uint64              { return t.size }
func (t *target) Borrowed() bool                 { return t.borrowed }

// Destroy deletes the GL objects the target owns. The window framebuffer
// and borrowed textures are left alone.
func (t *target) Destroy() {
	if t.destroyed || t.window {
		return
	}
	t.destroyed = true
	i := t.owner
	if !i.released {
		i.host.within(i.ctx, t.release)
	}
	delete(i.owned, t)
}

// release deletes GL objects. The context must be current.
func (t *target) release() {
	if t.rbo != 0 {
		gl.DeleteRenderbuffers(1, &t.rbo)
		t.rbo = 0
	}
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
		t.fbo = 0
	}
	if t.tex != 0 && !t.borrowed {
		gl.DeleteTextures(1, &t.tex)
		t.tex = 0
	}
}

var (
	_ driver.Interface = (*Interface)(nil)
	_ driver.Target    = (*target)(nil)
)
