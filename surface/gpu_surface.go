// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"fmt"
	"image"

	"github.com/gogpu/ggctx/driver"
	"github.com/gogpu/ggctx/grcontext"
)

// GPUSurface is a surface bound to a GPU context. Drawing happens on a CPU
// staging image that is uploaded to the GPU target on flush.
//
// An onscreen GPUSurface wraps the context's default framebuffer; a
// render-target GPUSurface owns a budgeted texture from the context's
// resource cache.
type GPUSurface struct {
	kind     Kind
	ctx      *grcontext.DirectContext
	target   driver.Target
	settings ColorSettings

	staging *image.RGBA
	canvas  *Canvas
	dirty   bool
	closed  bool
}

func newGPUSurface(kind Kind, ctx *grcontext.DirectContext, target driver.Target, settings ColorSettings) *GPUSurface {
	s := &GPUSurface{
		kind:     kind,
		ctx:      ctx,
		target:   target,
		settings: settings,
		staging:  image.NewRGBA(image.Rect(0, 0, target.Width(), target.Height())),
	}
	s.canvas = newCanvas(s.staging, s.markDirty)
	return s
}

func (s *GPUSurface) markDirty() {
	if s.dirty || s.closed {
		return
	}
	s.dirty = true
	s.ctx.MarkPending(s)
}

// Width returns the surface width.
func (s *GPUSurface) Width() int { return s.target.Width() }

// Height returns the surface height.
func (s *GPUSurface) Height() int { return s.target.Height() }

// Kind returns KindOnscreen or KindRenderTarget.
func (s *GPUSurface) Kind() Kind { return s.kind }

// ColorSettings returns the pixel format of the GPU target.
func (s *GPUSurface) ColorSettings() ColorSettings { return s.settings }

// Canvas returns the bound canvas.
func (s *GPUSurface) Canvas() *Canvas { return s.canvas }

// Context returns the context the surface is bound to.
func (s *GPUSurface) Context() *grcontext.DirectContext { return s.ctx }

// Target returns the GPU target.
func (s *GPUSurface) Target() driver.Target { return s.target }

// FlushPending uploads pending drawing to the GPU target without
// submitting. It implements grcontext.Flusher.
func (s *GPUSurface) FlushPending() error {
	if !s.dirty || s.closed {
		return nil
	}
	if s.ctx.Abandoned() {
		return grcontext.ErrAbandoned
	}
	if err := s.ctx.Interface().WritePixels(s.target, s.staging.Pix, s.staging.Stride); err != nil {
		return fmt.Errorf("surface: upload %s: %w", s.kind, err)
	}
	s.dirty = false
	s.ctx.TouchRenderTarget(s.target)
	return nil
}

// Flush uploads this surface's pending drawing and submits without
// waiting.
func (s *GPUSurface) Flush() error {
	if s.closed {
		return ErrClosed
	}
	s.ctx.Forget(s)
	if err := s.FlushPending(); err != nil {
		return err
	}
	return s.ctx.Submit(false)
}

// MakeImageSnapshot flushes pending drawing and returns a copy of the
// surface contents.
func (s *GPUSurface) MakeImageSnapshot() (*Image, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if err := s.Flush(); err != nil {
		return nil, err
	}
	return newSnapshot(cloneRGBA(s.staging), driver.ColorTypeRGBA8888), nil
}

// ReadPixels copies a region of the drawn contents into dst.
func (s *GPUSurface) ReadPixels(dst []byte, rowBytes, x, y, w, h int) error {
	if s.closed {
		return ErrClosed
	}
	return readRect(s.staging, dst, rowBytes, x, y, w, h)
}

// Close releases the surface. A render target returns its texture to the
// resource cache as a purgeable scratch resource.
func (s *GPUSurface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.ctx.Forget(s)
	if s.kind == KindRenderTarget {
		s.ctx.ReleaseRenderTarget(s.target)
	}
	return nil
}

var (
	_ Surface           = (*GPUSurface)(nil)
	_ grcontext.Flusher = (*GPUSurface)(nil)
)
