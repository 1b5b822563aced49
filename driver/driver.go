// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package driver defines the native driver interface a GPU context is
// built on.
//
// A driver Interface is created per host context by a Factory. It exposes
// just enough of the underlying API for ggctx: the default framebuffer,
// render-target textures, pixel transfer and command submission. Drawing
// itself happens on CPU staging pixels that are uploaded on flush.
package driver

import (
	"errors"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ggctx/host"
)

// Driver errors.
var (
	// ErrUnsupportedFormat is returned when a texture format is not
	// renderable on this interface.
	ErrUnsupportedFormat = errors.New("driver: unsupported texture format")

	// ErrInvalidSampleCount is returned for a sample count the interface
	// cannot provide.
	ErrInvalidSampleCount = errors.New("driver: invalid sample count")

	// ErrInvalidSize is returned for non-positive or oversized dimensions.
	ErrInvalidSize = errors.New("driver: invalid target size")

	// ErrFramebufferMismatch is returned when a wrap request does not
	// describe the default framebuffer.
	ErrFramebufferMismatch = errors.New("driver: request does not match default framebuffer")

	// ErrUnknownTexture is returned when an external texture id is not
	// known to the context.
	ErrUnknownTexture = errors.New("driver: unknown texture")

	// ErrForeignTarget is returned when a Target created by a different
	// interface is passed in.
	ErrForeignTarget = errors.New("driver: target belongs to another interface")

	// ErrReleased is returned after Release.
	ErrReleased = errors.New("driver: interface released")
)

// Interface is the native driver interface bound to a single host context.
//
// Pixel transfer always uses tightly described RGBA 8-bit premultiplied
// rows; implementations convert to the target's storage format.
type Interface interface {
	// Caps reports the interface limits and renderable formats.
	Caps() Caps

	// BindDefaultFramebuffer makes the context's default framebuffer the
	// active render destination.
	BindDefaultFramebuffer() error

	// ClearDefaultFramebuffer clears color to transparent black and
	// stencil to zero.
	ClearDefaultFramebuffer() error

	// DefaultFramebuffer reports the current default framebuffer
	// configuration.
	DefaultFramebuffer() Framebuffer

	// WrapDefaultFramebuffer returns a Target backed by the default
	// framebuffer. The Target does not own the framebuffer.
	WrapDefaultFramebuffer(desc TargetDesc) (Target, error)

	// CreateTarget allocates an owned render-target texture.
	CreateTarget(desc TargetDesc) (Target, error)

	// WrapTexture borrows an externally-owned texture by its native id.
	// Destroying the returned Target never releases the texture.
	WrapTexture(id uint32, desc TextureDesc) (Target, error)

	// WritePixels replaces the full contents of t.
	WritePixels(t Target, pix []byte, stride int) error

	// ReadPixels copies the full contents of t into dst.
	ReadPixels(t Target, dst []byte, stride int) error

	// Submit sends recorded work to the GPU. When wait is true it blocks
	// until the GPU has finished.
	Submit(wait bool) error

	// Release frees interface-owned objects. The host context itself is
	// not destroyed.
	Release()
}

// Factory builds a driver Interface for a host context.
type Factory interface {
	NewInterface(h host.Handle) (Interface, error)
}

// FramebufferReporter is implemented by hosts that can describe a
// context's default framebuffer without building an Interface.
type FramebufferReporter interface {
	Framebuffer(h host.Handle) (Framebuffer, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(h host.Handle) (Interface, error)

// NewInterface calls f(h).
func (f FactoryFunc) NewInterface(h host.Handle) (Interface, error) { return f(h) }

// Target is a GPU texture a surface renders into.
type Target interface {
	Width() int
	Height() int
	Format() gputypes.TextureFormat

	// SizeBytes is the GPU memory the target accounts for. Borrowed and
	// framebuffer targets report zero.
	SizeBytes() uint64

	// Borrowed reports whether the target wraps memory it does not own.
	Borrowed() bool

	Destroy()
}

// Framebuffer describes a context's default framebuffer.
type Framebuffer struct {
	Width       int
	Height      int
	SampleCount int
	StencilBits int
	Format      gputypes.TextureFormat
}

// TargetDesc describes a render target.
type TargetDesc struct {
	Label       string
	Width       int
	Height      int
	Format      gputypes.TextureFormat
	SampleCount int
	StencilBits int
}

// TextureDesc describes a borrowed texture.
type TextureDesc struct {
	Width  int
	Height int
	Format gputypes.TextureFormat
}
