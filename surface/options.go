// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

// FramebufferConfig overrides the default framebuffer's sample count and
// stencil depth when wrapping it.
type FramebufferConfig struct {
	SampleCount int
	StencilBits int
}

// Options configures surface creation.
type Options struct {
	Width  int
	Height int

	// ColorSpace selects the pixel format of GPU surfaces.
	ColorSpace ColorSpace

	// Framebuffer overrides the default framebuffer configuration of
	// onscreen surfaces. Nil uses the current configuration.
	Framebuffer *FramebufferConfig
}

// Option configures an onscreen or best-available surface.
type Option func(*Options)

// WithColorSpace sets the surface color space.
func WithColorSpace(cs ColorSpace) Option {
	return func(o *Options) {
		o.ColorSpace = cs
	}
}

// WithFramebuffer overrides the sample count and stencil bits of the
// default framebuffer.
func WithFramebuffer(sampleCount, stencilBits int) Option {
	return func(o *Options) {
		o.Framebuffer = &FramebufferConfig{SampleCount: sampleCount, StencilBits: stencilBits}
	}
}

func buildOptions(width, height int, opts []Option) Options {
	o := Options{Width: width, Height: height}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
