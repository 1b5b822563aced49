// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package host

// Default canvas dimensions used when a host has no explicit size.
const (
	DefaultWidth  = 300
	DefaultHeight = 150
)

// ContextAttributes configures a new context's default framebuffer.
type ContextAttributes struct {
	Alpha                 bool
	Depth                 bool
	Stencil               bool
	Antialias             bool
	PremultipliedAlpha    bool
	PreserveDrawingBuffer bool

	// MajorVersion selects the API generation (2 or 1).
	MajorVersion int

	// Width and Height size the default framebuffer for hosts that
	// allocate it themselves. Zero selects DefaultWidth/DefaultHeight.
	Width  int
	Height int
}

// DefaultAttributes returns the attributes every context is created with
// unless overridden: alpha, depth, stencil, antialias and premultiplied
// alpha on, drawing buffer not preserved, version 2.
func DefaultAttributes() ContextAttributes {
	return ContextAttributes{
		Alpha:              true,
		Depth:              true,
		Stencil:            true,
		Antialias:          true,
		PremultipliedAlpha: true,
		MajorVersion:       2,
	}
}

// Size returns the framebuffer size, substituting defaults for zero values.
func (a ContextAttributes) Size() (width, height int) {
	width, height = a.Width, a.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return width, height
}

// SampleCount returns the MSAA sample count implied by Antialias.
func (a ContextAttributes) SampleCount() int {
	if a.Antialias {
		return 4
	}
	return 1
}

// StencilBits returns the stencil depth implied by Stencil.
func (a ContextAttributes) StencilBits() int {
	if a.Stencil {
		return 8
	}
	return 0
}
