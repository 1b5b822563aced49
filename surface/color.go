// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"image/color"
	"math"
)

// Color4f is an unpremultiplied color with components in [0, 1].
type Color4f struct {
	R, G, B, A float32
}

// ColorFromARGB unpacks a 32-bit 0xAARRGGBB color.
func ColorFromARGB(argb uint32) color.NRGBA {
	return color.NRGBA{
		R: uint8(argb >> 16),
		G: uint8(argb >> 8),
		B: uint8(argb),
		A: uint8(argb >> 24),
	}
}

// ColorFromSlice reads four floats in RGBA order. It returns false if v
// holds fewer than four values.
func ColorFromSlice(v []float32) (Color4f, bool) {
	if len(v) < 4 {
		return Color4f{}, false
	}
	return Color4f{R: v[0], G: v[1], B: v[2], A: v[3]}, true
}

// RGBA implements color.Color.
func (c Color4f) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// NRGBA converts c to an 8-bit color.
func (c Color4f) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: clamp255(c.R),
		G: clamp255(c.G),
		B: clamp255(c.B),
		A: clamp255(c.A),
	}
}

// ARGB packs c into 0xAARRGGBB.
func (c Color4f) ARGB() uint32 {
	n := c.NRGBA()
	return uint32(n.A)<<24 | uint32(n.R)<<16 | uint32(n.G)<<8 | uint32(n.B)
}

func clamp255(v float32) uint8 {
	if math.IsNaN(float64(v)) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
