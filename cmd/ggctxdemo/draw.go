// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"image"
	"image/color"

	"github.com/gogpu/ggctx/surface"
)

// draw paints a vertical gradient, a row of rotated squares and a
// checkerboard image scaled through the canvas matrix.
func draw(c *surface.Canvas) {
	w, h := float32(c.Width()), float32(c.Height())
	c.Clear(surface.ColorFromARGB(0xFF101828))

	const steps = 32
	for i := range steps {
		t := float32(i) / steps
		band := surface.Rect{Top: h * t, Right: w, Bottom: h*t + h/steps + 1}
		c.FillRect(band, surface.Color4f{R: 0.1 + t*0.4, G: 0.2 + t*0.3, B: 0.4 + t*0.2, A: 1})
	}

	for i := range 6 {
		save := c.Save()
		c.Translate(w*float32(i+1)/7, h/3)
		c.Rotate(float32(i) * 15)
		c.FillRect(surface.Rect{Left: -20, Top: -20, Right: 20, Bottom: 20},
			surface.Color4f{R: 1, G: float32(i) / 6, B: 0.3, A: 0.85})
		c.RestoreToCount(save)
	}

	save := c.Save()
	c.ClipRect(surface.Rect{Left: w / 4, Top: h / 2, Right: w * 3 / 4, Bottom: h - 16})
	c.Translate(w/4, h/2)
	c.Scale(4, 4)
	c.DrawImage(checkerboard(16), 0, 0, surface.Sampling{Filter: surface.FilterNearest})
	c.RestoreToCount(save)
}

func checkerboard(n int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	light := color.RGBA{R: 0xEE, G: 0xEE, B: 0xEE, A: 0xFF}
	dark := color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xFF}
	for y := range n {
		for x := range n {
			if (x/2+y/2)%2 == 0 {
				img.SetRGBA(x, y, light)
			} else {
				img.SetRGBA(x, y, dark)
			}
		}
	}
	return img
}
