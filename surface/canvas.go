// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Canvas draws into a surface's pixels. It is a non-owning view: it is
// valid exactly as long as the surface that returned it.
//
// Canvas is a minimal drawing front end. Paths, paints and text come from
// an external rendering engine that draws through the surface pixels.
type Canvas struct {
	dst    *image.RGBA
	matrix Matrix
	clip   image.Rectangle
	stack  []canvasState
	rast   vector.Rasterizer

	// onDraw is called after every pixel-modifying operation.
	onDraw func()
}

type canvasState struct {
	matrix Matrix
	clip   image.Rectangle
}

func newCanvas(dst *image.RGBA, onDraw func()) *Canvas {
	if onDraw == nil {
		onDraw = func() {}
	}
	return &Canvas{
		dst:    dst,
		matrix: Identity(),
		clip:   dst.Bounds(),
		onDraw: onDraw,
	}
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.dst.Bounds().Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.dst.Bounds().Dy() }

// Save pushes the matrix and clip and returns the save count before the
// push.
func (c *Canvas) Save() int {
	n := c.SaveCount()
	c.stack = append(c.stack, canvasState{matrix: c.matrix, clip: c.clip})
	return n
}

// Restore pops the last saved matrix and clip. Unbalanced calls are
// ignored.
func (c *Canvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	top := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.matrix, c.clip = top.matrix, top.clip
}

// RestoreToCount pops until SaveCount equals n.
func (c *Canvas) RestoreToCount(n int) {
	for c.SaveCount() > max(n, 1) {
		c.Restore()
	}
}

// SaveCount returns 1 plus the number of outstanding saves.
func (c *Canvas) SaveCount() int { return len(c.stack) + 1 }

// Translate pre-concatenates a translation.
func (c *Canvas) Translate(dx, dy float32) {
	c.Concat(Translate(float64(dx), float64(dy)))
}

// Scale pre-concatenates a scale.
func (c *Canvas) Scale(sx, sy float32) {
	c.Concat(Scale(float64(sx), float64(sy)))
}

// Rotate pre-concatenates a rotation in degrees.
func (c *Canvas) Rotate(degrees float32) {
	c.Concat(Rotate(float64(degrees) * math.Pi / 180))
}

// Concat pre-concatenates m: m applies before the current matrix.
func (c *Canvas) Concat(m Matrix) {
	c.matrix = c.matrix.Multiply(m)
}

// SetMatrix replaces the current matrix.
func (c *Canvas) SetMatrix(m Matrix) { c.matrix = m }

// ResetMatrix sets the current matrix to identity.
func (c *Canvas) ResetMatrix() { c.matrix = Identity() }

// TotalMatrix returns the current matrix.
func (c *Canvas) TotalMatrix() Matrix { return c.matrix }

// ClipRect intersects the clip with the device-space bounds of r.
func (c *Canvas) ClipRect(r Rect) {
	c.clip = c.clip.Intersect(c.deviceBounds(r))
}

// ClipBounds returns the current device-space clip.
func (c *Canvas) ClipBounds() image.Rectangle { return c.clip }

// Clear replaces every pixel inside the clip with col, ignoring the matrix.
func (c *Canvas) Clear(col color.Color) {
	if c.clip.Empty() {
		return
	}
	draw.Draw(c.dst, c.clip, image.NewUniform(col), image.Point{}, draw.Src)
	c.onDraw()
}

// FillRect fills r, transformed by the current matrix, with col using
// source-over blending.
func (c *Canvas) FillRect(r Rect, col color.Color) {
	if r.IsEmpty() || c.clip.Empty() {
		return
	}
	clip := c.clip
	ox, oy := float64(clip.Min.X), float64(clip.Min.Y)
	poly := make([][2]float64, 0, 8)
	for _, p := range [4][2]float32{
		{r.Left, r.Top}, {r.Right, r.Top}, {r.Right, r.Bottom}, {r.Left, r.Bottom},
	} {
		x, y := c.matrix.MapPoint(float64(p[0]), float64(p[1]))
		if !finite(x) || !finite(y) {
			return
		}
		poly = append(poly, [2]float64{x - ox, y - oy})
	}
	// The rasterizer walks every row between a segment's endpoints, so
	// far-away vertices are cut back to the clip first.
	poly = clipPolygon(poly, float64(clip.Dx()), float64(clip.Dy()))
	if len(poly) < 3 {
		return
	}

	z := &c.rast
	z.Reset(clip.Dx(), clip.Dy())
	z.DrawOp = draw.Over
	for i, p := range poly {
		px, py := float32(p[0]), float32(p[1])
		if i == 0 {
			z.MoveTo(px, py)
		} else {
			z.LineTo(px, py)
		}
	}
	z.ClosePath()
	z.Draw(c.dst, clip, image.NewUniform(col), image.Point{})
	c.onDraw()
}

// DrawImage draws img with its top-left corner at (x, y) in local
// coordinates. Perspective components of the matrix are ignored.
func (c *Canvas) DrawImage(img image.Image, x, y float32, s Sampling) {
	if img == nil || c.clip.Empty() {
		return
	}
	b := img.Bounds()
	m := c.matrix.Multiply(Translate(float64(x)-float64(b.Min.X), float64(y)-float64(b.Min.Y)))
	dst, ok := c.dst.SubImage(c.clip).(*image.RGBA)
	if !ok {
		return
	}
	interpolator(s).Transform(dst, m.Aff3(), img, b, xdraw.Over, nil)
	c.onDraw()
}

// interpolator maps sampling options to an x/image resampler.
func interpolator(s Sampling) xdraw.Interpolator {
	switch {
	case s.Cubic:
		return xdraw.CatmullRom
	case s.Filter == FilterNearest:
		return xdraw.NearestNeighbor
	case s.Mipmap == MipmapLinear:
		return xdraw.BiLinear
	}
	return xdraw.ApproxBiLinear
}

// deviceBounds returns the pixel bounds of r after transformation.
func (c *Canvas) deviceBounds(r Rect) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range [4][2]float32{
		{r.Left, r.Top}, {r.Right, r.Top}, {r.Right, r.Bottom}, {r.Left, r.Bottom},
	} {
		x, y := c.matrix.MapPoint(float64(p[0]), float64(p[1]))
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	if math.IsNaN(minX + minY + maxX + maxY) {
		return image.Rectangle{}
	}
	return image.Rect(
		pixel(math.Floor(minX)), pixel(math.Floor(minY)),
		pixel(math.Ceil(maxX)), pixel(math.Ceil(maxY)),
	)
}

// maxPixel bounds device coordinates so conversions to int stay defined.
const maxPixel = 1 << 30

func pixel(v float64) int {
	return int(math.Max(-maxPixel, math.Min(v, maxPixel)))
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// clipPolygon clips a convex polygon to the box [0, w]×[0, h].
func clipPolygon(poly [][2]float64, w, h float64) [][2]float64 {
	poly = clipHalfPlane(poly, 0, 0, false)
	poly = clipHalfPlane(poly, 0, w, true)
	poly = clipHalfPlane(poly, 1, 0, false)
	return clipHalfPlane(poly, 1, h, true)
}

// clipHalfPlane keeps the part of poly where p[axis] <= bound (below) or
// p[axis] >= bound (!below).
func clipHalfPlane(poly [][2]float64, axis int, bound float64, below bool) [][2]float64 {
	if len(poly) == 0 {
		return nil
	}
	inside := func(p [2]float64) bool {
		if below {
			return p[axis] <= bound
		}
		return p[axis] >= bound
	}
	other := 1 - axis
	out := make([][2]float64, 0, len(poly)+1)
	prev := poly[len(poly)-1]
	for _, cur := range poly {
		in := inside(cur)
		if in != inside(prev) {
			t := (bound - prev[axis]) / (cur[axis] - prev[axis])
			var p [2]float64
			p[axis] = bound
			p[other] = prev[other] + t*(cur[other]-prev[other])
			out = append(out, p)
		}
		if in {
			out = append(out, cur)
		}
		prev = cur
	}
	return out
}
