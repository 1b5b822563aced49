// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package capi

import "github.com/gogpu/ggctx/surface"

// Filter and mipmap values accepted by CanvasDrawImage.
const (
	FilterNearest int32 = 0
	FilterLinear  int32 = 1
	FilterCubic   int32 = 2

	MipmapNone    int32 = 0
	MipmapNearest int32 = 1
	MipmapLinear  int32 = 2
)

func (rt *Runtime) canvas(h Handle) (*surface.Canvas, bool) {
	return lookupAs[*surface.Canvas](rt.objects, h)
}

// CanvasClear fills the clip with a packed 0xAARRGGBB color.
func (rt *Runtime) CanvasClear(h Handle, argb uint32) {
	defer guardVoid("CanvasClear")
	if c, ok := rt.canvas(h); ok {
		c.Clear(surface.ColorFromARGB(argb))
	}
}

// CanvasClear4f fills the clip with an sRGB color given as four floats.
func (rt *Runtime) CanvasClear4f(h Handle, r, g, b, a float32) {
	defer guardVoid("CanvasClear4f")
	if c, ok := rt.canvas(h); ok {
		c.Clear(surface.Color4f{R: r, G: g, B: b, A: a})
	}
}

// CanvasDrawRect fills the rectangle given by its edges with a packed
// color.
func (rt *Runtime) CanvasDrawRect(h Handle, l, t, r, b float32, argb uint32) {
	defer guardVoid("CanvasDrawRect")
	if c, ok := rt.canvas(h); ok {
		c.FillRect(surface.Rect{Left: l, Top: t, Right: r, Bottom: b}, surface.ColorFromARGB(argb))
	}
}

// CanvasDrawRect4f is CanvasDrawRect with a rectangle given as four LTRB
// floats and a four-float color. Short slices make it a no-op.
func (rt *Runtime) CanvasDrawRect4f(h Handle, ltrb, rgba []float32) {
	defer guardVoid("CanvasDrawRect4f")
	c, ok := rt.canvas(h)
	if !ok {
		return
	}
	rect, ok := surface.RectFromSlice(ltrb)
	if !ok {
		return
	}
	col, ok := surface.ColorFromSlice(rgba)
	if !ok {
		return
	}
	c.FillRect(rect, col)
}

// CanvasDrawImage draws an image handle with its top-left corner at
// (x, y).
func (rt *Runtime) CanvasDrawImage(h, image Handle, x, y float32, filterMode, mipmapMode int32) {
	defer guardVoid("CanvasDrawImage")
	c, ok := rt.canvas(h)
	if !ok {
		return
	}
	img, ok := rt.image(image)
	if !ok {
		return
	}
	pix, err := img.ToRGBA()
	if err != nil {
		return
	}
	c.DrawImage(pix, x, y, samplingFrom(filterMode, mipmapMode))
}

// samplingFrom maps boundary sampling values. Unknown values select
// nearest filtering without mipmaps.
func samplingFrom(filterMode, mipmapMode int32) surface.Sampling {
	var s surface.Sampling
	switch filterMode {
	case FilterLinear:
		s.Filter = surface.FilterLinear
	case FilterCubic:
		s.Filter = surface.FilterLinear
		s.Cubic = true
	}
	switch mipmapMode {
	case MipmapNearest:
		s.Mipmap = surface.MipmapNearest
	case MipmapLinear:
		s.Mipmap = surface.MipmapLinear
	}
	return s
}

// CanvasSave pushes the matrix and clip. It returns the save count before
// the push, or 0.
func (rt *Runtime) CanvasSave(h Handle) (ret int32) {
	defer guard("CanvasSave", &ret, 0)
	c, ok := rt.canvas(h)
	if !ok {
		return 0
	}
	return clampInt32(c.Save())
}

// CanvasRestore pops the last save.
func (rt *Runtime) CanvasRestore(h Handle) {
	defer guardVoid("CanvasRestore")
	if c, ok := rt.canvas(h); ok {
		c.Restore()
	}
}

// CanvasRestoreToCount pops saves until the save count is n.
func (rt *Runtime) CanvasRestoreToCount(h Handle, n int32) {
	defer guardVoid("CanvasRestoreToCount")
	if c, ok := rt.canvas(h); ok {
		c.RestoreToCount(int(n))
	}
}

// CanvasGetSaveCount returns the save count, or 0.
func (rt *Runtime) CanvasGetSaveCount(h Handle) (ret int32) {
	defer guard("CanvasGetSaveCount", &ret, 0)
	c, ok := rt.canvas(h)
	if !ok {
		return 0
	}
	return clampInt32(c.SaveCount())
}

// CanvasTranslate pre-concatenates a translation.
func (rt *Runtime) CanvasTranslate(h Handle, dx, dy float32) {
	defer guardVoid("CanvasTranslate")
	if c, ok := rt.canvas(h); ok {
		c.Translate(dx, dy)
	}
}

// CanvasScale pre-concatenates a scale.
func (rt *Runtime) CanvasScale(h Handle, sx, sy float32) {
	defer guardVoid("CanvasScale")
	if c, ok := rt.canvas(h); ok {
		c.Scale(sx, sy)
	}
}

// CanvasRotate pre-concatenates a rotation in degrees.
func (rt *Runtime) CanvasRotate(h Handle, degrees float32) {
	defer guardVoid("CanvasRotate")
	if c, ok := rt.canvas(h); ok {
		c.Rotate(degrees)
	}
}

// CanvasConcat pre-concatenates a 9-element row-major matrix.
func (rt *Runtime) CanvasConcat(h Handle, m9 []float32) {
	defer guardVoid("CanvasConcat")
	c, ok := rt.canvas(h)
	if !ok {
		return
	}
	if m, ok := surface.MatrixFromSlice(m9); ok {
		c.Concat(m)
	}
}

// CanvasSetMatrix replaces the matrix with a 9-element row-major matrix.
func (rt *Runtime) CanvasSetMatrix(h Handle, m9 []float32) {
	defer guardVoid("CanvasSetMatrix")
	c, ok := rt.canvas(h)
	if !ok {
		return
	}
	if m, ok := surface.MatrixFromSlice(m9); ok {
		c.SetMatrix(m)
	}
}

// CanvasResetMatrix sets the matrix to identity.
func (rt *Runtime) CanvasResetMatrix(h Handle) {
	defer guardVoid("CanvasResetMatrix")
	if c, ok := rt.canvas(h); ok {
		c.ResetMatrix()
	}
}

// CanvasGetTotalMatrix writes the matrix into out as 9 row-major floats.
func (rt *Runtime) CanvasGetTotalMatrix(h Handle, out []float32) {
	defer guardVoid("CanvasGetTotalMatrix")
	if c, ok := rt.canvas(h); ok {
		c.TotalMatrix().WriteTo(out)
	}
}

// CanvasClipRect intersects the clip with a rectangle in local
// coordinates.
func (rt *Runtime) CanvasClipRect(h Handle, l, t, r, b float32) {
	defer guardVoid("CanvasClipRect")
	if c, ok := rt.canvas(h); ok {
		c.ClipRect(surface.Rect{Left: l, Top: t, Right: r, Bottom: b})
	}
}

// CanvasGetDeviceClipBounds writes the device clip into out as LTRB.
func (rt *Runtime) CanvasGetDeviceClipBounds(h Handle, out []float32) {
	defer guardVoid("CanvasGetDeviceClipBounds")
	c, ok := rt.canvas(h)
	if !ok {
		return
	}
	b := c.ClipBounds()
	surface.Rect{
		Left:   float32(b.Min.X),
		Top:    float32(b.Min.Y),
		Right:  float32(b.Max.X),
		Bottom: float32(b.Max.Y),
	}.WriteTo(out)
}
