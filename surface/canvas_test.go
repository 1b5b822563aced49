// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"image"
	"image/color"
	"math"
	"testing"
)

var (
	red         = color.NRGBA{R: 255, A: 255}
	green       = color.NRGBA{G: 255, A: 255}
	blue        = color.NRGBA{B: 255, A: 255}
	transparent = color.RGBA{}
)

func newTestCanvas(w, h int) (*Canvas, *image.RGBA, *int) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draws := 0
	return newCanvas(img, func() { draws++ }), img, &draws
}

func wantPixel(t *testing.T, img *image.RGBA, x, y int, want color.Color) {
	t.Helper()
	got := img.RGBAAt(x, y)
	if got != color.RGBAModel.Convert(want).(color.RGBA) {
		t.Errorf("pixel (%d, %d) = %v, want %v", x, y, got, want)
	}
}

func TestCanvasFillRect(t *testing.T) {
	c, img, draws := newTestCanvas(8, 8)
	c.FillRect(Rect{Left: 0, Top: 0, Right: 4, Bottom: 4}, red)

	wantPixel(t, img, 1, 1, red)
	wantPixel(t, img, 3, 3, red)
	wantPixel(t, img, 5, 5, transparent)
	if *draws != 1 {
		t.Errorf("draws = %d, want 1", *draws)
	}

	c.FillRect(Rect{Left: 4, Top: 4, Right: 4, Bottom: 8}, red)
	if *draws != 1 {
		t.Error("empty rect counted as a draw")
	}
}

func TestCanvasFillRectExtremeEdges(t *testing.T) {
	inf, nan := float32(math.Inf(1)), float32(math.NaN())
	tests := []struct {
		name      string
		r         Rect
		wantDraws int
		filled    []image.Point
		empty     []image.Point
	}{
		{"positive infinity", Rect{Left: 0, Top: 0, Right: inf, Bottom: 8}, 0, nil, []image.Point{{1, 1}}},
		{"negative infinity", Rect{Left: -inf, Top: 0, Right: 4, Bottom: 4}, 0, nil, []image.Point{{1, 1}}},
		{"nan", Rect{Left: nan, Top: 0, Right: 4, Bottom: 4}, 0, nil, []image.Point{{1, 1}}},
		{"huge covering", Rect{Left: -1e30, Top: -1e30, Right: 1e30, Bottom: 1e30}, 1,
			[]image.Point{{0, 0}, {7, 7}}, nil},
		{"huge right edge", Rect{Left: 2, Top: 2, Right: 1e30, Bottom: 4}, 1,
			[]image.Point{{2, 2}, {7, 3}}, []image.Point{{1, 1}, {5, 5}}},
		{"huge offscreen", Rect{Left: 1e30, Top: 0, Right: 2e30, Bottom: 8}, 0, nil, []image.Point{{7, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, img, draws := newTestCanvas(8, 8)
			c.FillRect(tt.r, red)
			if *draws != tt.wantDraws {
				t.Errorf("draws = %d, want %d", *draws, tt.wantDraws)
			}
			for _, p := range tt.filled {
				wantPixel(t, img, p.X, p.Y, red)
			}
			for _, p := range tt.empty {
				wantPixel(t, img, p.X, p.Y, transparent)
			}
		})
	}
}

func TestCanvasFillRectRotatedHuge(t *testing.T) {
	c, img, _ := newTestCanvas(8, 8)
	c.Translate(4, 4)
	c.Rotate(45)
	c.FillRect(Rect{Left: -1e20, Top: -1e20, Right: 1e20, Bottom: 1e20}, red)
	wantPixel(t, img, 0, 0, red)
	wantPixel(t, img, 7, 7, red)
}

func TestCanvasClipRectNonFinite(t *testing.T) {
	c, _, _ := newTestCanvas(8, 8)
	c.ClipRect(Rect{Left: 2, Top: 2, Right: float32(math.Inf(1)), Bottom: 6})
	if got, want := c.ClipBounds(), image.Rect(2, 2, 8, 6); got != want {
		t.Errorf("ClipBounds() = %v, want %v", got, want)
	}
}

func TestCanvasTransform(t *testing.T) {
	c, img, _ := newTestCanvas(8, 8)
	c.Translate(4, 4)
	c.FillRect(Rect{Left: 0, Top: 0, Right: 2, Bottom: 2}, red)

	wantPixel(t, img, 5, 5, red)
	wantPixel(t, img, 1, 1, transparent)

	m := c.TotalMatrix()
	if m[MTransX] != 4 || m[MTransY] != 4 {
		t.Errorf("TotalMatrix() = %v, want translation (4, 4)", m)
	}

	c.ResetMatrix()
	c.Scale(2, 2)
	c.FillRect(Rect{Left: 0, Top: 0, Right: 1, Bottom: 1}, blue)
	wantPixel(t, img, 1, 1, blue)
	wantPixel(t, img, 2, 2, transparent)
}

func TestCanvasSaveRestore(t *testing.T) {
	c, img, _ := newTestCanvas(8, 8)
	if n := c.Save(); n != 1 {
		t.Errorf("Save() = %d, want 1", n)
	}
	c.Translate(3, 3)
	c.ClipRect(Rect{Left: 0, Top: 0, Right: 2, Bottom: 2})
	if got, want := c.ClipBounds(), image.Rect(3, 3, 5, 5); got != want {
		t.Errorf("ClipBounds() = %v, want %v", got, want)
	}
	c.Clear(blue)
	wantPixel(t, img, 4, 4, blue)
	wantPixel(t, img, 6, 6, transparent)

	c.Save()
	c.Save()
	if c.SaveCount() != 4 {
		t.Errorf("SaveCount() = %d, want 4", c.SaveCount())
	}
	c.RestoreToCount(1)
	if c.SaveCount() != 1 {
		t.Errorf("SaveCount() after RestoreToCount(1) = %d", c.SaveCount())
	}
	if !c.TotalMatrix().IsIdentity() {
		t.Error("matrix not restored")
	}
	if c.ClipBounds() != img.Bounds() {
		t.Error("clip not restored")
	}
	c.Restore()
	if c.SaveCount() != 1 {
		t.Error("unbalanced Restore changed the save count")
	}
}

func TestCanvasDrawImage(t *testing.T) {
	c, img, draws := newTestCanvas(8, 8)
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.Set(x, y, green)
		}
	}

	c.DrawImage(src, 1, 1, Sampling{Filter: FilterNearest})

	wantPixel(t, img, 1, 1, green)
	wantPixel(t, img, 2, 2, green)
	wantPixel(t, img, 3, 3, transparent)
	wantPixel(t, img, 0, 0, transparent)
	if *draws != 1 {
		t.Errorf("draws = %d, want 1", *draws)
	}

	c.DrawImage(nil, 0, 0, Sampling{})
	if *draws != 1 {
		t.Error("nil image counted as a draw")
	}
}

func TestInterpolator(t *testing.T) {
	tests := []struct {
		name string
		s    Sampling
	}{
		{"nearest", Sampling{Filter: FilterNearest}},
		{"linear", Sampling{Filter: FilterLinear}},
		{"linear mip", Sampling{Filter: FilterLinear, Mipmap: MipmapLinear}},
		{"cubic", Sampling{Cubic: true}},
	}
	seen := map[any]bool{}
	for _, tt := range tests {
		i := interpolator(tt.s)
		if i == nil {
			t.Fatalf("%s: nil interpolator", tt.name)
		}
		seen[i] = true
	}
	if len(seen) != len(tests) {
		t.Errorf("distinct interpolators = %d, want %d", len(seen), len(tests))
	}
}
