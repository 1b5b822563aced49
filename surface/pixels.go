// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"fmt"
	"image"
)

// readRect copies the part of the w×h region at (x, y) that overlaps src
// into dst, which is laid out with rowBytes bytes per row. Pixels of dst
// outside src keep their previous value.
func readRect(src *image.RGBA, dst []byte, rowBytes, x, y, w, h int) error {
	if w <= 0 || h <= 0 || rowBytes < w*4 {
		return fmt.Errorf("%w: %dx%d with row bytes %d", ErrInvalidReadback, w, h, rowBytes)
	}
	if len(dst) < rowBytes*(h-1)+w*4 {
		return fmt.Errorf("%w: buffer of %d bytes too small", ErrInvalidReadback, len(dst))
	}
	req := image.Rect(x, y, x+w, y+h)
	r := req.Intersect(src.Bounds())
	if r.Empty() {
		return fmt.Errorf("%w: %v outside %v", ErrInvalidReadback, req, src.Bounds())
	}
	n := r.Dx() * 4
	for row := r.Min.Y; row < r.Max.Y; row++ {
		so := src.PixOffset(r.Min.X, row)
		do := (row-y)*rowBytes + (r.Min.X-x)*4
		copy(dst[do:do+n], src.Pix[so:so+n])
	}
	return nil
}

// cloneRGBA returns a tightly packed copy of src.
func cloneRGBA(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	n := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		so := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+n], src.Pix[so:so+n])
	}
	return dst
}
