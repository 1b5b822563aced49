// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"image"

	"github.com/gogpu/ggctx/driver"
)

// ImageSurface is a CPU-rasterized surface backed by an *image.RGBA in
// premultiplied sRGB. It needs no GPU context.
//
// Example:
//
//	s, _ := surface.NewImageSurface(800, 600)
//	defer s.Close()
//
//	s.Canvas().Clear(color.White)
//	s.Canvas().FillRect(surface.Rect{Left: 10, Top: 10, Right: 90, Bottom: 90}, color.Black)
//	img, _ := s.MakeImageSnapshot()
type ImageSurface struct {
	img    *image.RGBA
	canvas *Canvas
	closed bool
}

// NewImageSurface creates a CPU surface. It fails only for non-positive
// dimensions.
func NewImageSurface(width, height int) (*ImageSurface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	return &ImageSurface{
		img:    img,
		canvas: newCanvas(img, nil),
	}, nil
}

// Width returns the surface width.
func (s *ImageSurface) Width() int { return s.img.Bounds().Dx() }

// Height returns the surface height.
func (s *ImageSurface) Height() int { return s.img.Bounds().Dy() }

// Kind returns KindRaster.
func (s *ImageSurface) Kind() Kind { return KindRaster }

// ColorSettings returns 8-bit RGBA.
func (s *ImageSurface) ColorSettings() ColorSettings { return ColorSettingsFor(ColorSpaceSRGB) }

// Canvas returns the bound canvas.
func (s *ImageSurface) Canvas() *Canvas { return s.canvas }

// Image returns the underlying pixels. Writes through it are visible to
// the canvas.
func (s *ImageSurface) Image() *image.RGBA { return s.img }

// Flush is a no-op for CPU surfaces.
func (s *ImageSurface) Flush() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

// MakeImageSnapshot returns a copy of the current pixels.
func (s *ImageSurface) MakeImageSnapshot() (*Image, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return newSnapshot(cloneRGBA(s.img), driver.ColorTypeRGBA8888), nil
}

// ReadPixels copies a region into dst.
func (s *ImageSurface) ReadPixels(dst []byte, rowBytes, x, y, w, h int) error {
	if s.closed {
		return ErrClosed
	}
	return readRect(s.img, dst, rowBytes, x, y, w, h)
}

// Close releases the surface.
func (s *ImageSurface) Close() error {
	s.closed = true
	return nil
}

var _ Surface = (*ImageSurface)(nil)
