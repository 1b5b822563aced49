// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"fmt"
	"image"

	"github.com/gogpu/ggctx/driver"
	"github.com/gogpu/ggctx/grcontext"
)

// Image is an immutable picture: either a CPU snapshot of a surface or a
// read-only view of an externally-owned GPU texture.
type Image struct {
	width     int
	height    int
	colorType driver.ColorType
	alphaType driver.AlphaType

	// pix holds snapshot pixels; nil for texture-backed images.
	pix *image.RGBA

	// target and ctx are set for borrowed textures.
	target driver.Target
	ctx    *grcontext.DirectContext

	closed bool
}

func newSnapshot(pix *image.RGBA, ct driver.ColorType) *Image {
	b := pix.Bounds()
	return &Image{
		width:     b.Dx(),
		height:    b.Dy(),
		colorType: ct,
		alphaType: driver.AlphaTypePremul,
		pix:       pix,
	}
}

// NewRasterImage copies width×height premultiplied RGBA 8-bit pixels laid
// out with rowBytes bytes per row into a new image.
func NewRasterImage(pix []byte, width, height, rowBytes int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if rowBytes < width*4 || len(pix) < rowBytes*(height-1)+width*4 {
		return nil, fmt.Errorf("%w: %d bytes with row bytes %d", ErrInvalidReadback, len(pix), rowBytes)
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+width*4], pix[y*rowBytes:])
	}
	return newSnapshot(dst, driver.ColorTypeRGBA8888), nil
}

// Width returns the image width in pixels.
func (i *Image) Width() int { return i.width }

// Height returns the image height in pixels.
func (i *Image) Height() int { return i.height }

// ColorType returns the logical pixel layout.
func (i *Image) ColorType() driver.ColorType { return i.colorType }

// AlphaType returns the alpha encoding.
func (i *Image) AlphaType() driver.AlphaType { return i.alphaType }

// IsTextureBacked reports whether the image borrows a GPU texture.
func (i *Image) IsTextureBacked() bool { return i.target != nil }

// ToRGBA returns the pixels as premultiplied RGBA. Texture-backed images
// are read back from the GPU. The result belongs to the caller.
func (i *Image) ToRGBA() (*image.RGBA, error) {
	pix, err := i.pixels()
	if err != nil {
		return nil, err
	}
	if pix == i.pix {
		return cloneRGBA(pix), nil
	}
	return pix, nil
}

// pixels is ToRGBA without the copy; snapshot pixels are shared and must
// not be modified.
func (i *Image) pixels() (*image.RGBA, error) {
	if i.closed {
		return nil, ErrClosed
	}
	if i.pix != nil {
		return i.pix, nil
	}
	if i.ctx.Abandoned() {
		return nil, grcontext.ErrAbandoned
	}
	dst := image.NewRGBA(image.Rect(0, 0, i.width, i.height))
	if err := i.ctx.Interface().ReadPixels(i.target, dst.Pix, dst.Stride); err != nil {
		return nil, fmt.Errorf("surface: read texture: %w", err)
	}
	return dst, nil
}

// ReadPixels copies the w×h region at (x, y) into dst as RGBA 8-bit
// premultiplied rows of rowBytes bytes.
func (i *Image) ReadPixels(dst []byte, rowBytes, x, y, w, h int) error {
	src, err := i.pixels()
	if err != nil {
		return err
	}
	return readRect(src, dst, rowBytes, x, y, w, h)
}

// Close releases the image. A borrowed texture is never released.
func (i *Image) Close() error {
	if i.closed {
		return nil
	}
	i.closed = true
	i.pix = nil
	i.target = nil
	i.ctx = nil
	return nil
}
