// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"fmt"
	"image/png"
	"io"
)

// Kind identifies where a surface keeps its pixels.
type Kind uint8

const (
	// KindRaster surfaces live in CPU memory.
	KindRaster Kind = iota

	// KindOnscreen surfaces render into a context's default framebuffer.
	KindOnscreen

	// KindRenderTarget surfaces render into a budgeted offscreen texture.
	KindRenderTarget
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindRaster:
		return "raster"
	case KindOnscreen:
		return "onscreen"
	case KindRenderTarget:
		return "render-target"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Surface owns pixel storage and the Canvas that draws into it.
//
// Surfaces are NOT thread-safe. Every Surface must be closed exactly once;
// its Canvas is invalid afterwards.
type Surface interface {
	// Width returns the surface width in pixels.
	Width() int

	// Height returns the surface height in pixels.
	Height() int

	// Kind reports where the pixels live.
	Kind() Kind

	// ColorSettings reports the pixel format.
	ColorSettings() ColorSettings

	// Canvas returns the canvas bound to this surface.
	Canvas() *Canvas

	// Flush transfers pending drawing to the GPU and submits it without
	// waiting. For CPU surfaces this is a no-op.
	Flush() error

	// MakeImageSnapshot returns an immutable copy of the current contents.
	MakeImageSnapshot() (*Image, error)

	// ReadPixels copies the w×h region at (x, y) into dst as RGBA 8-bit
	// premultiplied rows of rowBytes bytes.
	ReadPixels(dst []byte, rowBytes, x, y, w, h int) error

	// Close releases the surface. Close is idempotent.
	Close() error
}

// Errors.
var (
	// ErrInvalidDimensions is returned for non-positive width or height.
	ErrInvalidDimensions = errors.New("surface: width and height must be positive")

	// ErrClosed is returned by operations on a closed surface or image.
	ErrClosed = errors.New("surface: closed")

	// ErrInvalidReadback is returned for a readback request that is out of
	// bounds or does not fit the destination buffer.
	ErrInvalidReadback = errors.New("surface: invalid readback region")

	// ErrInvalidTextureInfo is returned for missing or unusable texture
	// metadata.
	ErrInvalidTextureInfo = errors.New("surface: invalid texture info")

	// ErrZeroTexture is returned when importing texture id 0.
	ErrZeroTexture = errors.New("surface: zero texture handle")
)

// EncodePNG writes a PNG snapshot of s to w.
func EncodePNG(w io.Writer, s Surface) error {
	img, err := s.MakeImageSnapshot()
	if err != nil {
		return err
	}
	defer img.Close()
	rgba, err := img.pixels()
	if err != nil {
		return err
	}
	return png.Encode(w, rgba)
}
