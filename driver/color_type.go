// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package driver

import "github.com/gogpu/gputypes"

// ColorType is the logical pixel layout of an image or surface.
type ColorType uint8

const (
	ColorTypeUnknown ColorType = iota
	ColorTypeRGBA8888
	ColorTypeBGRA8888
	ColorTypeRGBAF16
)

// String returns the color type name.
func (c ColorType) String() string {
	switch c {
	case ColorTypeRGBA8888:
		return "RGBA8888"
	case ColorTypeBGRA8888:
		return "BGRA8888"
	case ColorTypeRGBAF16:
		return "RGBAF16"
	}
	return "Unknown"
}

// Format returns the texture format backing c.
func (c ColorType) Format() gputypes.TextureFormat {
	switch c {
	case ColorTypeRGBA8888:
		return gputypes.TextureFormatRGBA8Unorm
	case ColorTypeBGRA8888:
		return gputypes.TextureFormatBGRA8Unorm
	case ColorTypeRGBAF16:
		return gputypes.TextureFormatRGBA16Float
	}
	return gputypes.TextureFormatUndefined
}

// AlphaType describes how alpha is encoded.
type AlphaType uint8

const (
	AlphaTypeUnknown AlphaType = iota
	AlphaTypeOpaque
	AlphaTypePremul
	AlphaTypeUnpremul
)

// String returns the alpha type name.
func (a AlphaType) String() string {
	switch a {
	case AlphaTypeOpaque:
		return "Opaque"
	case AlphaTypePremul:
		return "Premul"
	case AlphaTypeUnpremul:
		return "Unpremul"
	}
	return "Unknown"
}
