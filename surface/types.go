// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"strings"

	"github.com/gogpu/gputypes"
	"golang.org/x/text/cases"

	"github.com/gogpu/ggctx/driver"
)

// ColorSpace names the color space a surface renders in. The zero value
// means "not specified" and behaves as sRGB.
type ColorSpace string

// Well-known color spaces.
const (
	ColorSpaceUnspecified ColorSpace = ""
	ColorSpaceSRGB        ColorSpace = "srgb"
	ColorSpaceDisplayP3   ColorSpace = "display-p3"
	ColorSpaceRec2020     ColorSpace = "rec2020"
	ColorSpaceLinearSRGB  ColorSpace = "srgb-linear"
)

var folder = cases.Fold()

// ParseColorSpace normalizes a color space name. Matching is
// case-insensitive and ignores surrounding space.
func ParseColorSpace(name string) ColorSpace {
	return ColorSpace(folder.String(strings.TrimSpace(name)))
}

// IsSRGB reports whether cs is sRGB or unspecified.
func (cs ColorSpace) IsSRGB() bool {
	return cs == ColorSpaceUnspecified || cs == ColorSpaceSRGB
}

// ColorSettings is the pixel format chosen for a color space.
type ColorSettings struct {
	Format    gputypes.TextureFormat
	ColorType driver.ColorType
}

// ColorSettingsFor maps a color space to its storage: 8-bit RGBA for sRGB
// or unspecified, half-float RGBA for anything else.
func ColorSettingsFor(cs ColorSpace) ColorSettings {
	if cs.IsSRGB() {
		return ColorSettings{
			Format:    gputypes.TextureFormatRGBA8Unorm,
			ColorType: driver.ColorTypeRGBA8888,
		}
	}
	return ColorSettings{
		Format:    gputypes.TextureFormatRGBA16Float,
		ColorType: driver.ColorTypeRGBAF16,
	}
}

// Rect is an axis-aligned rectangle given by its edges.
type Rect struct {
	Left, Top, Right, Bottom float32
}

// RectFromSlice reads four floats in LTRB order. It returns false if v
// holds fewer than four values.
func RectFromSlice(v []float32) (Rect, bool) {
	if len(v) < 4 {
		return Rect{}, false
	}
	return Rect{Left: v[0], Top: v[1], Right: v[2], Bottom: v[3]}, true
}

// WriteTo stores the rectangle as LTRB into dst.
func (r Rect) WriteTo(dst []float32) bool {
	if len(dst) < 4 {
		return false
	}
	dst[0], dst[1], dst[2], dst[3] = r.Left, r.Top, r.Right, r.Bottom
	return true
}

// Width returns Right - Left.
func (r Rect) Width() float32 { return r.Right - r.Left }

// Height returns Bottom - Top.
func (r Rect) Height() float32 { return r.Bottom - r.Top }

// IsEmpty reports whether the rectangle encloses no area.
func (r Rect) IsEmpty() bool { return !(r.Left < r.Right && r.Top < r.Bottom) }

// FilterMode selects texel filtering when drawing images.
type FilterMode uint8

const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// MipmapMode selects mip level interpolation when drawing images.
type MipmapMode uint8

const (
	MipmapNone MipmapMode = iota
	MipmapNearest
	MipmapLinear
)

// Sampling configures image sampling.
type Sampling struct {
	Filter FilterMode
	Mipmap MipmapMode

	// Cubic selects bicubic resampling and overrides Filter.
	Cubic bool
}
