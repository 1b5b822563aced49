// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package driver

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
)

// ErrInvalidCaps is returned when an interface reports unusable limits.
var ErrInvalidCaps = errors.New("driver: invalid capabilities")

// Caps describes what an Interface can do.
type Caps struct {
	// Name identifies the implementation, e.g. "vulkan" or "opengl".
	Name string

	MaxTextureSize int
	MaxSamples     int

	// Formats lists renderable color formats.
	Formats []gputypes.TextureFormat
}

// Supports reports whether f is renderable.
func (c Caps) Supports(f gputypes.TextureFormat) bool {
	return slices.Contains(c.Formats, f)
}

// Validate checks that the caps describe a usable interface.
func (c Caps) Validate() error {
	if c.MaxTextureSize <= 0 {
		return fmt.Errorf("%w: max texture size %d", ErrInvalidCaps, c.MaxTextureSize)
	}
	if c.MaxSamples <= 0 {
		return fmt.Errorf("%w: max samples %d", ErrInvalidCaps, c.MaxSamples)
	}
	if len(c.Formats) == 0 {
		return fmt.Errorf("%w: no renderable formats", ErrInvalidCaps)
	}
	return nil
}

// ValidateTarget checks desc against the caps.
func (c Caps) ValidateTarget(desc TargetDesc) error {
	if desc.Width <= 0 || desc.Height <= 0 ||
		desc.Width > c.MaxTextureSize || desc.Height > c.MaxTextureSize {
		return fmt.Errorf("%w: %dx%d (max %d)", ErrInvalidSize, desc.Width, desc.Height, c.MaxTextureSize)
	}
	if !c.Supports(desc.Format) {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, desc.Format)
	}
	s := desc.SampleCount
	if s == 0 {
		s = 1
	}
	if s < 0 || s > c.MaxSamples || s&(s-1) != 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleCount, desc.SampleCount)
	}
	return nil
}

// BytesPerPixel returns the storage size of one pixel in f, or 0 for
// formats ggctx does not render into.
func BytesPerPixel(f gputypes.TextureFormat) int {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm:
		return 4
	case gputypes.TextureFormatRGBA16Float:
		return 8
	}
	return 0
}

// TargetBytes returns the GPU memory a w×h target of format f with the
// given sample count occupies.
func TargetBytes(w, h int, f gputypes.TextureFormat, samples int) uint64 {
	if samples < 1 {
		samples = 1
	}
	//nolint:gosec // G115: dimensions validated by ValidateTarget
	return uint64(w) * uint64(h) * uint64(BytesPerPixel(f)) * uint64(samples)
}
