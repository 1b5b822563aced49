// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"fmt"

	"github.com/gogpu/ggctx/driver"
	"github.com/gogpu/ggctx/grcontext"
)

// TextureInfo describes an externally-owned texture.
type TextureInfo struct {
	Width     int
	Height    int
	ColorType driver.ColorType
	AlphaType driver.AlphaType
}

// ImportTexture wraps the native texture id as a read-only Image on the
// current context. The image borrows the texture: closing it never
// releases the texture.
func (f *Factory) ImportTexture(id uint32, info *TextureInfo) (*Image, error) {
	if info == nil {
		return nil, fmt.Errorf("%w: missing", ErrInvalidTextureInfo)
	}
	if id == 0 {
		return nil, ErrZeroTexture
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, info.Width, info.Height)
	}
	format := info.ColorType.Format()
	if driver.BytesPerPixel(format) == 0 {
		return nil, fmt.Errorf("%w: color type %v", ErrInvalidTextureInfo, info.ColorType)
	}
	alpha := info.AlphaType
	if alpha == driver.AlphaTypeUnknown {
		alpha = driver.AlphaTypePremul
	}

	ctx, err := f.resolver.Resolve()
	if err != nil {
		return nil, err
	}
	if ctx.Abandoned() {
		return nil, grcontext.ErrAbandoned
	}
	target, err := ctx.Interface().WrapTexture(id, driver.TextureDesc{
		Width:  info.Width,
		Height: info.Height,
		Format: format,
	})
	if err != nil {
		return nil, fmt.Errorf("surface: import texture %d: %w", id, err)
	}
	return &Image{
		width:     info.Width,
		height:    info.Height,
		colorType: info.ColorType,
		alphaType: alpha,
		target:    target,
		ctx:       ctx,
	}, nil
}
