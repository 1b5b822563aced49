// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package capi

import (
	"github.com/gogpu/ggctx"
	"github.com/gogpu/ggctx/driver"
	"github.com/gogpu/ggctx/surface"
)

// TextureInfo is the fixed-layout metadata passed with an imported
// texture. ColorType and AlphaType hold driver.ColorType and
// driver.AlphaType values.
type TextureInfo struct {
	Width     int32
	Height    int32
	ColorType int32
	AlphaType int32
}

func (rt *Runtime) image(h Handle) (*surface.Image, bool) {
	return lookupAs[*surface.Image](rt.objects, h)
}

// MakeImageFromTexture wraps an externally-owned texture of the current
// context as a read-only image. The texture must outlive the image;
// DeleteImage never releases it. It returns 0 for missing or invalid
// metadata, texture id 0, or when no context resolves.
func (rt *Runtime) MakeImageFromTexture(texture uint32, info *TextureInfo) (ret Handle) {
	defer guard("MakeImageFromTexture", &ret, 0)
	if info == nil || texture == 0 {
		return 0
	}
	if info.ColorType < 0 || info.ColorType > 255 || info.AlphaType < 0 || info.AlphaType > 255 {
		return 0
	}
	img, err := rt.factory.ImportTexture(texture, &surface.TextureInfo{
		Width:     int(info.Width),
		Height:    int(info.Height),
		ColorType: driver.ColorType(info.ColorType),
		AlphaType: driver.AlphaType(info.AlphaType),
	})
	rt.observeResolve()
	if err != nil {
		ggctx.Logger().Debug("capi: texture import failed", "texture", texture, "error", err)
		return 0
	}
	return rt.objects.register(img)
}

// MakeImageFromRGBA8888 copies tightly packed premultiplied RGBA pixels
// into a new image, or returns 0.
func (rt *Runtime) MakeImageFromRGBA8888(pix []byte, width, height int32) (ret Handle) {
	defer guard("MakeImageFromRGBA8888", &ret, 0)
	if pix == nil || width <= 0 || height <= 0 {
		return 0
	}
	img, err := surface.NewRasterImage(pix, int(width), int(height), int(width)*4)
	if err != nil {
		return 0
	}
	return rt.objects.register(img)
}

// DeleteImage releases an image handle. Unknown handles are ignored.
func (rt *Runtime) DeleteImage(h Handle) {
	defer guardVoid("DeleteImage")
	img, ok := rt.image(h)
	if !ok {
		return
	}
	rt.objects.unregister(h)
	_ = img.Close()
}

// ImageWidth returns the image width, or 0.
func (rt *Runtime) ImageWidth(h Handle) (ret int32) {
	defer guard("ImageWidth", &ret, 0)
	img, ok := rt.image(h)
	if !ok {
		return 0
	}
	return clampInt32(img.Width())
}

// ImageHeight returns the image height, or 0.
func (rt *Runtime) ImageHeight(h Handle) (ret int32) {
	defer guard("ImageHeight", &ret, 0)
	img, ok := rt.image(h)
	if !ok {
		return 0
	}
	return clampInt32(img.Height())
}

// ImageColorType returns the driver.ColorType value, or 0.
func (rt *Runtime) ImageColorType(h Handle) (ret int32) {
	defer guard("ImageColorType", &ret, 0)
	img, ok := rt.image(h)
	if !ok {
		return 0
	}
	return int32(img.ColorType())
}

// ImageAlphaType returns the driver.AlphaType value, or 0.
func (rt *Runtime) ImageAlphaType(h Handle) (ret int32) {
	defer guard("ImageAlphaType", &ret, 0)
	img, ok := rt.image(h)
	if !ok {
		return 0
	}
	return int32(img.AlphaType())
}

// ImageReadPixels copies the w×h region at (x, y) into dst as RGBA 8-bit
// premultiplied rows of rowBytes bytes. It returns 1 on success and 0
// otherwise.
func (rt *Runtime) ImageReadPixels(h Handle, x, y, w, ht int32, dst []byte, rowBytes int32) (ret int32) {
	defer guard("ImageReadPixels", &ret, 0)
	img, ok := rt.image(h)
	if !ok || dst == nil || w <= 0 || ht <= 0 {
		return 0
	}
	if err := img.ReadPixels(dst, int(rowBytes), int(x), int(y), int(w), int(ht)); err != nil {
		ggctx.Logger().Debug("capi: image readback failed", "error", err)
		return 0
	}
	return 1
}
