// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package capi

import (
	"bytes"

	"github.com/gogpu/ggctx"
	"github.com/gogpu/ggctx/surface"
)

// surfaceEntry is what a surface handle references. The canvas handle is
// published lazily and dies with the surface.
type surfaceEntry struct {
	s      surface.Surface
	canvas Handle
}

// MakeOnscreenSurface wraps the current context's default framebuffer.
// colorSpace may be empty for sRGB. It returns 0 on failure; the reason
// for a resolution failure is available from GetLastError.
func (rt *Runtime) MakeOnscreenSurface(width, height int32, colorSpace string) (ret Handle) {
	defer guard("MakeOnscreenSurface", &ret, 0)
	if width <= 0 || height <= 0 {
		return 0
	}
	s, err := rt.factory.MakeOnscreen(int(width), int(height),
		surface.WithColorSpace(surface.ParseColorSpace(colorSpace)))
	return rt.publish("onscreen", s, err, false)
}

// MakeOnscreenSurfaceEx is MakeOnscreenSurface with an explicit sample
// count and stencil depth.
func (rt *Runtime) MakeOnscreenSurfaceEx(width, height, sampleCount, stencilBits int32, colorSpace string) (ret Handle) {
	defer guard("MakeOnscreenSurfaceEx", &ret, 0)
	if width <= 0 || height <= 0 || sampleCount < 0 || stencilBits < 0 {
		return 0
	}
	s, err := rt.factory.MakeOnscreen(int(width), int(height),
		surface.WithColorSpace(surface.ParseColorSpace(colorSpace)),
		surface.WithFramebuffer(int(sampleCount), int(stencilBits)))
	return rt.publish("onscreen", s, err, false)
}

// MakeRenderTargetSurface allocates an offscreen 8-bit sRGB surface on the
// current context. It returns 0 on failure.
func (rt *Runtime) MakeRenderTargetSurface(width, height int32) (ret Handle) {
	defer guard("MakeRenderTargetSurface", &ret, 0)
	if width <= 0 || height <= 0 {
		return 0
	}
	s, err := rt.factory.MakeRenderTarget(int(width), int(height))
	return rt.publish("render-target", s, err, false)
}

// MakeRasterSurface creates a CPU surface. It only fails for non-positive
// dimensions.
func (rt *Runtime) MakeRasterSurface(width, height int32) (ret Handle) {
	defer guard("MakeRasterSurface", &ret, 0)
	if width <= 0 || height <= 0 {
		return 0
	}
	s, err := rt.factory.MakeRaster(int(width), int(height))
	return rt.publish("raster", s, err, false)
}

// MakeCanvasSurface returns an onscreen surface if the current context
// allows one and a CPU surface otherwise. For positive dimensions it
// never returns 0.
func (rt *Runtime) MakeCanvasSurface(width, height int32, colorSpace string) (ret Handle) {
	defer guard("MakeCanvasSurface", &ret, 0)
	if width <= 0 || height <= 0 {
		return 0
	}
	s, err := rt.factory.MakeBestAvailable(int(width), int(height),
		surface.WithColorSpace(surface.ParseColorSpace(colorSpace)))
	return rt.publish("best-available", s, err, true)
}

// publish registers a freshly built surface. The typed nil pointers
// returned by the factory on failure never reach the table.
func (rt *Runtime) publish(kind string, s surface.Surface, err error, best bool) Handle {
	if kind != "raster" {
		rt.observeResolve()
	}
	if err != nil {
		ggctx.Logger().Debug("capi: surface creation failed", "kind", kind, "error", err)
		return 0
	}
	if rt.metrics != nil {
		rt.metrics.ObserveSurface(s.Kind(), best)
	}
	return rt.objects.register(&surfaceEntry{s: s})
}

func (rt *Runtime) surface(h Handle) (*surfaceEntry, bool) {
	return lookupAs[*surfaceEntry](rt.objects, h)
}

// DeleteSurface closes the surface and invalidates its canvas handle.
// Unknown handles are ignored.
func (rt *Runtime) DeleteSurface(h Handle) {
	defer guardVoid("DeleteSurface")
	e, ok := rt.surface(h)
	if !ok {
		return
	}
	rt.objects.unregister(h)
	if e.canvas != 0 {
		rt.objects.unregister(e.canvas)
	}
	if err := e.s.Close(); err != nil {
		ggctx.Logger().Warn("capi: close surface failed", "error", err)
	}
}

// SurfaceWidth returns the surface width, or 0.
func (rt *Runtime) SurfaceWidth(h Handle) (ret int32) {
	defer guard("SurfaceWidth", &ret, 0)
	e, ok := rt.surface(h)
	if !ok {
		return 0
	}
	return clampInt32(e.s.Width())
}

// SurfaceHeight returns the surface height, or 0.
func (rt *Runtime) SurfaceHeight(h Handle) (ret int32) {
	defer guard("SurfaceHeight", &ret, 0)
	e, ok := rt.surface(h)
	if !ok {
		return 0
	}
	return clampInt32(e.s.Height())
}

// SurfaceKind returns the surface.Kind value, or -1.
func (rt *Runtime) SurfaceKind(h Handle) (ret int32) {
	defer guard("SurfaceKind", &ret, -1)
	e, ok := rt.surface(h)
	if !ok {
		return -1
	}
	return int32(e.s.Kind())
}

// SurfaceGetCanvas returns the canvas handle of the surface, or 0. The
// canvas is not deleted separately: it is valid until DeleteSurface.
func (rt *Runtime) SurfaceGetCanvas(h Handle) (ret Handle) {
	defer guard("SurfaceGetCanvas", &ret, 0)
	e, ok := rt.surface(h)
	if !ok {
		return 0
	}
	if e.canvas == 0 {
		e.canvas = rt.objects.register(e.s.Canvas())
	}
	return e.canvas
}

// SurfaceFlush uploads the surface's pending drawing and submits without
// waiting.
func (rt *Runtime) SurfaceFlush(h Handle) {
	defer guardVoid("SurfaceFlush")
	e, ok := rt.surface(h)
	if !ok {
		return
	}
	if err := e.s.Flush(); err != nil {
		ggctx.Logger().Warn("capi: surface flush failed", "kind", e.s.Kind(), "error", err)
	}
}

// SurfaceMakeImageSnapshot returns a new image handle with a copy of the
// surface contents, or 0. The image must be released with DeleteImage.
func (rt *Runtime) SurfaceMakeImageSnapshot(h Handle) (ret Handle) {
	defer guard("SurfaceMakeImageSnapshot", &ret, 0)
	e, ok := rt.surface(h)
	if !ok {
		return 0
	}
	img, err := e.s.MakeImageSnapshot()
	if err != nil {
		ggctx.Logger().Debug("capi: snapshot failed", "error", err)
		return 0
	}
	return rt.objects.register(img)
}

// SurfaceReadPixels copies the w×h region at (x, y) into dst as RGBA
// 8-bit premultiplied rows of rowBytes bytes. It returns 1 on success and
// 0 otherwise.
func (rt *Runtime) SurfaceReadPixels(h Handle, x, y, w, ht int32, dst []byte, rowBytes int32) (ret int32) {
	defer guard("SurfaceReadPixels", &ret, 0)
	e, ok := rt.surface(h)
	if !ok || dst == nil || w <= 0 || ht <= 0 {
		return 0
	}
	if err := e.s.ReadPixels(dst, int(rowBytes), int(x), int(y), int(w), int(ht)); err != nil {
		ggctx.Logger().Debug("capi: surface readback failed", "error", err)
		return 0
	}
	return 1
}

// SurfaceEncodePNG returns the surface contents as PNG, or nil.
func (rt *Runtime) SurfaceEncodePNG(h Handle) (ret []byte) {
	defer guard[[]byte]("SurfaceEncodePNG", &ret, nil)
	e, ok := rt.surface(h)
	if !ok {
		return nil
	}
	var buf bytes.Buffer
	if err := surface.EncodePNG(&buf, e.s); err != nil {
		ggctx.Logger().Debug("capi: png encoding failed", "error", err)
		return nil
	}
	return buf.Bytes()
}
