// Package ggctx manages GPU rendering contexts and the drawing surfaces
// bound to them.
//
// # Overview
//
// A host environment (a browser-like canvas runtime, a windowing toolkit, or
// a headless HAL device) creates and activates contexts identified by opaque
// numeric handles. ggctx keeps one device object per handle, resolves the
// currently active context on every call, and builds surfaces against it.
// When no context is available, surfaces fall back to CPU rasterization.
//
// # Packages
//
//   - host: context handles and the host lifecycle interface
//   - driver: the native driver interface a context is built on
//   - driver/haldriver: a pure Go host and driver on gogpu/wgpu HAL
//   - driver/gldriver: an SDL2 + OpenGL host and driver (build tag "sdl")
//   - grcontext: context registry, resolver, resource budget
//   - surface: surfaces, canvas, images, texture import
//   - capi: flat handle-based boundary for embedding hosts
//   - metrics: Prometheus gauges for registry and cache state
//
// # Quick Start
//
//	h := haldriver.NewHost()
//	ctx, _ := h.CreateContext("#canvas", host.DefaultAttributes())
//	_ = h.MakeContextCurrent(ctx)
//
//	r := grcontext.NewResolver(h, h)
//	f := surface.NewFactory(r)
//	s, _ := f.MakeBestAvailable(640, 480)
//	defer s.Close()
//
//	s.Canvas().Clear(surface.ColorFromARGB(0xFFFFFFFF))
//	_ = s.Flush()
//
// # Logging
//
// ggctx is silent by default. Call [SetLogger] to route diagnostics to a
// [log/slog] logger.
//
// # Concurrency
//
// The registry, resolver and surfaces are single-threaded by contract:
// the host serializes all calls. Only [SetLogger] and [Logger] are safe for
// concurrent use.
package ggctx
