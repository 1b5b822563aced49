// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ggctx"
	"github.com/gogpu/ggctx/driver"
	"github.com/gogpu/ggctx/grcontext"
)

// Factory builds surfaces against the resolver's current context.
//
// Factory is not safe for concurrent use.
type Factory struct {
	resolver *grcontext.Resolver
	registry *Registry
}

// NewFactory creates a factory. Its registry holds the onscreen backend
// (PriorityGPU) and the raster backend (PrioritySoftware); callers may add
// their own.
func NewFactory(r *grcontext.Resolver) *Factory {
	f := &Factory{resolver: r, registry: NewRegistry()}
	f.registry.Register(BackendOnscreen, PriorityGPU, func(o Options) (Surface, error) {
		return f.makeOnscreen(o)
	}, nil)
	f.registry.Register(BackendRaster, PrioritySoftware, func(o Options) (Surface, error) {
		return NewImageSurface(o.Width, o.Height)
	}, nil)
	return f
}

// Registry returns the backends MakeBestAvailable chooses from.
func (f *Factory) Registry() *Registry { return f.registry }

// Resolver returns the resolver used for GPU surfaces.
func (f *Factory) Resolver() *grcontext.Resolver { return f.resolver }

// MakeOnscreen wraps the current context's default framebuffer.
//
// The framebuffer is bound and cleared (color and stencil) and the
// context's cached state is reset before wrapping. Sample count and stencil
// bits follow the framebuffer unless WithFramebuffer overrides them; the
// pixel format follows the color space.
func (f *Factory) MakeOnscreen(width, height int, opts ...Option) (*GPUSurface, error) {
	return f.makeOnscreen(buildOptions(width, height, opts))
}

func (f *Factory) makeOnscreen(o Options) (*GPUSurface, error) {
	if o.Width <= 0 || o.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, o.Width, o.Height)
	}
	ctx, err := f.resolver.Resolve()
	if err != nil {
		return nil, err
	}
	if err := ctx.PrepareDefaultFramebuffer(); err != nil {
		return nil, err
	}

	fb := ctx.DefaultFramebuffer()
	samples, stencil := fb.SampleCount, fb.StencilBits
	if o.Framebuffer != nil {
		samples, stencil = o.Framebuffer.SampleCount, o.Framebuffer.StencilBits
	}
	settings := ColorSettingsFor(o.ColorSpace)
	target, err := ctx.WrapDefaultFramebuffer(driver.TargetDesc{
		Label:       "onscreen",
		Width:       o.Width,
		Height:      o.Height,
		Format:      settings.Format,
		SampleCount: samples,
		StencilBits: stencil,
	})
	if err != nil {
		return nil, fmt.Errorf("surface: wrap default framebuffer: %w", err)
	}
	return newGPUSurface(KindOnscreen, ctx, target, settings), nil
}

// MakeRenderTarget allocates an offscreen RGBA 8-bit premultiplied sRGB
// surface from the current context's resource cache.
func (f *Factory) MakeRenderTarget(width, height int) (*GPUSurface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	ctx, err := f.resolver.Resolve()
	if err != nil {
		return nil, err
	}
	target, err := ctx.CreateRenderTarget(driver.TargetDesc{
		Label:       "render-target",
		Width:       width,
		Height:      height,
		Format:      gputypes.TextureFormatRGBA8Unorm,
		SampleCount: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("surface: create render target: %w", err)
	}
	return newGPUSurface(KindRenderTarget, ctx, target, ColorSettingsFor(ColorSpaceSRGB)), nil
}

// MakeRaster creates a CPU surface. No context is needed.
func (f *Factory) MakeRaster(width, height int) (*ImageSurface, error) {
	return NewImageSurface(width, height)
}

// MakeBestAvailable tries the registered backends in priority order,
// normally onscreen then raster. GPU failures are logged, never returned:
// for positive dimensions a surface is always produced. Use Kind to see
// which backend served the request and the resolver's LastError for the
// reason a GPU surface was not built.
func (f *Factory) MakeBestAvailable(width, height int, opts ...Option) (Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	s, err := f.registry.NewSurface(buildOptions(width, height, opts))
	if err != nil {
		return nil, err
	}
	if s.Kind() == KindRaster {
		ggctx.Logger().Debug("surface: using CPU raster surface",
			"width", width, "height", height, "resolve", f.resolver.LastError())
	}
	return s, nil
}
