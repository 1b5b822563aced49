// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package capi

import (
	"errors"

	"github.com/gogpu/ggctx"
	"github.com/gogpu/ggctx/driver"
	"github.com/gogpu/ggctx/grcontext"
	"github.com/gogpu/ggctx/host"
	"github.com/gogpu/ggctx/metrics"
	"github.com/gogpu/ggctx/surface"
)

// Results returned by the context lifecycle calls.
const (
	ResultOK              int32 = 0
	ResultInvalidArgument int32 = -1
	ResultUnknownContext  int32 = -2
	ResultFailed          int32 = -3
)

// Runtime is one flat boundary instance: a host, the resolver over it and
// the table of objects handed out to the caller.
//
// Runtime is not safe for concurrent use, except for the handle table.
type Runtime struct {
	host     host.Host
	drivers  driver.Factory
	resolver *grcontext.Resolver
	factory  *surface.Factory
	objects  *table
	metrics  *metrics.Metrics

	// gr maps live device objects to the handle they were published
	// under, so GetCurrentGrContext is stable across calls.
	gr map[*grcontext.DirectContext]Handle
}

// Option configures a Runtime.
type Option func(*config)

type config struct {
	contextOpts []grcontext.Option
	metrics     *metrics.Metrics
}

// WithContextOptions configures every device object the runtime builds.
func WithContextOptions(opts ...grcontext.Option) Option {
	return func(c *config) {
		c.contextOpts = append(c.contextOpts, opts...)
	}
}

// WithMetrics reports resolutions, surface creation and registry state to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// New creates a runtime over h. Driver interfaces come from f.
func New(h host.Host, f driver.Factory, opts ...Option) *Runtime {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	r := grcontext.NewResolver(h, f, c.contextOpts...)
	return &Runtime{
		host:     h,
		drivers:  f,
		resolver: r,
		factory:  surface.NewFactory(r),
		objects:  newTable(),
		metrics:  c.metrics,
		gr:       make(map[*grcontext.DirectContext]Handle),
	}
}

// Resolver returns the resolver behind the runtime.
func (rt *Runtime) Resolver() *grcontext.Resolver { return rt.resolver }

// Factory returns the surface factory behind the runtime.
func (rt *Runtime) Factory() *surface.Factory { return rt.factory }

// Live returns the number of handles not yet deleted. Canvas and device
// object handles are counted too.
func (rt *Runtime) Live() int { return rt.objects.count() }

// CreateContext asks the host for a context with the default attributes
// and the given API generation. It returns host.NoContext on failure.
func (rt *Runtime) CreateContext(selector string, webgl2 bool) (ret host.Handle) {
	defer guard("CreateContext", &ret, host.NoContext)
	attrs := host.DefaultAttributes()
	if !webgl2 {
		attrs.MajorVersion = 1
	}
	return rt.CreateContextWithAttributes(selector, &attrs)
}

// CreateContextWithAttributes asks the host for a context configured by
// attrs. It returns host.NoContext on failure.
func (rt *Runtime) CreateContextWithAttributes(selector string, attrs *host.ContextAttributes) (ret host.Handle) {
	defer guard("CreateContextWithAttributes", &ret, host.NoContext)
	if selector == "" || attrs == nil {
		return host.NoContext
	}
	h, err := rt.resolver.CreateContext(selector, *attrs)
	if err != nil {
		ggctx.Logger().Warn("capi: create context failed", "selector", selector, "error", err)
		return host.NoContext
	}
	return h
}

// MakeContextCurrent activates h and eagerly builds its device object.
// A device object failure does not fail activation; it is reported by
// GetLastError.
func (rt *Runtime) MakeContextCurrent(h host.Handle) (ret int32) {
	defer guard("MakeContextCurrent", &ret, ResultFailed)
	if h == host.NoContext {
		return ResultInvalidArgument
	}
	if err := rt.resolver.MakeCurrent(h); err != nil {
		return resultOf(err)
	}
	rt.observeResolve()
	rt.observeRegistry()
	return ResultOK
}

// DestroyContext removes the device object for h and asks the host to
// destroy the context. The device object is dropped even when the host
// reports an error.
func (rt *Runtime) DestroyContext(h host.Handle) (ret int32) {
	defer guard("DestroyContext", &ret, ResultFailed)
	if h == host.NoContext {
		return ResultInvalidArgument
	}
	err := rt.resolver.Destroy(h)
	rt.sweepGr()
	rt.observeRegistry()
	if err != nil {
		return resultOf(err)
	}
	return ResultOK
}

// GetLastError returns the outcome of the latest context resolution as a
// grcontext.ErrorCode value.
func (rt *Runtime) GetLastError() int32 {
	return int32(rt.resolver.LastError())
}

// GetSampleCount returns the MSAA sample count of the current context's
// default framebuffer, or 0 without a current context.
func (rt *Runtime) GetSampleCount() (ret int32) {
	defer guard("GetSampleCount", &ret, 0)
	fb, ok := rt.framebuffer()
	if !ok {
		return 0
	}
	return clampInt32(fb.SampleCount)
}

// GetStencilBits returns the stencil depth of the current context's
// default framebuffer, or 0 without a current context.
func (rt *Runtime) GetStencilBits() (ret int32) {
	defer guard("GetStencilBits", &ret, 0)
	fb, ok := rt.framebuffer()
	if !ok {
		return 0
	}
	return clampInt32(fb.StencilBits)
}

// current returns the registered device object for the host's current
// context without resolving, so the last-error slot is untouched.
func (rt *Runtime) current() (*grcontext.DirectContext, bool) {
	h := rt.host.CurrentContext()
	if h == host.NoContext {
		return nil, false
	}
	return rt.resolver.Registry().Get(h)
}

// framebuffer describes the current context's default framebuffer. It
// prefers the device object, then the host, then a transient driver
// interface, and never resolves.
func (rt *Runtime) framebuffer() (driver.Framebuffer, bool) {
	if ctx, ok := rt.current(); ok {
		return ctx.DefaultFramebuffer(), true
	}
	h := rt.host.CurrentContext()
	if h == host.NoContext {
		return driver.Framebuffer{}, false
	}
	if r, ok := rt.host.(driver.FramebufferReporter); ok {
		fb, err := r.Framebuffer(h)
		return fb, err == nil
	}
	iface, err := rt.drivers.NewInterface(h)
	if err != nil {
		ggctx.Logger().Debug("capi: framebuffer query failed", "handle", h, "error", err)
		return driver.Framebuffer{}, false
	}
	defer iface.Release()
	return iface.DefaultFramebuffer(), true
}

func resultOf(err error) int32 {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, host.ErrInvalidHandle):
		return ResultInvalidArgument
	case errors.Is(err, host.ErrUnknownContext):
		return ResultUnknownContext
	}
	return ResultFailed
}

func (rt *Runtime) observeResolve() {
	if rt.metrics != nil {
		rt.metrics.ObserveResolve(rt.resolver.LastError())
	}
}

func (rt *Runtime) observeRegistry() {
	if rt.metrics != nil {
		rt.metrics.ObserveRegistry(rt.resolver.Registry())
	}
}

// guard turns a panic inside a boundary call into the call's failure
// value. It must be deferred directly.
func guard[T any](call string, ret *T, fail T) {
	if p := recover(); p != nil {
		ggctx.Logger().Error("capi: recovered panic", "call", call, "panic", p)
		*ret = fail
	}
}

// guardVoid is guard for calls without a result.
func guardVoid(call string) {
	if p := recover(); p != nil {
		ggctx.Logger().Error("capi: recovered panic", "call", call, "panic", p)
	}
}
