// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package capi

import (
	"math"
	"time"

	"github.com/gogpu/ggctx"
	"github.com/gogpu/ggctx/grcontext"
)

// GetCurrentGrContext resolves the current context and returns its device
// object handle, or 0. The handle is owned by the runtime: it stays valid
// until the context is destroyed and must not be deleted by the caller.
func (rt *Runtime) GetCurrentGrContext() (ret Handle) {
	defer guard("GetCurrentGrContext", &ret, 0)
	ctx, err := rt.resolver.Resolve()
	rt.observeResolve()
	if err != nil {
		return 0
	}
	rt.observeRegistry()
	if h, ok := rt.gr[ctx]; ok {
		return h
	}
	h := rt.objects.register(ctx)
	rt.gr[ctx] = h
	return h
}

// grContext returns the device object for h if it is still registered.
func (rt *Runtime) grContext(h Handle) (*grcontext.DirectContext, bool) {
	ctx, ok := lookupAs[*grcontext.DirectContext](rt.objects, h)
	if !ok {
		return nil, false
	}
	if live, ok := rt.resolver.Registry().Get(ctx.Handle()); !ok || live != ctx {
		rt.sweepGr()
		return nil, false
	}
	return ctx, true
}

// sweepGr drops handles of device objects that left the registry.
func (rt *Runtime) sweepGr() {
	reg := rt.resolver.Registry()
	for ctx, h := range rt.gr {
		if live, ok := reg.Get(ctx.Handle()); ok && live == ctx {
			continue
		}
		rt.objects.unregister(h)
		delete(rt.gr, ctx)
	}
}

// GrContextFlush transfers pending surface work to the GPU.
func (rt *Runtime) GrContextFlush(h Handle) {
	defer guardVoid("GrContextFlush")
	ctx, ok := rt.grContext(h)
	if !ok {
		return
	}
	if err := ctx.Flush(); err != nil {
		ggctx.Logger().Warn("capi: flush failed", "error", err)
	}
}

// GrContextSubmit sends flushed work to the GPU, blocking until it
// finishes when syncCPU is true.
func (rt *Runtime) GrContextSubmit(h Handle, syncCPU bool) {
	defer guardVoid("GrContextSubmit")
	ctx, ok := rt.grContext(h)
	if !ok {
		return
	}
	if err := ctx.Submit(syncCPU); err != nil {
		ggctx.Logger().Warn("capi: submit failed", "error", err)
	}
}

// GrContextFlushAndSubmit is GrContextFlush followed by GrContextSubmit.
func (rt *Runtime) GrContextFlushAndSubmit(h Handle, syncCPU bool) {
	defer guardVoid("GrContextFlushAndSubmit")
	ctx, ok := rt.grContext(h)
	if !ok {
		return
	}
	if err := ctx.FlushAndSubmit(syncCPU); err != nil {
		ggctx.Logger().Warn("capi: flush and submit failed", "error", err)
	}
}

// GrContextGetResourceCacheLimitBytes returns the cache budget, saturated
// to 32 bits, or 0 for an invalid handle.
func (rt *Runtime) GrContextGetResourceCacheLimitBytes(h Handle) (ret uint32) {
	defer guard("GrContextGetResourceCacheLimitBytes", &ret, 0)
	ctx, ok := rt.grContext(h)
	if !ok {
		return 0
	}
	return saturate32(ctx.ResourceCacheLimit())
}

// GrContextSetResourceCacheLimitBytes sets the cache budget.
func (rt *Runtime) GrContextSetResourceCacheLimitBytes(h Handle, bytes uint32) {
	defer guardVoid("GrContextSetResourceCacheLimitBytes")
	ctx, ok := rt.grContext(h)
	if !ok {
		return
	}
	ctx.SetResourceCacheLimit(uint64(bytes))
	rt.observeRegistry()
}

// GrContextGetResourceCacheUsageBytes returns the bytes held by cached
// resources, saturated to 32 bits.
func (rt *Runtime) GrContextGetResourceCacheUsageBytes(h Handle) (ret uint32) {
	defer guard("GrContextGetResourceCacheUsageBytes", &ret, 0)
	ctx, ok := rt.grContext(h)
	if !ok {
		return 0
	}
	return saturate32(ctx.ResourceCacheUsage())
}

// GrContextFreeGPUResources releases every purgeable cached resource.
func (rt *Runtime) GrContextFreeGPUResources(h Handle) {
	defer guardVoid("GrContextFreeGPUResources")
	ctx, ok := rt.grContext(h)
	if !ok {
		return
	}
	ctx.FreeGPUResources()
	rt.observeRegistry()
}

// GrContextPerformDeferredCleanup releases resources unused for at least
// msNotUsed milliseconds. Negative values are treated as zero.
func (rt *Runtime) GrContextPerformDeferredCleanup(h Handle, msNotUsed int64) {
	defer guardVoid("GrContextPerformDeferredCleanup")
	ctx, ok := rt.grContext(h)
	if !ok {
		return
	}
	ms := min(max(msNotUsed, 0), math.MaxInt64/int64(time.Millisecond))
	ctx.PerformDeferredCleanup(time.Duration(ms) * time.Millisecond)
	rt.observeRegistry()
}

// GrContextReleaseResourcesAndAbandonContext releases everything the
// device object holds. Surfaces and images bound to it must not be used
// for GPU work afterwards.
func (rt *Runtime) GrContextReleaseResourcesAndAbandonContext(h Handle) {
	defer guardVoid("GrContextReleaseResourcesAndAbandonContext")
	ctx, ok := rt.grContext(h)
	if !ok {
		return
	}
	ctx.Abandon()
	rt.observeRegistry()
}

func saturate32(v uint64) uint32 {
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

func clampInt32(v int) int32 {
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}
