// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package grcontext

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/ggctx"
	"github.com/gogpu/ggctx/driver"
	"github.com/gogpu/ggctx/host"
)

// ResetFlags selects which cached driver state ResetState invalidates.
type ResetFlags uint32

const (
	// ResetRenderTarget drops the cached default framebuffer target.
	ResetRenderTarget ResetFlags = 1 << iota

	// ResetMisc drops any other cached binding state.
	ResetMisc

	// ResetAll invalidates everything.
	ResetAll = ^ResetFlags(0)
)

// Flusher is implemented by surfaces that record work on the CPU and
// transfer it to their GPU target on flush.
type Flusher interface {
	FlushPending() error
}

// DirectContext is the device object for one host context. It owns the
// driver interface and the resource cache.
//
// DirectContext is not safe for concurrent use.
type DirectContext struct {
	iface  driver.Interface
	caps   driver.Caps
	cache  *ResourceCache
	handle host.Handle

	// fbTarget caches the wrapped default framebuffer.
	fbTarget driver.Target
	fbDesc   driver.TargetDesc
	resets   int

	pending   []Flusher
	abandoned bool
}

// NewDirectContext builds a device object from a driver interface.
// The interface must report usable capabilities.
func NewDirectContext(iface driver.Interface, opts ...Option) (*DirectContext, error) {
	if iface == nil {
		return nil, ErrNilInterface
	}
	caps := iface.Caps()
	if err := caps.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContextCreation, err)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &DirectContext{
		iface: iface,
		caps:  caps,
		cache: newResourceCache(o.cacheLimit, o.now),
	}, nil
}

// Handle returns the host handle the context is registered under, or
// host.NoContext for an unregistered context.
func (c *DirectContext) Handle() host.Handle { return c.handle }

// Interface returns the driver interface.
func (c *DirectContext) Interface() driver.Interface { return c.iface }

// Caps returns the driver capabilities captured at creation.
func (c *DirectContext) Caps() driver.Caps { return c.caps }

// Abandoned reports whether Abandon has been called.
func (c *DirectContext) Abandoned() bool { return c.abandoned }

// ResetState invalidates cached driver state after the host touched the
// underlying API directly.
func (c *DirectContext) ResetState(flags ResetFlags) {
	if flags&ResetRenderTarget != 0 {
		c.fbTarget = nil
	}
	c.resets++
}

// Resets returns how many times ResetState has been called.
func (c *DirectContext) Resets() int { return c.resets }

// DefaultFramebuffer reports the current default framebuffer.
func (c *DirectContext) DefaultFramebuffer() driver.Framebuffer {
	if c.abandoned {
		return driver.Framebuffer{}
	}
	return c.iface.DefaultFramebuffer()
}

// PrepareDefaultFramebuffer binds and clears the default framebuffer and
// invalidates render-target and binding state.
func (c *DirectContext) PrepareDefaultFramebuffer() error {
	if c.abandoned {
		return ErrAbandoned
	}
	if err := c.iface.BindDefaultFramebuffer(); err != nil {
		return fmt.Errorf("grcontext: bind default framebuffer: %w", err)
	}
	if err := c.iface.ClearDefaultFramebuffer(); err != nil {
		return fmt.Errorf("grcontext: clear default framebuffer: %w", err)
	}
	c.ResetState(ResetRenderTarget | ResetMisc)
	return nil
}

// WrapDefaultFramebuffer returns a target for the default framebuffer.
// A wrap is reused until the next ResetState(ResetRenderTarget) or a
// request with a different description.
func (c *DirectContext) WrapDefaultFramebuffer(desc driver.TargetDesc) (driver.Target, error) {
	if c.abandoned {
		return nil, ErrAbandoned
	}
	if c.fbTarget != nil && c.fbDesc == desc {
		return c.fbTarget, nil
	}
	t, err := c.iface.WrapDefaultFramebuffer(desc)
	if err != nil {
		return nil, err
	}
	c.fbTarget, c.fbDesc = t, desc
	return t, nil
}

// CreateRenderTarget allocates a budgeted render target, reusing a
// purgeable scratch target with the same description when one is cached.
// Exceeding the cache limit never fails the allocation.
func (c *DirectContext) CreateRenderTarget(desc driver.TargetDesc) (driver.Target, error) {
	if c.abandoned {
		return nil, ErrAbandoned
	}
	key := keyOf(desc)
	if t, ok := c.cache.findScratch(key); ok {
		ggctx.Logger().Debug("grcontext: reusing scratch target",
			"width", desc.Width, "height", desc.Height)
		return t, nil
	}
	t, err := c.iface.CreateTarget(desc)
	if err != nil {
		return nil, err
	}
	c.cache.insert(t, key)
	return t, nil
}

// ReleaseRenderTarget returns a target from CreateRenderTarget to the
// cache as a purgeable scratch resource.
func (c *DirectContext) ReleaseRenderTarget(t driver.Target) {
	if t == nil || c.abandoned {
		return
	}
	c.cache.unlock(t)
}

// TouchRenderTarget marks t as recently used.
func (c *DirectContext) TouchRenderTarget(t driver.Target) {
	if c.abandoned {
		return
	}
	c.cache.touch(t)
}

// MarkPending records f for the next Flush.
func (c *DirectContext) MarkPending(f Flusher) {
	if c.abandoned {
		return
	}
	for _, p := range c.pending {
		if p == f {
			return
		}
	}
	c.pending = append(c.pending, f)
}

// Forget drops f from the pending list without flushing it.
func (c *DirectContext) Forget(f Flusher) {
	for i, p := range c.pending {
		if p == f {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

// Flush transfers all pending surface work to the GPU without submitting.
func (c *DirectContext) Flush() error {
	if c.abandoned {
		return nil
	}
	pending := c.pending
	c.pending = nil
	var errs []error
	for _, f := range pending {
		if err := f.FlushPending(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Submit sends flushed work to the GPU. When syncCPU is true it blocks
// until the GPU has finished.
func (c *DirectContext) Submit(syncCPU bool) error {
	if c.abandoned {
		return nil
	}
	return c.iface.Submit(syncCPU)
}

// FlushAndSubmit is Flush followed by Submit.
func (c *DirectContext) FlushAndSubmit(syncCPU bool) error {
	if err := c.Flush(); err != nil {
		return err
	}
	return c.Submit(syncCPU)
}

// ResourceCacheLimit returns the cache budget in bytes.
func (c *DirectContext) ResourceCacheLimit() uint64 { return c.cache.Limit() }

// SetResourceCacheLimit sets the cache budget in bytes.
func (c *DirectContext) SetResourceCacheLimit(bytes uint64) {
	if c.abandoned {
		return
	}
	c.cache.SetLimit(bytes)
}

// ResourceCacheUsage returns the bytes held by cached resources.
func (c *DirectContext) ResourceCacheUsage() uint64 { return c.cache.Usage() }

// CacheStats returns resource cache statistics.
func (c *DirectContext) CacheStats() CacheStats { return c.cache.Stats() }

// FreeGPUResources releases every purgeable cached resource.
func (c *DirectContext) FreeGPUResources() {
	if c.abandoned {
		return
	}
	if err := c.Flush(); err != nil {
		ggctx.Logger().Warn("grcontext: flush before free failed", "error", err)
	}
	n := c.cache.PurgeAll()
	ggctx.Logger().Debug("grcontext: freed GPU resources", "count", n)
}

// PerformDeferredCleanup releases purgeable resources unused for at least
// d, then trims remaining purgeable resources to the cache limit.
func (c *DirectContext) PerformDeferredCleanup(d time.Duration) {
	if c.abandoned {
		return
	}
	n := c.cache.PurgeUnusedSince(d)
	n += c.cache.PurgeToLimit()
	if n > 0 {
		ggctx.Logger().Debug("grcontext: deferred cleanup", "count", n, "unused", d)
	}
}

// Abandon releases all resources and the driver interface. The context is
// unusable afterwards: every operation becomes a no-op or returns
// ErrAbandoned.
func (c *DirectContext) Abandon() {
	if c.abandoned {
		return
	}
	c.release()
	ggctx.Logger().Info("grcontext: context abandoned", "handle", c.handle)
}

// release tears down the context when its registry entry is removed.
func (c *DirectContext) release() {
	if c.abandoned {
		return
	}
	c.pending = nil
	c.fbTarget = nil
	c.cache.close()
	c.iface.Release()
	c.abandoned = true
}
