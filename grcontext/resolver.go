// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package grcontext

import (
	"fmt"

	"github.com/gogpu/ggctx"
	"github.com/gogpu/ggctx/driver"
	"github.com/gogpu/ggctx/host"
)

// Resolver maps the host's current context to a cached DirectContext,
// building one on first use.
//
// Every Resolve overwrites the last-error slot, which flat callers read
// through LastError. Resolver is not safe for concurrent use.
type Resolver struct {
	host     host.Host
	factory  driver.Factory
	registry *Registry
	opts     []Option
	last     ErrorCode
}

// NewResolver creates a resolver over h. Interfaces for new contexts come
// from f; opts configure every DirectContext the resolver builds.
//
// If h implements host.DestroyNotifier, contexts the host destroys out of
// band are dropped from the registry.
func NewResolver(h host.Host, f driver.Factory, opts ...Option) *Resolver {
	r := &Resolver{
		host:     h,
		factory:  f,
		registry: NewRegistry(),
		opts:     opts,
	}
	if n, ok := h.(host.DestroyNotifier); ok {
		n.OnContextDestroyed(r.Forget)
	}
	return r
}

// Host returns the host the resolver queries.
func (r *Resolver) Host() host.Host { return r.host }

// Registry returns the resolver's registry.
func (r *Resolver) Registry() *Registry { return r.registry }

// LastError returns the outcome of the most recent resolution.
func (r *Resolver) LastError() ErrorCode { return r.last }

// Resolve returns the DirectContext for the host's current context.
// Failures are returned as *ResolveError and are never cached.
func (r *Resolver) Resolve() (*DirectContext, error) {
	ctx, err := r.resolve(r.host.CurrentContext())
	r.last = CodeOf(err)
	return ctx, err
}

func (r *Resolver) resolve(h host.Handle) (*DirectContext, error) {
	if h == host.NoContext {
		return nil, &ResolveError{Code: CodeNoCurrentContext}
	}
	if ctx, ok := r.registry.Get(h); ok {
		return ctx, nil
	}

	log := ggctx.Logger()
	log.Debug("grcontext: building context", "handle", h)

	iface, err := r.factory.NewInterface(h)
	if err == nil && iface == nil {
		err = ErrNilInterface
	}
	if err != nil {
		return nil, &ResolveError{Code: CodeInterfaceCreationFailed, Handle: h, Err: err}
	}
	ctx, err := NewDirectContext(iface, r.opts...)
	if err != nil {
		iface.Release()
		return nil, &ResolveError{Code: CodeContextCreationFailed, Handle: h, Err: err}
	}
	r.registry.Insert(h, ctx)
	log.Info("grcontext: context created", "handle", h, "driver", ctx.Caps().Name)
	return ctx, nil
}

// CreateContext asks the host for a new context.
func (r *Resolver) CreateContext(target string, attrs host.ContextAttributes) (host.Handle, error) {
	return r.host.CreateContext(target, attrs)
}

// MakeCurrent activates h on the host and eagerly builds its
// DirectContext. A resolution failure is recorded in LastError but does
// not fail activation.
func (r *Resolver) MakeCurrent(h host.Handle) error {
	if err := r.host.MakeContextCurrent(h); err != nil {
		return fmt.Errorf("grcontext: make context %d current: %w", h, err)
	}
	if _, err := r.Resolve(); err != nil {
		ggctx.Logger().Debug("grcontext: eager resolve failed", "handle", h, "error", err)
	}
	return nil
}

// Destroy removes the registry entry for h and asks the host to tear the
// context down. The entry is removed even if the host fails.
func (r *Resolver) Destroy(h host.Handle) error {
	r.registry.Remove(h)
	if err := r.host.DestroyContext(h); err != nil {
		ggctx.Logger().Warn("grcontext: host teardown failed", "handle", h, "error", err)
		return fmt.Errorf("grcontext: destroy context %d: %w", h, err)
	}
	ggctx.Logger().Info("grcontext: context destroyed", "handle", h)
	return nil
}

// Forget drops the registry entry for h without involving the host.
func (r *Resolver) Forget(h host.Handle) {
	if r.registry.Remove(h) {
		ggctx.Logger().Debug("grcontext: context forgotten", "handle", h)
	}
}
