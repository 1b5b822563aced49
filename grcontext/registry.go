// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package grcontext

import (
	"slices"

	"github.com/gogpu/ggctx/host"
)

// Registry maps host context handles to their device objects.
//
// Registry is not safe for concurrent use. The host serializes every call.
type Registry struct {
	entries map[host.Handle]*DirectContext
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[host.Handle]*DirectContext)}
}

// Get returns the context cached for h.
func (r *Registry) Get(h host.Handle) (*DirectContext, bool) {
	ctx, ok := r.entries[h]
	return ctx, ok
}

// Insert stores ctx for h unless an entry already exists. It returns the
// entry now stored and whether ctx was inserted.
func (r *Registry) Insert(h host.Handle, ctx *DirectContext) (*DirectContext, bool) {
	if existing, ok := r.entries[h]; ok {
		return existing, false
	}
	ctx.handle = h
	r.entries[h] = ctx
	return ctx, true
}

// Remove deletes the entry for h and releases its device object.
// It reports whether an entry existed.
func (r *Registry) Remove(h host.Handle) bool {
	ctx, ok := r.entries[h]
	if !ok {
		return false
	}
	delete(r.entries, h)
	ctx.release()
	return true
}

// Len returns the number of cached contexts.
func (r *Registry) Len() int { return len(r.entries) }

// Handles returns the cached handles in ascending order.
func (r *Registry) Handles() []host.Handle {
	hs := make([]host.Handle, 0, len(r.entries))
	for h := range r.entries {
		hs = append(hs, h)
	}
	slices.Sort(hs)
	return hs
}

// Each calls fn for every entry in ascending handle order.
func (r *Registry) Each(fn func(host.Handle, *DirectContext)) {
	for _, h := range r.Handles() {
		fn(h, r.entries[h])
	}
}

// Clear releases and removes every entry.
func (r *Registry) Clear() {
	for _, h := range r.Handles() {
		r.Remove(h)
	}
}
