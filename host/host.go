// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package host defines the contract between ggctx and the environment that
// owns GPU contexts.
//
// The host creates, activates and destroys contexts on its own schedule and
// identifies them by opaque numeric handles. ggctx only ever consumes a
// handle as a cache key.
package host

import "errors"

// Handle is an opaque context identifier issued by a host.
// The zero value means "no context".
type Handle uint32

// NoContext is the handle reported when nothing is current.
const NoContext Handle = 0

// Errors returned by hosts.
var (
	// ErrUnknownContext is returned for a handle the host did not issue
	// or has already destroyed.
	ErrUnknownContext = errors.New("host: unknown context handle")

	// ErrInvalidHandle is returned when NoContext is passed where a live
	// handle is required.
	ErrInvalidHandle = errors.New("host: invalid context handle")

	// ErrContextCreation is returned when the host cannot create a context.
	ErrContextCreation = errors.New("host: context creation failed")
)

// Host is the environment that owns GPU contexts.
//
// All methods are called from the host thread; implementations need no
// internal locking unless they are shared with other goroutines.
type Host interface {
	// CreateContext creates a context for the given target and returns
	// its handle. The new context is not made current.
	CreateContext(target string, attrs ContextAttributes) (Handle, error)

	// MakeContextCurrent activates h. Passing NoContext is an error.
	MakeContextCurrent(h Handle) error

	// CurrentContext returns the active handle, or NoContext.
	CurrentContext() Handle

	// DestroyContext tears down h. If h was current, no context is current
	// afterwards.
	DestroyContext(h Handle) error
}

// DestroyNotifier is implemented by hosts that can destroy contexts out of
// band (window closed, device lost). Subscribers are called after the host
// has released the context.
type DestroyNotifier interface {
	OnContextDestroyed(fn func(Handle))
}
