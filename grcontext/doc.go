// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package grcontext caches one GPU device object per host context and
// resolves the host's current context on demand.
//
// # Resolution
//
// [Resolver.Resolve] asks the host for its active handle, returns the cached
// [DirectContext] for it, or builds one through the driver factory. Failures
// are never cached: the next call retries. The outcome of the latest attempt
// is kept in a single [ErrorCode] slot for flat callers.
//
// # Resource budget
//
// Each DirectContext owns a [ResourceCache] of render targets. The byte
// limit is advisory; it only decides what cleanup releases.
//
// # Concurrency
//
// Nothing in this package locks. The host serializes all calls.
package grcontext
