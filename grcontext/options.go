// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package grcontext

import "time"

// Option configures contexts built by NewDirectContext and Resolver.
type Option func(*options)

type options struct {
	cacheLimit uint64
	now        func() time.Time
}

func defaultOptions() options {
	return options{
		cacheLimit: DefaultCacheLimit,
		now:        time.Now,
	}
}

// WithCacheLimit sets the initial resource cache budget in bytes.
func WithCacheLimit(bytes uint64) Option {
	return func(o *options) {
		o.cacheLimit = bytes
	}
}

// WithClock replaces the clock used for deferred cleanup.
// Primarily useful for testing.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
